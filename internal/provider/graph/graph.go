// Package graph implements a Provider that sends filtered messages via the
// Microsoft Graph API using OAuth2 client credentials authentication.
package graph

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/zarath/html-mail-footer/internal/provider"
)

// maxRetries is the maximum number of retry attempts for transient failures.
const maxRetries = 3

// baseRetryDelay is the initial delay for exponential backoff.
const baseRetryDelay = 1 * time.Second

// GraphProviderConfig holds the configuration for creating a GraphProvider.
type GraphProviderConfig struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	Sender       string
}

// GraphProvider sends messages through the Graph sendMail endpoint in MIME
// format: the body of the POST is the base64-encoded wire message, so the
// rewritten MIME tree is delivered exactly as assembled.
type GraphProvider struct {
	sender     string
	graphURL   string
	httpClient *http.Client
	token      *tokenCache
}

// New creates a new GraphProvider with the given configuration.
func New(cfg GraphProviderConfig) *GraphProvider {
	tokenURL := fmt.Sprintf(
		"https://login.microsoftonline.com/%s/oauth2/v2.0/token",
		cfg.TenantID,
	)

	client := &http.Client{Timeout: 30 * time.Second}

	return &GraphProvider{
		sender:     cfg.Sender,
		graphURL:   fmt.Sprintf("https://graph.microsoft.com/v1.0/users/%s/sendMail", cfg.Sender),
		httpClient: client,
		token:      newTokenCache(tokenURL, cfg.ClientID, cfg.ClientSecret, client),
	}
}

// newWithOverrides creates a GraphProvider with custom URLs and HTTP client,
// used for testing.
func newWithOverrides(cfg GraphProviderConfig, graphURL, tokenURL string, client *http.Client) *GraphProvider {
	return &GraphProvider{
		sender:     cfg.Sender,
		graphURL:   graphURL,
		httpClient: client,
		token:      newTokenCache(tokenURL, cfg.ClientID, cfg.ClientSecret, client),
	}
}

// Send delivers the raw message via the Graph API. It retries transient
// failures with exponential backoff, honors Retry-After on HTTP 429, and
// refreshes the access token once on HTTP 401.
func (g *GraphProvider) Send(ctx context.Context, env *provider.Envelope) error {
	payload := base64.StdEncoding.EncodeToString(env.Data)

	var lastErr error
	tokenRefreshed := false

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			slog.Debug("retrying Graph API request",
				"attempt", attempt,
				"max_retries", maxRetries,
			)
		}

		err := g.doSendRequest(ctx, payload)
		if err == nil {
			return nil
		}

		lastErr = err

		graphErr, ok := err.(*sendError)
		if !ok {
			return err
		}

		switch {
		case graphErr.permanent:
			return graphErr
		case graphErr.statusCode == http.StatusUnauthorized && !tokenRefreshed:
			// Refresh token once and retry immediately
			slog.Info("refreshing Graph API token after 401")
			if _, refreshErr := g.token.ForceRefresh(); refreshErr != nil {
				return fmt.Errorf("token refresh failed: %w", refreshErr)
			}
			tokenRefreshed = true
			continue
		case graphErr.statusCode == http.StatusTooManyRequests:
			delay := g.retryAfterDelay(graphErr.retryAfter, attempt)
			slog.Info("rate limited by Graph API",
				"retry_after", delay,
			)
			if err := sleepWithContext(ctx, delay); err != nil {
				return fmt.Errorf("context cancelled during retry wait: %w", err)
			}
			continue
		case graphErr.transient:
			delay := backoffDelay(attempt)
			slog.Info("transient Graph API error, retrying",
				"status", graphErr.statusCode,
				"delay", delay,
			)
			if err := sleepWithContext(ctx, delay); err != nil {
				return fmt.Errorf("context cancelled during retry wait: %w", err)
			}
			continue
		default:
			return graphErr
		}
	}

	return fmt.Errorf("Graph API request failed after %d retries: %w", maxRetries, lastErr)
}

// Name returns the provider name.
func (g *GraphProvider) Name() string {
	return "msgraph"
}

// doSendRequest performs a single sendMail request with a MIME payload.
func (g *GraphProvider) doSendRequest(ctx context.Context, payload string) error {
	token, err := g.token.Token()
	if err != nil {
		return fmt.Errorf("failed to get access token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.graphURL, strings.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return &sendError{
			message:   fmt.Sprintf("HTTP request failed: %v", err),
			transient: true,
		}
	}
	defer resp.Body.Close()

	// HTTP 202 Accepted is success for sendMail
	if resp.StatusCode == http.StatusAccepted || resp.StatusCode == http.StatusOK {
		return nil
	}

	body, _ := io.ReadAll(resp.Body)
	return classifyError(resp.StatusCode, string(body), resp.Header.Get("Retry-After"))
}

// sendError represents an error from the Graph API send operation with
// classification for retry logic.
type sendError struct {
	message    string
	statusCode int
	permanent  bool
	transient  bool
	retryAfter string
}

func (e *sendError) Error() string {
	return fmt.Sprintf("Graph API error (HTTP %d): %s", e.statusCode, e.message)
}

// classifyError categorizes an HTTP error response for retry decisions.
func classifyError(statusCode int, message, retryAfter string) *sendError {
	err := &sendError{
		message:    message,
		statusCode: statusCode,
		retryAfter: retryAfter,
	}

	switch {
	case statusCode == http.StatusBadRequest || statusCode == http.StatusForbidden:
		err.permanent = true
	case statusCode == http.StatusUnauthorized:
		err.transient = true
	case statusCode == http.StatusTooManyRequests:
		err.transient = true
	case statusCode >= 500:
		err.transient = true
	}

	return err
}

// retryAfterDelay computes the wait before the next attempt after a 429,
// preferring the server-provided Retry-After value.
func (g *GraphProvider) retryAfterDelay(retryAfter string, attempt int) time.Duration {
	if retryAfter != "" {
		if secs, err := strconv.Atoi(retryAfter); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return backoffDelay(attempt)
}

// backoffDelay returns the exponential backoff delay for the given attempt number.
func backoffDelay(attempt int) time.Duration {
	delay := baseRetryDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
	}
	return delay
}

// sleepWithContext waits for the specified duration or until the context is cancelled.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
