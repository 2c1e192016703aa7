// Package main is the entry point for the html-footer mail content filter.
// It runs either as an SMTP daemon between the MTA and a relayhost, or as a
// one-shot pipe filter reading a message on stdin and writing it to stdout.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/zarath/html-mail-footer/internal/config"
	"github.com/zarath/html-mail-footer/internal/footer"
	"github.com/zarath/html-mail-footer/internal/provider"
	"github.com/zarath/html-mail-footer/internal/provider/graph"
	"github.com/zarath/html-mail-footer/internal/provider/relay"
	"github.com/zarath/html-mail-footer/internal/provider/ses"
	"github.com/zarath/html-mail-footer/internal/provider/stdout"
	"github.com/zarath/html-mail-footer/internal/smtp"
	smtptls "github.com/zarath/html-mail-footer/internal/tls"
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file (optional)")
	pipeMode := flag.Bool("pipe", false, "read one message from stdin, write the filtered message to stdout")
	flag.Parse()

	// Load configuration
	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging. Logs go to stderr so pipe mode owns stdout.
	setupLogger(cfg.Logging.Level)

	rewriter := &footer.Rewriter{
		ImageDir:  cfg.Footer.ImageDir,
		AddHeader: cfg.Footer.AddHeader,
	}

	if *pipeMode {
		if err := runPipe(rewriter, os.Stdin, os.Stdout); err != nil {
			slog.Error("pipe filter failed", "error", err)
			os.Exit(1)
		}
		return
	}

	// Load or generate TLS certificates
	tlsConfig, err := smtptls.LoadOrGenerateTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile, cfg.SMTP.Hostname)
	if err != nil {
		slog.Error("failed to setup TLS", "error", err)
		os.Exit(1)
	}

	tlsMode := "self-signed"
	if cfg.TLS.CertFile != "" && cfg.TLS.KeyFile != "" {
		tlsMode = "file"
	}

	// Select email delivery provider
	prov := selectProvider(cfg)

	// Create SMTP server
	server := smtp.New(smtp.ServerConfig{
		ListenAddr:   cfg.SMTP.Listen,
		Hostname:     cfg.SMTP.Hostname,
		Provider:     prov,
		Rewriter:     rewriter,
		TLSConfig:    tlsConfig,
		AuthUsername: cfg.SMTP.Username,
		AuthPassword: cfg.SMTP.Password,
	})

	slog.Info("starting html-footer",
		"listen", cfg.SMTP.Listen,
		"provider", prov.Name(),
		"image_dir", cfg.Footer.ImageDir,
		"auth_enabled", cfg.AuthEnabled(),
		"tls_mode", tlsMode,
	)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		sig := <-sigCh
		slog.Info("received signal, initiating shutdown", "signal", sig)
		cancel()
	}()

	// Start the server (blocks until context is cancelled)
	if err := server.ListenAndServe(ctx); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("html-footer stopped")
}

// loadConfig loads configuration from the specified path (YAML + env override)
// or from environment variables only if no path is given.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// setupLogger configures the global slog logger with JSON output and the
// specified log level.
func setupLogger(level string) {
	var logLevel slog.Level

	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// selectProvider chooses the mail delivery backend based on configuration.
// The default is the SMTP relayhost, matching the usual content filter
// deployment in front of a local MTA.
func selectProvider(cfg *config.Config) provider.Provider {
	switch cfg.Provider {
	case "", "relay":
		slog.Info("using SMTP relay provider", "addr", cfg.Relay.Addr)
		return relay.New(cfg.Relay.Addr)

	case "ses":
		if !cfg.SESConfigured() {
			slog.Error("SES provider selected but SES_REGION and SES_SENDER are required")
			os.Exit(1)
		}
		slog.Info("using AWS SES provider",
			"region", cfg.SES.Region,
			"sender", cfg.SES.Sender,
		)
		p, err := ses.New(context.Background(), ses.SESProviderConfig{
			Region:          cfg.SES.Region,
			AccessKeyID:     cfg.SES.AccessKeyID,
			SecretAccessKey: cfg.SES.SecretAccessKey,
			Sender:          cfg.SES.Sender,
		})
		if err != nil {
			slog.Error("failed to create SES provider", "error", err)
			os.Exit(1)
		}
		return p

	case "graph":
		if !cfg.GraphConfigured() {
			slog.Error("Graph provider selected but GRAPH_TENANT_ID, GRAPH_CLIENT_ID, GRAPH_CLIENT_SECRET, and GRAPH_SENDER are required")
			os.Exit(1)
		}
		slog.Info("using Microsoft Graph provider",
			"sender", cfg.Graph.Sender,
		)
		return graph.New(graph.GraphProviderConfig{
			TenantID:     cfg.Graph.TenantID,
			ClientID:     cfg.Graph.ClientID,
			ClientSecret: cfg.Graph.ClientSecret,
			Sender:       cfg.Graph.Sender,
		})

	case "stdout":
		slog.Info("using stdout provider")
		return stdout.New()

	default:
		slog.Error("unknown provider", "provider", cfg.Provider)
		os.Exit(1)
		return nil
	}
}
