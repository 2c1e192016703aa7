package ses

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"

	"github.com/zarath/html-mail-footer/internal/provider"
)

// mockSESClient implements SendEmailAPI for testing.
type mockSESClient struct {
	sendFn    func(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
	callCount int
	lastInput *sesv2.SendEmailInput
}

func (m *mockSESClient) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	m.callCount++
	m.lastInput = params
	if m.sendFn != nil {
		return m.sendFn(ctx, params, optFns...)
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("test-message-id")}, nil
}

func testEnvelope() *provider.Envelope {
	return &provider.Envelope{
		From: "sender@example.com",
		To:   []string{"to@example.com"},
		Data: []byte("From: sender@example.com\r\nSubject: Test\r\n\r\nHello\r\n"),
	}
}

func TestName(t *testing.T) {
	t.Parallel()
	p := NewWithClient("sender@example.com", &mockSESClient{})
	if got := p.Name(); got != "ses" {
		t.Errorf("Name(): got %q, want %q", got, "ses")
	}
}

func TestSend_RawMessage(t *testing.T) {
	t.Parallel()

	mock := &mockSESClient{}
	p := NewWithClient("sender@example.com", mock)

	env := testEnvelope()
	if err := p.Send(context.Background(), env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if mock.callCount != 1 {
		t.Errorf("call count: got %d, want 1", mock.callCount)
	}

	input := mock.lastInput
	if input.Content.Raw == nil {
		t.Fatal("expected raw email content, got nil")
	}
	if string(input.Content.Raw.Data) != string(env.Data) {
		t.Error("raw content does not match envelope data")
	}
	if got := *input.FromEmailAddress; got != "sender@example.com" {
		t.Errorf("FromEmailAddress: got %q, want %q", got, "sender@example.com")
	}
	if len(input.Destination.ToAddresses) != 1 || input.Destination.ToAddresses[0] != "to@example.com" {
		t.Errorf("ToAddresses: got %v, want [to@example.com]", input.Destination.ToAddresses)
	}
}

func TestSend_ConfiguredSenderOverridesEnvelope(t *testing.T) {
	t.Parallel()

	mock := &mockSESClient{}
	p := NewWithClient("filter@example.com", mock)

	if err := p.Send(context.Background(), testEnvelope()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := *mock.lastInput.FromEmailAddress; got != "filter@example.com" {
		t.Errorf("FromEmailAddress: got %q, want %q", got, "filter@example.com")
	}
}

func TestSend_EnvelopeSenderFallback(t *testing.T) {
	t.Parallel()

	mock := &mockSESClient{}
	p := NewWithClient("", mock)

	if err := p.Send(context.Background(), testEnvelope()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := *mock.lastInput.FromEmailAddress; got != "sender@example.com" {
		t.Errorf("FromEmailAddress: got %q, want %q", got, "sender@example.com")
	}
}

func TestSend_RetryOnError(t *testing.T) {
	t.Parallel()

	callCount := 0
	mock := &mockSESClient{
		sendFn: func(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
			callCount++
			if callCount <= 2 {
				return nil, errors.New("transient error")
			}
			return &sesv2.SendEmailOutput{MessageId: aws.String("ok")}, nil
		},
	}
	p := NewWithClient("sender@example.com", mock)

	if err := p.Send(context.Background(), testEnvelope()); err != nil {
		t.Fatalf("expected success after retry, got: %v", err)
	}
	if callCount != 3 {
		t.Errorf("call count: got %d, want 3", callCount)
	}
}

func TestSend_AllRetriesExhausted(t *testing.T) {
	t.Parallel()

	mock := &mockSESClient{
		sendFn: func(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
			return nil, errors.New("persistent error")
		},
	}
	p := NewWithClient("sender@example.com", mock)

	err := p.Send(context.Background(), testEnvelope())
	if err == nil {
		t.Fatal("expected error after all retries exhausted")
	}
	if !strings.Contains(err.Error(), "after 3 retries") {
		t.Errorf("error message: got %q, want to contain 'after 3 retries'", err.Error())
	}
	// 1 initial + 3 retries = 4 total
	if mock.callCount != 4 {
		t.Errorf("call count: got %d, want 4", mock.callCount)
	}
}

func TestSend_ContextCancelled(t *testing.T) {
	t.Parallel()

	mock := &mockSESClient{
		sendFn: func(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
			return nil, errors.New("error")
		},
	}
	p := NewWithClient("sender@example.com", mock)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	if err := p.Send(ctx, testEnvelope()); err == nil {
		t.Fatal("expected error when context cancelled")
	}
}

func TestBackoffDelay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
	}

	for _, tt := range tests {
		if got := backoffDelay(tt.attempt); got != tt.want {
			t.Errorf("backoffDelay(%d): got %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

// Verify SESProvider implements provider.Provider interface
func TestProviderInterface(t *testing.T) {
	t.Parallel()

	var _ provider.Provider = (*SESProvider)(nil)
}
