// Package stdout implements a Provider that prints messages to standard
// output instead of delivering them. Useful for development and for
// inspecting what the filter produced.
package stdout

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/zarath/html-mail-footer/internal/provider"
)

// Provider prints filtered messages in a human-readable frame.
type Provider struct {
	// writer is the output destination, defaulting to os.Stdout.
	writer io.Writer
}

// New creates a stdout Provider that writes to os.Stdout.
func New() *Provider {
	return &Provider{writer: os.Stdout}
}

// NewWithWriter creates a stdout Provider that writes to the given writer.
// This is useful for testing.
func NewWithWriter(w io.Writer) *Provider {
	return &Provider{writer: w}
}

// Send prints the envelope and the full wire-format message.
// It always returns nil (success).
func (p *Provider) Send(_ context.Context, env *provider.Envelope) error {
	var b strings.Builder

	b.WriteString("========================================\n")
	b.WriteString(fmt.Sprintf("Envelope-From: %s\n", env.From))
	b.WriteString(fmt.Sprintf("Envelope-To: %s\n", strings.Join(env.To, ", ")))
	b.WriteString(fmt.Sprintf("Size: %s\n", formatSize(len(env.Data))))
	b.WriteString("Message:\n")
	b.Write(env.Data)
	if len(env.Data) > 0 && env.Data[len(env.Data)-1] != '\n' {
		b.WriteByte('\n')
	}
	b.WriteString("========================================\n")

	_, err := fmt.Fprint(p.writer, b.String())
	if err != nil {
		// A write error on stdout is not a delivery failure.
		return nil
	}

	return nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "stdout"
}

// formatSize formats a byte count into a human-readable string.
func formatSize(bytes int) string {
	const (
		kb = 1024
		mb = kb * 1024
	)

	switch {
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
