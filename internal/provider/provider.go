// Package provider defines the interface for delivery backends filtered
// messages are handed to.
package provider

import "context"

// Envelope carries one message through delivery: the SMTP envelope addresses
// and the full wire-format message data, already filtered.
type Envelope struct {
	From string
	To   []string
	Data []byte
}

// Provider is implemented by delivery backends: the upstream relayhost,
// AWS SES, Microsoft Graph, or stdout for development.
type Provider interface {
	// Send delivers the message. It returns an error if delivery fails;
	// the caller decides between retrying and rejecting.
	Send(ctx context.Context, env *Envelope) error

	// Name returns the human-readable name of this backend.
	Name() string
}
