// Package relay implements a Provider that forwards messages to an upstream
// SMTP relayhost, the way a postfix content filter hands processed mail back
// to the MTA.
package relay

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/zarath/html-mail-footer/internal/provider"
)

// Provider forwards messages over SMTP to a fixed relayhost using the
// original envelope addresses.
type Provider struct {
	addr string
}

// New creates a relay Provider delivering to addr (host:port).
func New(addr string) *Provider {
	return &Provider{addr: addr}
}

// Send forwards the message to the relayhost. The transaction is aborted on
// the first rejected command; partial recipient failures are treated as
// delivery failures.
func (p *Provider) Send(ctx context.Context, env *provider.Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c, err := smtp.Dial(p.addr)
	if err != nil {
		return fmt.Errorf("failed to connect to relayhost %s: %w", p.addr, err)
	}
	defer c.Close()

	if err := c.Mail(env.From); err != nil {
		return fmt.Errorf("relayhost rejected sender %q: %w", env.From, err)
	}
	for _, rcpt := range env.To {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("relayhost rejected recipient %q: %w", rcpt, err)
		}
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("relayhost rejected DATA: %w", err)
	}
	if _, err := w.Write(env.Data); err != nil {
		return fmt.Errorf("failed to write message data: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("relayhost rejected message: %w", err)
	}

	return c.Quit()
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "relay"
}
