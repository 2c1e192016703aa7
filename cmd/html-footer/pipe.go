package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/zarath/html-mail-footer/internal/footer"
	"github.com/zarath/html-mail-footer/internal/parser"
)

// runPipe filters a single message from in to out. A message that cannot be
// parsed or rewritten passes through unmodified, so a broken signature never
// loses mail in a pipe deployment.
func runPipe(rw *footer.Rewriter, in io.Reader, out io.Writer) error {
	raw, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read message from stdin: %w", err)
	}

	filtered := raw

	msg, err := parser.Parse(raw)
	if err != nil {
		slog.Warn("failed to parse message, passing through unmodified", "error", err)
	} else {
		rewritten, altered, rwErr := rw.RewriteIfEligible(msg)
		switch {
		case rwErr != nil:
			slog.Error("footer rewrite failed, passing through unmodified", "error", rwErr)
		case altered:
			encoded, encErr := parser.Encode(rewritten)
			if encErr != nil {
				slog.Error("failed to encode rewritten message, passing through unmodified", "error", encErr)
				break
			}
			filtered = encoded
			slog.Info("message altered",
				"message_id", msg.Header.Get("Message-Id"),
				"size_in", len(raw),
				"size_out", len(filtered),
			)
		default:
			slog.Info("nothing to alter", "message_id", msg.Header.Get("Message-Id"))
		}
	}

	if _, err := out.Write(filtered); err != nil {
		return fmt.Errorf("failed to write message to stdout: %w", err)
	}
	return nil
}
