// Package parser converts between wire-format RFC 5322 messages and the
// internal part tree.
package parser

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"strings"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"

	"github.com/zarath/html-mail-footer/internal/email"
)

// Parse decodes a raw message into a part tree. Transfer encodings are
// decoded and text bodies are converted to UTF-8, so the stored headers are
// normalized to reflect that. Multipart containers may nest arbitrarily.
func Parse(raw []byte) (*email.Part, error) {
	ent, err := message.Read(bytes.NewReader(raw))
	if err != nil {
		if !message.IsUnknownCharset(err) {
			return nil, fmt.Errorf("failed to parse message: %w", err)
		}
		slog.Warn("unknown charset, body left undecoded", "error", err)
	}
	return fromEntity(ent)
}

// fromEntity recursively copies a go-message entity into a Part.
func fromEntity(ent *message.Entity) (*email.Part, error) {
	part := &email.Part{Header: ent.Header.Header.Copy()}

	if mr := ent.MultipartReader(); mr != nil {
		for {
			sub, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("failed to read multipart part: %w", err)
			}
			child, err := fromEntity(sub)
			if err != nil {
				return nil, err
			}
			part.Parts = append(part.Parts, child)
		}
		return part, nil
	}

	body, err := io.ReadAll(ent.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read part body: %w", err)
	}
	part.Body = body

	// The body is stored in decoded form, so the original charset and
	// transfer encoding headers no longer describe it.
	if mt := part.MediaType(); strings.HasPrefix(mt, "text/") {
		part.Header.Set("Content-Type", mime.FormatMediaType(mt, map[string]string{"charset": "utf-8"}))
		part.Header.Set("Content-Transfer-Encoding", "8bit")
	}

	return part, nil
}
