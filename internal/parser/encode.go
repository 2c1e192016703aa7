package parser

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"strings"

	"github.com/emersion/go-message/textproto"

	"github.com/zarath/html-mail-footer/internal/email"
)

// Encode serializes a part tree back to wire format. Every multipart
// container gets a fresh boundary; leaf bodies are written according to
// their Content-Transfer-Encoding header.
func Encode(p *email.Part) ([]byte, error) {
	var buf bytes.Buffer
	if err := writePart(&buf, p, true); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writePart writes one part, header and body, recursing into children.
func writePart(buf *bytes.Buffer, p *email.Part, root bool) error {
	h := p.Header.Copy()
	if root && !h.Has("Mime-Version") {
		h.Set("MIME-Version", "1.0")
	}

	if !p.IsMultipart() {
		if err := textproto.WriteHeader(buf, h); err != nil {
			return fmt.Errorf("failed to write part header: %w", err)
		}
		return writeBody(buf, h.Get("Content-Transfer-Encoding"), p.Body)
	}

	boundary, err := newBoundary()
	if err != nil {
		return err
	}
	mediaType, params, err := mime.ParseMediaType(h.Get("Content-Type"))
	if err != nil {
		return fmt.Errorf("invalid multipart content type: %w", err)
	}
	if params == nil {
		params = make(map[string]string)
	}
	params["boundary"] = boundary
	h.Set("Content-Type", mime.FormatMediaType(mediaType, params))

	if err := textproto.WriteHeader(buf, h); err != nil {
		return fmt.Errorf("failed to write multipart header: %w", err)
	}

	if p.Preamble != "" {
		writeLineTerminated(buf, []byte(p.Preamble))
	}
	for _, child := range p.Parts {
		buf.WriteString("--" + boundary + "\r\n")
		if err := writePart(buf, child, false); err != nil {
			return err
		}
	}
	buf.WriteString("--" + boundary + "--\r\n")
	if p.Epilogue != "" {
		writeLineTerminated(buf, []byte(p.Epilogue))
	}
	return nil
}

// writeBody writes a leaf body applying the given transfer encoding and
// makes sure the output ends on a line boundary.
func writeBody(buf *bytes.Buffer, encoding string, body []byte) error {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		buf.WriteString(encodeBase64WithLineBreaks(body))
		buf.WriteString("\r\n")
	case "quoted-printable":
		qw := quotedprintable.NewWriter(buf)
		if _, err := qw.Write(body); err != nil {
			return fmt.Errorf("failed to encode quoted-printable body: %w", err)
		}
		if err := qw.Close(); err != nil {
			return fmt.Errorf("failed to finish quoted-printable body: %w", err)
		}
		buf.WriteString("\r\n")
	default:
		// 7bit, 8bit, binary or unset: the body is written verbatim except
		// for line endings, which must be CRLF so that a following boundary
		// delimiter is recognizable (RFC 2046 requires CRLF before it).
		writeLineTerminated(buf, body)
	}
	return nil
}

// writeLineTerminated writes text with CRLF line endings and makes sure the
// output ends on a CRLF.
func writeLineTerminated(buf *bytes.Buffer, text []byte) {
	text = bytes.ReplaceAll(text, []byte("\r\n"), []byte("\n"))
	text = bytes.ReplaceAll(text, []byte("\n"), []byte("\r\n"))
	buf.Write(text)
	if !bytes.HasSuffix(text, []byte("\r\n")) {
		buf.WriteString("\r\n")
	}
}

// encodeBase64WithLineBreaks encodes bytes to base64 with 76-character line
// breaks per RFC 2045.
func encodeBase64WithLineBreaks(data []byte) string {
	encoded := base64.StdEncoding.EncodeToString(data)
	var lines []string
	for i := 0; i < len(encoded); i += 76 {
		end := i + 76
		if end > len(encoded) {
			end = len(encoded)
		}
		lines = append(lines, encoded[i:end])
	}
	return strings.Join(lines, "\r\n")
}

// newBoundary produces a random multipart boundary.
func newBoundary() (string, error) {
	var b [24]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("failed to generate boundary: %w", err)
	}
	return fmt.Sprintf("=_%x", b), nil
}
