package parser

import (
	"strings"
	"testing"
)

func TestParse_PlainEmail(t *testing.T) {
	t.Parallel()

	raw := strings.Join([]string{
		"From: sender@example.com",
		"To: recipient@example.com",
		"Subject: Hello World",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"This is the body.",
		"",
	}, "\r\n")

	msg, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if msg.Header.Get("Subject") != "Hello World" {
		t.Errorf("Subject: got %q, want %q", msg.Header.Get("Subject"), "Hello World")
	}
	if msg.IsMultipart() {
		t.Error("plain message parsed as multipart")
	}
	if got := string(msg.Body); got != "This is the body.\r\n" {
		t.Errorf("body: got %q", got)
	}
	if msg.MediaType() != "text/plain" {
		t.Errorf("media type: got %q, want text/plain", msg.MediaType())
	}
}

func TestParse_MissingContentTypeDefaultsToPlain(t *testing.T) {
	t.Parallel()

	raw := strings.Join([]string{
		"From: sender@example.com",
		"Subject: No content type",
		"",
		"Body.",
		"",
	}, "\r\n")

	msg, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.MediaType() != "text/plain" {
		t.Errorf("media type: got %q, want text/plain", msg.MediaType())
	}
}

func TestParse_MultipartAlternative(t *testing.T) {
	t.Parallel()

	raw := strings.Join([]string{
		"From: sender@example.com",
		"Subject: Multipart",
		"MIME-Version: 1.0",
		`Content-Type: multipart/alternative; boundary="BOUNDARY"`,
		"",
		"--BOUNDARY",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"Plain version.",
		"--BOUNDARY",
		"Content-Type: text/html; charset=utf-8",
		"",
		"<p>HTML version.</p>",
		"--BOUNDARY--",
		"",
	}, "\r\n")

	msg, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !msg.IsMultipart() {
		t.Fatal("message not parsed as multipart")
	}
	if len(msg.Parts) != 2 {
		t.Fatalf("parts: got %d, want 2", len(msg.Parts))
	}
	if msg.Parts[0].MediaType() != "text/plain" {
		t.Errorf("first part: got %q, want text/plain", msg.Parts[0].MediaType())
	}
	if msg.Parts[1].MediaType() != "text/html" {
		t.Errorf("second part: got %q, want text/html", msg.Parts[1].MediaType())
	}
	if !strings.Contains(string(msg.Parts[0].Body), "Plain version.") {
		t.Errorf("first part body: got %q", msg.Parts[0].Body)
	}
	if !strings.Contains(string(msg.Parts[1].Body), "<p>HTML version.</p>") {
		t.Errorf("second part body: got %q", msg.Parts[1].Body)
	}
}

func TestParse_NestedMultipart(t *testing.T) {
	t.Parallel()

	raw := strings.Join([]string{
		"Subject: Nested",
		"MIME-Version: 1.0",
		`Content-Type: multipart/mixed; boundary="OUTER"`,
		"",
		"--OUTER",
		`Content-Type: multipart/alternative; boundary="INNER"`,
		"",
		"--INNER",
		"Content-Type: text/plain",
		"",
		"plain",
		"--INNER",
		"Content-Type: text/html",
		"",
		"<b>html</b>",
		"--INNER--",
		"--OUTER",
		"Content-Type: application/pdf",
		"Content-Transfer-Encoding: base64",
		"",
		"JVBERi0xLjQ=",
		"--OUTER--",
		"",
	}, "\r\n")

	msg, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(msg.Parts) != 2 {
		t.Fatalf("outer parts: got %d, want 2", len(msg.Parts))
	}
	inner := msg.Parts[0]
	if inner.MediaType() != "multipart/alternative" {
		t.Fatalf("inner container: got %q", inner.MediaType())
	}
	if len(inner.Parts) != 2 {
		t.Fatalf("inner parts: got %d, want 2", len(inner.Parts))
	}

	// The transfer encoding is decoded on read.
	pdf := msg.Parts[1]
	if got := string(pdf.Body); got != "%PDF-1.4" {
		t.Errorf("decoded attachment body: got %q, want %q", got, "%PDF-1.4")
	}
}

func TestParse_QuotedPrintableDecoded(t *testing.T) {
	t.Parallel()

	raw := strings.Join([]string{
		"Subject: QP",
		"Content-Type: text/plain; charset=utf-8",
		"Content-Transfer-Encoding: quoted-printable",
		"",
		"caf=C3=A9",
		"",
	}, "\r\n")

	msg, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(msg.Body), "café") {
		t.Errorf("decoded body: got %q", msg.Body)
	}
	// The stored headers describe the decoded body.
	if got := msg.Header.Get("Content-Transfer-Encoding"); got != "8bit" {
		t.Errorf("normalized encoding header: got %q, want 8bit", got)
	}
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()

	if _, err := Parse([]byte("this is not a mail message")); err == nil {
		t.Error("expected error for malformed input")
	}
}
