package footer

import (
	"errors"
	"strings"
	"testing"

	"github.com/zarath/html-mail-footer/internal/email"
)

// plainMessage builds a single-part text/plain message with the given body
// and a few ordinary headers.
func plainMessage(body string) *email.Part {
	p := email.NewText("plain", body)
	p.Header.Set("From", "sender@example.com")
	p.Header.Set("To", "recipient@example.com")
	p.Header.Set("Subject", "Test")
	return p
}

const signedBody = "Hello\n-- \nBest,\nMe\n<html>\n<b>Bold</b>\n</html>\n"

func TestRewriter_IsEligible(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		msg  *email.Part
		want bool
	}{
		{
			name: "marker in signature",
			msg:  plainMessage(signedBody),
			want: true,
		},
		{
			name: "no signature delimiter",
			msg:  plainMessage("Hello\n<html>\nnot in a signature\n</html>\n"),
			want: false,
		},
		{
			name: "signature without marker",
			msg:  plainMessage("Hello\n-- \nBest,\nMe\n"),
			want: false,
		},
		{
			name: "marker above the delimiter only",
			msg:  plainMessage("<html>\nHello\n</html>\n-- \nMe\n"),
			want: false,
		},
		{
			name: "non-text message",
			msg: func() *email.Part {
				p := &email.Part{Body: []byte{0x01, 0x02}}
				p.Header.Set("Content-Type", "application/octet-stream")
				return p
			}(),
			want: false,
		},
	}

	r := &Rewriter{}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := r.IsEligible(tt.msg); got != tt.want {
				t.Errorf("IsEligible: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRewriter_Rewrite_SinglePart(t *testing.T) {
	t.Parallel()

	r := &Rewriter{AddHeader: true}
	msg := plainMessage(signedBody)

	out, err := r.Rewrite(msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.MediaType() != "multipart/alternative" {
		t.Fatalf("root media type: got %q, want multipart/alternative", out.MediaType())
	}
	if len(out.Parts) != 2 {
		t.Fatalf("children: got %d, want 2", len(out.Parts))
	}

	// Ordinary headers survive, replaced Content-* headers do not leak.
	if out.Header.Get("Subject") != "Test" {
		t.Errorf("Subject: got %q, want %q", out.Header.Get("Subject"), "Test")
	}
	if out.Header.Get("Content-Transfer-Encoding") != "" {
		t.Error("old Content-Transfer-Encoding header leaked onto the new root")
	}
	if got := out.Header.Get("X-Modified-By"); got != "html-footer "+Version {
		t.Errorf("X-Modified-By: got %q", got)
	}
	if out.Preamble == "" {
		t.Error("new multipart root should carry a preamble")
	}

	plain, html := out.Parts[0], out.Parts[1]
	if plain.MediaType() != "text/plain" {
		t.Errorf("first child: got %q, want text/plain", plain.MediaType())
	}
	if html.MediaType() != "text/html" {
		t.Errorf("second child: got %q, want text/html", html.MediaType())
	}

	// The plain branch keeps the content, the delimiter and the plain
	// signature lines. HTML-region lines are gone.
	if got, want := string(plain.Body), "Hello\n-- \nBest,\nMe\n"; got != want {
		t.Errorf("plain branch: got %q, want %q", got, want)
	}

	doc := string(html.Body)
	if !strings.Contains(doc, "<pre id=\"plaintext\">\nHello\n</pre>") {
		t.Errorf("HTML branch missing preformatted content:\n%s", doc)
	}
	if !strings.Contains(doc, "<pre id=\"plaintext\">\nBest,\nMe\n</pre>") {
		t.Errorf("HTML branch missing preformatted plain signature lines:\n%s", doc)
	}
	if !strings.Contains(doc, "<b>Bold</b>\n") {
		t.Errorf("HTML branch missing raw markup:\n%s", doc)
	}
	if strings.Contains(doc, "\n<html>\n<b>") {
		t.Errorf("marker lines must not appear in output:\n%s", doc)
	}
	if !strings.HasPrefix(doc, "<!DOCTYPE HTML") {
		t.Errorf("HTML branch missing document header:\n%s", doc)
	}
	if !strings.HasSuffix(doc, "</body>\n</html>\n") {
		t.Errorf("HTML branch missing document footer:\n%s", doc)
	}
}

func TestRewriter_Rewrite_InputUnmodified(t *testing.T) {
	t.Parallel()

	r := &Rewriter{}
	msg := plainMessage(signedBody)
	before := string(msg.Body)

	if _, err := r.Rewrite(msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if string(msg.Body) != before {
		t.Error("rewrite mutated the input message body")
	}
	if msg.MediaType() != "text/plain" {
		t.Errorf("rewrite mutated the input content type: %q", msg.MediaType())
	}
}

func TestRewriter_Rewrite_Multipart(t *testing.T) {
	t.Parallel()

	pdf := &email.Part{Body: []byte("%PDF-1.4 fake")}
	pdf.Header.Set("Content-Type", "application/pdf")
	pdf.Header.Set("Content-Transfer-Encoding", "base64")

	text := email.NewText("plain", signedBody)

	msg := email.NewMultipart("mixed", text, pdf)
	msg.Header.Set("Subject", "With attachment")

	r := &Rewriter{}
	out, err := r.Rewrite(msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.MediaType() != "multipart/mixed" {
		t.Errorf("root media type: got %q, want multipart/mixed", out.MediaType())
	}
	if len(out.Parts) != 2 {
		t.Fatalf("children: got %d, want 2", len(out.Parts))
	}
	if out.Parts[0].MediaType() != "multipart/alternative" {
		t.Errorf("first child: got %q, want multipart/alternative", out.Parts[0].MediaType())
	}

	// The untouched sibling is shared, not copied.
	if out.Parts[1] != pdf {
		t.Error("untouched sibling part must be shared into the result")
	}

	// The original tree still holds the plain text part.
	if msg.Parts[0] != text {
		t.Error("rewrite mutated the input part list")
	}
}

func TestRewriter_Rewrite_MultipartWithoutPlainPart(t *testing.T) {
	t.Parallel()

	htmlOnly := email.NewText("html", "<p>nothing plain</p>")
	msg := email.NewMultipart("mixed", htmlOnly)

	r := &Rewriter{}
	_, err := r.Rewrite(msg)
	if !errors.Is(err, ErrNoPlainPart) {
		t.Errorf("error: got %v, want ErrNoPlainPart", err)
	}
}

func TestRewriter_Rewrite_WithLocalImage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeImage(t, dir, "logo.png", pngData)

	body := "Hello\n-- \n<html>\n<img src=\"logo.png\">\n</html>\n"
	msg := plainMessage(body)

	r := &Rewriter{ImageDir: dir}
	out, err := r.Rewrite(msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(out.Parts) != 2 {
		t.Fatalf("children: got %d, want 2", len(out.Parts))
	}
	related := out.Parts[1]
	if related.MediaType() != "multipart/related" {
		t.Fatalf("HTML branch: got %q, want multipart/related", related.MediaType())
	}
	if len(related.Parts) != 2 {
		t.Fatalf("related children: got %d, want 2", len(related.Parts))
	}

	htmlPart, imgPart := related.Parts[0], related.Parts[1]
	if htmlPart.MediaType() != "text/html" {
		t.Errorf("first related child: got %q, want text/html", htmlPart.MediaType())
	}
	if imgPart.MediaType() != "image/png" {
		t.Errorf("image part: got %q, want image/png", imgPart.MediaType())
	}

	cid := imgPart.Header.Get("Content-Id")
	if !strings.HasPrefix(cid, "<") || !strings.HasSuffix(cid, ">") {
		t.Errorf("Content-ID header not bracketed: %q", cid)
	}
	bare := strings.Trim(cid, "<>")
	if !strings.Contains(string(htmlPart.Body), "cid:"+bare) {
		t.Errorf("HTML does not reference the attachment content id %q:\n%s", bare, htmlPart.Body)
	}
	if imgPart.Header.Get("Content-Transfer-Encoding") != "base64" {
		t.Errorf("image encoding: got %q, want base64", imgPart.Header.Get("Content-Transfer-Encoding"))
	}
	if !strings.Contains(imgPart.Header.Get("Content-Disposition"), "logo.png") {
		t.Errorf("Content-Disposition: got %q, want filename", imgPart.Header.Get("Content-Disposition"))
	}
}

func TestRewriter_Rewrite_MissingImageFailsWhole(t *testing.T) {
	t.Parallel()

	body := "Hello\n-- \n<html>\n<img src=\"missing.png\">\n</html>\n"
	msg := plainMessage(body)

	r := &Rewriter{ImageDir: t.TempDir()}
	out, err := r.Rewrite(msg)
	if err == nil {
		t.Fatal("expected error for missing image")
	}
	if out != nil {
		t.Error("failed rewrite must not produce a partial message")
	}

	var imgErr *ImageError
	if !errors.As(err, &imgErr) {
		t.Errorf("error type: got %T, want *ImageError", err)
	}
}

func TestRewriter_RewriteIfEligible(t *testing.T) {
	t.Parallel()

	r := &Rewriter{}

	// Ineligible: same message back, untouched.
	plain := plainMessage("Hello\n-- \nBest,\nMe\n")
	out, modified, err := r.RewriteIfEligible(plain)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if modified {
		t.Error("ineligible message reported as modified")
	}
	if out != plain {
		t.Error("ineligible message must come back as the same tree")
	}

	// Eligible: rewritten.
	out, modified, err = r.RewriteIfEligible(plainMessage(signedBody))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !modified {
		t.Error("eligible message reported as unmodified")
	}
	if out.MediaType() != "multipart/alternative" {
		t.Errorf("root media type: got %q", out.MediaType())
	}
}

func TestRewriter_RewriteIfEligible_Idempotent(t *testing.T) {
	t.Parallel()

	r := &Rewriter{AddHeader: true}

	out, modified, err := r.RewriteIfEligible(plainMessage(signedBody))
	if err != nil || !modified {
		t.Fatalf("first pass: modified=%v err=%v", modified, err)
	}

	// The rewritten message has no literal-HTML marker in a plain
	// signature any more, so a second pass leaves it alone.
	again, modified, err := r.RewriteIfEligible(out)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if modified {
		t.Error("second pass must not modify an already rewritten message")
	}
	if again != out {
		t.Error("second pass must return the same tree")
	}
}

func TestRewriter_AddHeaderDisabled(t *testing.T) {
	t.Parallel()

	r := &Rewriter{AddHeader: false}
	out, err := r.Rewrite(plainMessage(signedBody))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Header.Has("X-Modified-By") {
		t.Error("X-Modified-By must not be added when disabled")
	}
}
