package footer

import (
	"strings"

	"github.com/zarath/html-mail-footer/internal/email"
)

// Version is recorded in the audit header of rewritten messages.
const Version = "1.0.0"

// modifiedByHeader marks messages altered by the filter, for downstream
// auditability.
const modifiedByHeader = "X-Modified-By"

// defaultPreamble is placed before the first boundary of a newly created
// multipart root so non-MIME clients show something sensible.
const defaultPreamble = "This is a multi-part message in MIME format...\n"

// Rewriter applies the signature convention to whole messages. All
// configuration is explicit and a Rewriter is safe for concurrent use; the
// image directory is only ever read.
type Rewriter struct {
	// ImageDir is the directory referenced inline images are loaded from.
	ImageDir string
	// AddHeader controls whether rewritten messages are stamped with an
	// X-Modified-By header.
	AddHeader bool
}

// IsEligible reports whether the message carries a literal-HTML marker in
// the signature of its first text/plain part. Ineligible messages must pass
// through the filter unmodified.
func (r *Rewriter) IsEligible(msg *email.Part) bool {
	_, sig := SplitSignature(firstPlainText(msg))
	return hasHTMLMarker(sig)
}

// Rewrite builds a new message with the first text/plain part replaced by
// the assembled multipart/alternative tree. The input tree is never
// modified; untouched sibling parts are shared into the result. A
// single-part message becomes a new multipart/alternative root carrying the
// two branches directly, with the old Content-* headers dropped.
func (r *Rewriter) Rewrite(msg *email.Part) (*email.Part, error) {
	images := &Resolver{Dir: r.ImageDir}

	var out *email.Part
	if !msg.IsMultipart() {
		alt, err := r.newPayload(msg, images)
		if err != nil {
			return nil, err
		}
		out = &email.Part{
			Header:   email.StripContentHeaders(msg.Header),
			Parts:    alt.Parts,
			Preamble: msg.Preamble,
			Epilogue: msg.Epilogue,
		}
		out.Header.Set("Content-Type", "multipart/alternative")
		if out.Preamble == "" {
			out.Preamble = defaultPreamble
		}
	} else {
		idx := -1
		for i, part := range msg.Parts {
			if part.MediaType() == "text/plain" {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, ErrNoPlainPart
		}
		alt, err := r.newPayload(msg.Parts[idx], images)
		if err != nil {
			return nil, err
		}
		out = &email.Part{
			Header:   msg.Header.Copy(),
			Parts:    make([]*email.Part, len(msg.Parts)),
			Preamble: msg.Preamble,
			Epilogue: msg.Epilogue,
		}
		copy(out.Parts, msg.Parts)
		out.Parts[idx] = alt
	}

	if r.AddHeader {
		out.Header.Add(modifiedByHeader, "html-footer "+Version)
	}
	return out, nil
}

// RewriteIfEligible combines the eligibility check and the rewrite. The
// original message comes back untouched (modified=false) when the signature
// carries no literal-HTML marker.
func (r *Rewriter) RewriteIfEligible(msg *email.Part) (out *email.Part, modified bool, err error) {
	if !r.IsEligible(msg) {
		return msg, false, nil
	}
	out, err = r.Rewrite(msg)
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// newPayload splits one text/plain part into content and signature and
// assembles the replacement tree.
func (r *Rewriter) newPayload(part *email.Part, images *Resolver) (*email.Part, error) {
	content, sig := SplitSignature(normalize(string(part.Body)))
	return assemble(content, sig, images)
}

// firstPlainText returns the body text of the message's first text/plain
// part: the whole body for a single-part plain message, else the first
// text/plain child at the top level. Other messages yield "".
func firstPlainText(msg *email.Part) string {
	if !msg.IsMultipart() {
		if msg.MediaType() != "text/plain" {
			return ""
		}
		return normalize(string(msg.Body))
	}
	for _, part := range msg.Parts {
		if part.MediaType() == "text/plain" {
			return normalize(string(part.Body))
		}
	}
	return ""
}

// normalize strips carriage returns so the line-oriented engine only ever
// sees \n endings.
func normalize(txt string) string {
	return strings.ReplaceAll(txt, "\r\n", "\n")
}
