// Package email defines the decoded MIME part tree the filter operates on.
package email

import (
	"mime"
	"strings"

	"github.com/emersion/go-message/textproto"
)

// Part is one node of a decoded message: either a leaf carrying Body, or a
// multipart container carrying Parts. Headers keep their original order,
// including duplicate field names. A Part tree is never mutated after it has
// been handed to a consumer; rewriting builds a new tree instead.
type Part struct {
	Header textproto.Header
	Body   []byte
	Parts  []*Part

	// Preamble and Epilogue are the free text before the first and after
	// the last boundary of a multipart container.
	Preamble string
	Epilogue string
}

// MediaType returns the part's lowercased media type. A missing or
// unparseable Content-Type header defaults to text/plain.
func (p *Part) MediaType() string {
	t, _, err := mime.ParseMediaType(p.Header.Get("Content-Type"))
	if err != nil {
		return "text/plain"
	}
	return strings.ToLower(t)
}

// ContentTypeParam returns a single Content-Type parameter such as the
// charset, or "" if absent.
func (p *Part) ContentTypeParam(name string) string {
	_, params, err := mime.ParseMediaType(p.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	return params[name]
}

// IsMultipart reports whether the part is a multipart container.
func (p *Part) IsMultipart() bool {
	return strings.HasPrefix(p.MediaType(), "multipart/")
}

// NewText builds a UTF-8 text leaf of the given subtype ("plain", "html").
func NewText(subtype, body string) *Part {
	p := &Part{Body: []byte(body)}
	p.Header.Set("Content-Type", mime.FormatMediaType("text/"+subtype, map[string]string{"charset": "utf-8"}))
	p.Header.Set("Content-Transfer-Encoding", "8bit")
	return p
}

// NewMultipart builds a multipart container of the given subtype with the
// given ordered children. The boundary parameter is chosen at encode time.
func NewMultipart(subtype string, parts ...*Part) *Part {
	p := &Part{Parts: parts}
	p.Header.Set("Content-Type", "multipart/"+subtype)
	return p
}

// StripContentHeaders copies h without any Content-* fields. Those describe
// a body that is being replaced and would be invalid on the new container.
func StripContentHeaders(h textproto.Header) textproto.Header {
	out := h.Copy()
	fields := out.Fields()
	for fields.Next() {
		if strings.HasPrefix(strings.ToLower(fields.Key()), "content-") {
			fields.Del()
		}
	}
	return out
}
