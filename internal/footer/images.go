package footer

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// imgTagRe captures an <img> tag in three pieces: everything up to the
// opening quote of the src value, the value itself, and the rest of the tag.
// Tags split across a line break are deliberately not matched.
var imgTagRe = regexp.MustCompile(`(<img[ \t][^>\n]*src=")([^"\n]+)("[^>\n]*>)`)

// Attachment is an inline image loaded from the image directory, ready to be
// attached to the multipart/related branch.
type Attachment struct {
	Filename string
	Subtype  string
	// ContentID is the minted identifier without angle brackets, exactly
	// as substituted into the cid: URI.
	ContentID string
	Data      []byte
}

// Resolver loads images referenced from assembled HTML out of a single
// read-only directory. The zero directory resolves against the process
// working directory.
type Resolver struct {
	Dir string
}

// HasLocalImages reports whether the HTML references at least one image that
// resolution would load from disk: a src with a path component and either no
// scheme or the file scheme.
func (r *Resolver) HasLocalImages(html string) bool {
	for _, m := range imgTagRe.FindAllStringSubmatch(html, -1) {
		if _, ok := localSrc(m[2]); ok {
			return true
		}
	}
	return false
}

// Resolve rewrites every local img reference in the HTML to a cid: URI and
// returns the loaded attachments. Remote references (http, cid, ...) are
// left untouched. A single unreadable local reference fails the whole pass
// with an *ImageError.
func (r *Resolver) Resolve(html string) (string, []Attachment, error) {
	var atts []Attachment
	var firstErr error

	out := imgTagRe.ReplaceAllStringFunc(html, func(tag string) string {
		if firstErr != nil {
			return tag
		}
		m := imgTagRe.FindStringSubmatch(tag)
		p, ok := localSrc(m[2])
		if !ok {
			return tag
		}

		name := path.Base(p)
		data, err := os.ReadFile(filepath.Join(r.Dir, name))
		if err != nil {
			firstErr = &ImageError{Src: m[2], Err: err}
			return tag
		}
		subtype, err := imageSubtype(data)
		if err != nil {
			firstErr = &ImageError{Src: m[2], Err: err}
			return tag
		}

		att := Attachment{
			Filename:  name,
			Subtype:   subtype,
			ContentID: newContentID(len(atts) + 1),
			Data:      data,
		}
		atts = append(atts, att)
		return m[1] + "cid:" + att.ContentID + m[3]
	})

	if firstErr != nil {
		return "", nil, firstErr
	}
	return out, atts, nil
}

// localSrc extracts the filesystem path from an img src value. It reports
// false for srcs without a path component or with a scheme other than file.
func localSrc(src string) (string, bool) {
	u, err := url.Parse(src)
	if err != nil {
		return "", false
	}
	if u.Path == "" || (u.Scheme != "" && u.Scheme != "file") {
		return "", false
	}
	return u.Path, true
}

// imageSubtype sniffs the MIME image subtype from the leading bytes.
func imageSubtype(data []byte) (string, error) {
	t := http.DetectContentType(data)
	if !strings.HasPrefix(t, "image/") {
		return "", fmt.Errorf("not a recognized image format (%s)", t)
	}
	return strings.TrimPrefix(t, "image/"), nil
}

// newContentID mints a content-id for the n-th attachment of a message.
// The random component keeps ids unique across attachments and across
// concurrently processed messages.
func newContentID(n int) string {
	return fmt.Sprintf("%s.part%d@html-footer", uuid.NewString(), n)
}
