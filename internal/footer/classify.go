package footer

import (
	"regexp"
	"strings"
)

// Mode tags a signature segment as preformatted text or literal markup.
type Mode int

const (
	// ModePlain lines end up preformatted in the HTML branch and verbatim
	// in the plain branch.
	ModePlain Mode = iota
	// ModeHTML lines are emitted as raw markup in the HTML branch only.
	ModeHTML
)

// The marker lines that flip the classifier state. They never appear in any
// output branch.
const (
	markerOpen  = "<html>"
	markerClose = "</html>"
)

// htmlMarkerRe finds an opening marker on its own line; its presence in the
// signature is what makes a message eligible for rewriting.
var htmlMarkerRe = regexp.MustCompile(`(?m)^<html>$`)

// Segment is a run of consecutive signature lines sharing one mode.
// Trailing newlines are restored, so concatenating all segment texts of one
// mode reproduces those lines byte for byte.
type Segment struct {
	Mode Mode
	Text string
}

// Classify splits signature text into ordered plain and literal-HTML
// segments. It is a two-state automaton: classification starts in plain
// mode, a "<html>" line switches to HTML mode, a "</html>" line switches
// back, and every other line accumulates into the open segment of the
// current mode. Mode flips and end of input close segments; empty segments
// are dropped.
func Classify(signature string) []Segment {
	if signature == "" {
		return nil
	}

	lines := strings.Split(signature, "\n")
	if lines[len(lines)-1] == "" {
		// Split leaves an empty element after a trailing newline.
		lines = lines[:len(lines)-1]
	}

	var segs []Segment
	mode := ModePlain
	var buf strings.Builder

	flush := func() {
		if buf.Len() > 0 {
			segs = append(segs, Segment{Mode: mode, Text: buf.String()})
			buf.Reset()
		}
	}

	// A marker that does not change the mode is a no-op and must not split
	// the open run.
	setMode := func(m Mode) {
		if m != mode {
			flush()
			mode = m
		}
	}

	for _, line := range lines {
		switch line {
		case markerOpen:
			setMode(ModeHTML)
		case markerClose:
			setMode(ModePlain)
		default:
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
	}
	flush()

	return segs
}

// hasHTMLMarker reports whether the signature contains an opening marker
// line, using the same line-level match the classifier applies.
func hasHTMLMarker(signature string) bool {
	return htmlMarkerRe.MatchString(signature)
}
