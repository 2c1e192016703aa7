// Package footer rewrites plain mail bodies that carry a literal-HTML
// region in their signature into multipart/alternative plain+HTML messages.
package footer

import "regexp"

// sigDelimRe matches the conventional signature delimiter: a line that is
// exactly "-- " (trailing space required). The non-greedy prefix makes the
// earliest delimiter win when a body contains several.
var sigDelimRe = regexp.MustCompile(`(?ms)\A(.*?)^-- $\n?(.*)\z`)

// SplitSignature cuts a body into the text before the signature delimiter
// and the signature itself. The delimiter line belongs to neither half; it
// is reconstructed when the plain branch is assembled. A body without a
// delimiter comes back whole with an empty signature.
func SplitSignature(body string) (content, signature string) {
	m := sigDelimRe.FindStringSubmatch(body)
	if m == nil {
		return body, ""
	}
	return m[1], m[2]
}
