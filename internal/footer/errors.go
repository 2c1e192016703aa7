package footer

import (
	"errors"
	"fmt"
)

// ErrNoPlainPart reports a multipart message without a top-level text/plain
// child to replace.
var ErrNoPlainPart = errors.New("no text/plain part to rewrite")

// ImageError reports a referenced inline image that could not be resolved
// against the image directory. It aborts the whole rewrite; a partially
// substituted message is never produced.
type ImageError struct {
	Src string
	Err error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("cannot resolve image %q: %v", e.Src, e.Err)
}

func (e *ImageError) Unwrap() error { return e.Err }
