// Package window defines how vega identifies windows.
//
// Two equality notions coexist and are never interchanged:
//   - Handle identity, via Handle.Equal, is exact but only valid inside the
//     invocation that discovered the handle. It is used to match the focused
//     window against the live set.
//   - Signature equality compares (application, title) pairs and survives
//     across invocations. It is used to match persisted order to live windows.
package window

import (
	"fmt"
	"strings"
)

// Handle is an OS-level reference to a live window.
type Handle interface {
	// Equal reports whether both handles refer to the same OS window.
	Equal(other Handle) bool
	// Release drops the reference this handle holds on the OS window.
	Release()
}

// Signature is the best-effort cross-invocation identity of a window.
// It is not unique: two windows of one application can share a title.
type Signature struct {
	App   string
	Title string
}

// NewSignature builds a signature whose fields are valid UTF-8. Invalid
// sequences become U+FFFD so the value compares equal after a JSON round trip.
func NewSignature(app, title string) Signature {
	return Signature{
		App:   strings.ToValidUTF8(app, "\uFFFD"),
		Title: strings.ToValidUTF8(title, "\uFFFD"),
	}
}

func (s Signature) String() string {
	return fmt.Sprintf("%s: %s", s.App, s.Title)
}

// LiveWindow pairs a handle with the signature it had at discovery time.
type LiveWindow struct {
	Handle    Handle
	Signature Signature
}

// IndexOfHandle returns the index of the window whose handle is identical to
// h, or -1 if none is.
func IndexOfHandle(windows []LiveWindow, h Handle) int {
	if h == nil {
		return -1
	}
	for i, w := range windows {
		if w.Handle != nil && w.Handle.Equal(h) {
			return i
		}
	}
	return -1
}

// Signatures projects windows onto their signatures, preserving order.
func Signatures(windows []LiveWindow) []Signature {
	out := make([]Signature, len(windows))
	for i, w := range windows {
		out[i] = w.Signature
	}
	return out
}
