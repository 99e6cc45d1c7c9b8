// Package state persists the active layout and window order between
// invocations.
package state

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/1broseidon/vega/internal/tiling"
	"github.com/1broseidon/vega/internal/window"
)

// ErrMalformed is wrapped by Decode when the document has the wrong shape.
var ErrMalformed = errors.New("malformed session state")

// SessionState is what survives between invocations.
type SessionState struct {
	CurrentLayout tiling.Layout
	WindowOrder   []window.Signature
}

// Default is the state used when nothing usable is on disk.
func Default() SessionState {
	return SessionState{
		CurrentLayout: tiling.Vertical,
		WindowOrder:   []window.Signature{},
	}
}

// Document is the on-disk shape. Each window_order entry is an
// [app, title] pair.
type Document struct {
	CurrentLayout string     `json:"current_layout" yaml:"current_layout"`
	WindowOrder   [][]string `json:"window_order" yaml:"window_order"`
}

// Document converts s to its serializable form.
func (s SessionState) Document() (Document, error) {
	name, err := s.CurrentLayout.MarshalText()
	if err != nil {
		return Document{}, err
	}
	doc := Document{
		CurrentLayout: string(name),
		WindowOrder:   make([][]string, 0, len(s.WindowOrder)),
	}
	for _, sig := range s.WindowOrder {
		doc.WindowOrder = append(doc.WindowOrder, []string{sig.App, sig.Title})
	}
	return doc, nil
}

func fromDocument(doc Document) (SessionState, error) {
	layout, err := tiling.ParseLayout(doc.CurrentLayout)
	if err != nil {
		return SessionState{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	s := SessionState{
		CurrentLayout: layout,
		WindowOrder:   make([]window.Signature, 0, len(doc.WindowOrder)),
	}
	for i, pair := range doc.WindowOrder {
		if len(pair) != 2 {
			return SessionState{}, fmt.Errorf("%w: window_order[%d] has %d elements, want 2", ErrMalformed, i, len(pair))
		}
		s.WindowOrder = append(s.WindowOrder, window.Signature{App: pair[0], Title: pair[1]})
	}
	return s, nil
}

// Encode serializes s as indented JSON with a trailing newline.
func Encode(s SessionState) ([]byte, error) {
	doc, err := s.Document()
	if err != nil {
		return nil, fmt.Errorf("failed to encode session state: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode session state: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a document produced by Encode. Any error means the caller
// should fall back to Default.
func Decode(data []byte) (SessionState, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return SessionState{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return fromDocument(doc)
}
