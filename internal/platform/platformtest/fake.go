// Package platformtest provides an in-memory platform.Provider for tests.
package platformtest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/1broseidon/vega/internal/platform"
	"github.com/1broseidon/vega/internal/window"
)

// Window is one fake top-level window.
type Window struct {
	App       string
	Title     string
	Rect      platform.Rect
	NoRect    bool
	Minimized bool
}

// Move records one MoveResize call.
type Move struct {
	Index     int
	Signature window.Signature
	Rect      platform.Rect
}

// Provider is a scripted platform.Provider. Configure the exported fields
// before use; they are not synchronized with method calls.
type Provider struct {
	Windows []Window

	// Focused indexes Windows. A negative value means nothing has focus.
	Focused int

	Display    platform.Rect
	DisplayErr error
	CollectErr error

	// FailMove makes MoveResize fail for the listed window indexes.
	FailMove map[int]bool

	mu       sync.Mutex
	moves    []Move
	acquired int
	released int
	closed   bool
}

var _ platform.Provider = (*Provider)(nil)

// New returns a provider with a 1000x800 display at the origin and no focus.
func New(windows ...Window) *Provider {
	return &Provider{
		Windows: windows,
		Focused: -1,
		Display: platform.Rect{Width: 1000, Height: 800},
	}
}

type handle struct {
	idx int
	p   *Provider
}

func (h *handle) Equal(other window.Handle) bool {
	o, ok := other.(*handle)
	return ok && o != nil && o.p == h.p && o.idx == h.idx
}

func (h *handle) Release() {
	h.p.mu.Lock()
	h.p.released++
	h.p.mu.Unlock()
}

func (p *Provider) newHandle(idx int) *handle {
	p.mu.Lock()
	p.acquired++
	p.mu.Unlock()
	return &handle{idx: idx, p: p}
}

func (p *Provider) index(h window.Handle) (int, bool) {
	fh, ok := h.(*handle)
	if !ok || fh == nil || fh.p != p || fh.idx < 0 || fh.idx >= len(p.Windows) {
		return 0, false
	}
	return fh.idx, true
}

func (p *Provider) CollectLiveWindows() ([]window.LiveWindow, error) {
	if p.CollectErr != nil {
		return nil, p.CollectErr
	}
	out := make([]window.LiveWindow, 0, len(p.Windows))
	for i, w := range p.Windows {
		out = append(out, window.LiveWindow{
			Handle:    p.newHandle(i),
			Signature: window.NewSignature(w.App, w.Title),
		})
	}
	return out, nil
}

func (p *Provider) WindowRect(h window.Handle) (platform.Rect, bool) {
	i, ok := p.index(h)
	if !ok || p.Windows[i].NoRect {
		return platform.Rect{}, false
	}
	return p.Windows[i].Rect, true
}

func (p *Provider) IsMinimized(h window.Handle) bool {
	i, ok := p.index(h)
	return ok && p.Windows[i].Minimized
}

// FocusedWindow returns a fresh handle each call, so callers must compare
// with Equal rather than by pointer.
func (p *Provider) FocusedWindow() (window.Handle, bool) {
	if p.Focused < 0 || p.Focused >= len(p.Windows) {
		return nil, false
	}
	return p.newHandle(p.Focused), true
}

func (p *Provider) MoveResize(h window.Handle, r platform.Rect) error {
	i, ok := p.index(h)
	if !ok {
		return errors.New("foreign handle")
	}
	if p.FailMove[i] {
		return fmt.Errorf("window %d refused geometry", i)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.moves = append(p.moves, Move{
		Index:     i,
		Signature: window.NewSignature(p.Windows[i].App, p.Windows[i].Title),
		Rect:      r,
	})
	return nil
}

func (p *Provider) MainDisplayRect() (platform.Rect, error) {
	if p.DisplayErr != nil {
		return platform.Rect{}, p.DisplayErr
	}
	return p.Display, nil
}

func (p *Provider) Displays() ([]platform.Display, error) {
	if p.DisplayErr != nil {
		return nil, p.DisplayErr
	}
	return []platform.Display{{ID: 0, Name: "fake", Bounds: p.Display, Main: true}}, nil
}

func (p *Provider) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

// Moves returns the recorded MoveResize calls in order.
func (p *Provider) Moves() []Move {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Move, len(p.moves))
	copy(out, p.moves)
	return out
}

// Outstanding returns handles acquired but not yet released.
func (p *Provider) Outstanding() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.acquired - p.released
}

// Acquired returns the total number of handles handed out.
func (p *Provider) Acquired() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.acquired
}

// Closed reports whether Close was called.
func (p *Provider) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
