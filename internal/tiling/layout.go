package tiling

import (
	"errors"
	"fmt"
)

// MasterRatio is the share of the screen given to the master slot in the
// Vertical and Horizontal layouts.
const MasterRatio = 0.6

// ErrUnknownLayout is returned when a layout name cannot be parsed.
var ErrUnknownLayout = errors.New("unknown layout")

// Rect represents a window position and size in screen coordinates.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Layout selects how windows are arranged on the main display.
type Layout int

const (
	// Vertical puts the master on the left and stacks the rest on the right.
	Vertical Layout = iota
	// Horizontal puts the master on top and lines the rest up below it.
	Horizontal
	// Monocle gives every window the whole screen.
	Monocle
)

var layoutNames = [...]string{
	Vertical:   "Vertical",
	Horizontal: "Horizontal",
	Monocle:    "Monocle",
}

// Layouts returns every layout in cycle order.
func Layouts() []Layout {
	return []Layout{Vertical, Horizontal, Monocle}
}

func (l Layout) valid() bool {
	return l >= Vertical && l <= Monocle
}

func (l Layout) String() string {
	if !l.valid() {
		return fmt.Sprintf("Layout(%d)", int(l))
	}
	return layoutNames[l]
}

// Next returns the layout that follows l in the cycle, wrapping after Monocle.
// An out-of-range value restarts the cycle at Vertical.
func (l Layout) Next() Layout {
	if !l.valid() {
		return Vertical
	}
	return (l + 1) % Layout(len(layoutNames))
}

// ParseLayout converts a persisted layout name back into a Layout.
func ParseLayout(name string) (Layout, error) {
	for i, n := range layoutNames {
		if n == name {
			return Layout(i), nil
		}
	}
	return Vertical, fmt.Errorf("%w: %q", ErrUnknownLayout, name)
}

// MarshalText implements encoding.TextMarshaler.
func (l Layout) MarshalText() ([]byte, error) {
	if !l.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLayout, int(l))
	}
	return []byte(layoutNames[l]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Layout) UnmarshalText(text []byte) error {
	parsed, err := ParseLayout(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Tile computes one rectangle per slot for n windows on screen. Index 0 is the
// master slot. The result is always of length n.
func Tile(layout Layout, screen Rect, n int) []Rect {
	if n <= 0 {
		return []Rect{}
	}

	// A single window always fills the screen; this also keeps n-1 out of
	// the stack divisions below.
	if n == 1 {
		return []Rect{screen}
	}

	switch layout {
	case Horizontal:
		return tileHorizontal(screen, n)
	case Monocle:
		return tileMonocle(screen, n)
	default:
		return tileVertical(screen, n)
	}
}

func tileVertical(screen Rect, n int) []Rect {
	masterWidth := screen.Width * MasterRatio
	stackWidth := screen.Width - masterWidth
	stackCount := n - 1

	rects := make([]Rect, n)
	rects[0] = Rect{
		X:      screen.X,
		Y:      screen.Y,
		Width:  masterWidth,
		Height: screen.Height,
	}

	for i := 0; i < stackCount; i++ {
		top := splitAt(screen.Y, screen.Height, i, stackCount)
		bottom := splitAt(screen.Y, screen.Height, i+1, stackCount)
		rects[i+1] = Rect{
			X:      screen.X + masterWidth,
			Y:      top,
			Width:  stackWidth,
			Height: bottom - top,
		}
	}
	return rects
}

func tileHorizontal(screen Rect, n int) []Rect {
	masterHeight := screen.Height * MasterRatio
	stackHeight := screen.Height - masterHeight
	stackCount := n - 1

	rects := make([]Rect, n)
	rects[0] = Rect{
		X:      screen.X,
		Y:      screen.Y,
		Width:  screen.Width,
		Height: masterHeight,
	}

	for i := 0; i < stackCount; i++ {
		left := splitAt(screen.X, screen.Width, i, stackCount)
		right := splitAt(screen.X, screen.Width, i+1, stackCount)
		rects[i+1] = Rect{
			X:      left,
			Y:      screen.Y + masterHeight,
			Width:  right - left,
			Height: stackHeight,
		}
	}
	return rects
}

func tileMonocle(screen Rect, n int) []Rect {
	rects := make([]Rect, n)
	for i := range rects {
		rects[i] = screen
	}
	return rects
}

// splitAt returns the k-th of parts+1 evenly spaced boundaries across
// [origin, origin+length]. Neighbouring slots share a boundary, so the slots
// never overlap and the last one ends exactly on the far edge.
func splitAt(origin, length float64, k, parts int) float64 {
	if k >= parts {
		return origin + length
	}
	return origin + length*float64(k)/float64(parts)
}
