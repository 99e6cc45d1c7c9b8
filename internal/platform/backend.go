// Package platform connects the tiler to the host window system.
package platform

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/1broseidon/vega/internal/window"
)

var (
	// ErrUnsupported is returned by Open when no window system backend is
	// compiled in for this OS.
	ErrUnsupported = fmt.Errorf("window tiling is not supported on %s/%s; supported: linux (X11)", runtime.GOOS, runtime.GOARCH)

	// ErrNoDisplay is returned when the main display cannot be determined.
	ErrNoDisplay = errors.New("main display unavailable")
)

const (
	// UntitledTitle names a window that exposes no title at all. A window
	// whose title is present but empty is not tiled.
	UntitledTitle = "<Untitled>"

	// UnknownApp names a window whose owning application cannot be read.
	UnknownApp = "<unknown>"
)

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Center returns the midpoint of r, rounded toward the origin.
func (r Rect) Center() (x, y int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Contains reports whether the point lies inside r. The right and bottom
// edges are exclusive.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Display describes a physical display.
type Display struct {
	ID     int
	Name   string
	Bounds Rect
	Main   bool
}

// Provider abstracts the window-system operations one command needs.
//
// Handles returned by CollectLiveWindows and FocusedWindow own OS resources
// and must be released exactly once by the caller.
type Provider interface {
	// CollectLiveWindows lists the tileable windows on the current desktop
	// in discovery order.
	CollectLiveWindows() ([]window.LiveWindow, error)

	// WindowRect returns the window's current frame. ok is false when the
	// geometry cannot be read.
	WindowRect(h window.Handle) (r Rect, ok bool)

	// IsMinimized reports whether the window is iconified.
	IsMinimized(h window.Handle) bool

	// FocusedWindow returns the window with keyboard focus, if any.
	FocusedWindow() (window.Handle, bool)

	// MoveResize requests new geometry for a window.
	MoveResize(h window.Handle, r Rect) error

	// MainDisplayRect returns the usable area of the main display.
	MainDisplayRect() (Rect, error)

	// Displays lists every active display.
	Displays() ([]Display, error)

	// Close releases the connection to the window system.
	Close() error
}

// Options configures a Provider.
type Options struct {
	// ExcludedApps names applications whose windows are never collected.
	// Matching is case-insensitive.
	ExcludedApps []string

	// Logger receives diagnostics. Nil discards them.
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// NewProviderFunc is set by the OS-specific backend via init().
// See backend_linux.go for the X11 registration.
var NewProviderFunc func(Options) (Provider, error)

// Open returns a Provider for the current OS.
func Open(opts Options) (Provider, error) {
	if NewProviderFunc == nil {
		return nil, ErrUnsupported
	}
	return NewProviderFunc(opts)
}

// AppFilter decides which collected windows are tracked.
type AppFilter struct {
	excluded map[string]struct{}
}

// NewAppFilter builds a filter that rejects the named applications.
func NewAppFilter(excludedApps []string) AppFilter {
	f := AppFilter{excluded: make(map[string]struct{}, len(excludedApps))}
	for _, app := range excludedApps {
		app = strings.ToLower(strings.TrimSpace(app))
		if app != "" {
			f.excluded[app] = struct{}{}
		}
	}
	return f
}

// Track reports whether a window owned by app with the given title should be
// tiled. Excluded applications and windows with an empty title are skipped.
// A title of only whitespace is still a title.
func (f AppFilter) Track(app, title string) bool {
	if title == "" {
		return false
	}
	_, excluded := f.excluded[strings.ToLower(strings.TrimSpace(app))]
	return !excluded
}
