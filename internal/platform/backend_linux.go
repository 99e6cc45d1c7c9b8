//go:build linux

package platform

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/1broseidon/vega/internal/window"
	"github.com/1broseidon/vega/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
)

func init() {
	NewProviderFunc = func(opts Options) (Provider, error) {
		return NewLinuxBackend(opts)
	}
}

// LinuxBackend implements Provider on top of an X11 connection with an
// EWMH-compliant window manager.
type LinuxBackend struct {
	conn   *x11.Connection
	filter AppFilter
	logger *slog.Logger

	mu   sync.Mutex
	refs map[xproto.Window]int
}

var _ Provider = (*LinuxBackend)(nil)

// NewLinuxBackend opens a fresh X11 connection.
func NewLinuxBackend(opts Options) (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{
		conn:   conn,
		filter: NewAppFilter(opts.ExcludedApps),
		logger: opts.logger(),
		refs:   make(map[xproto.Window]int),
	}, nil
}

// xHandle references a top-level X window. The backend counts outstanding
// handles so leaks show up when the connection is closed.
type xHandle struct {
	id   xproto.Window
	b    *LinuxBackend
	once sync.Once
}

func (h *xHandle) Equal(other window.Handle) bool {
	o, ok := other.(*xHandle)
	return ok && o != nil && o.id == h.id
}

func (h *xHandle) Release() {
	h.once.Do(func() { h.b.release(h.id) })
}

func (b *LinuxBackend) acquire(id xproto.Window) *xHandle {
	b.mu.Lock()
	b.refs[id]++
	b.mu.Unlock()
	return &xHandle{id: id, b: b}
}

func (b *LinuxBackend) release(id xproto.Window) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.refs[id] <= 1 {
		delete(b.refs, id)
		return
	}
	b.refs[id]--
}

func (b *LinuxBackend) windowID(h window.Handle) (xproto.Window, bool) {
	xh, ok := h.(*xHandle)
	if !ok || xh == nil || xh.b != b {
		return 0, false
	}
	return xh.id, true
}

// CollectLiveWindows lists normal windows on the current desktop in
// _NET_CLIENT_LIST order.
func (b *LinuxBackend) CollectLiveWindows() ([]window.LiveWindow, error) {
	clients, err := b.conn.ClientList()
	if err != nil {
		return nil, err
	}

	windows := make([]window.LiveWindow, 0, len(clients))
	for _, id := range clients {
		if !b.conn.IsNormalWindow(id) || !b.conn.OnCurrentDesktop(id) {
			continue
		}

		app := b.conn.WindowClass(id)
		if app == "" {
			app = UnknownApp
		}
		title, ok := b.conn.WindowTitle(id)
		if !ok {
			title = UntitledTitle
		}
		if !b.filter.Track(app, title) {
			b.logger.Debug("skipping window", "app", app, "title", title, "window", uint32(id))
			continue
		}

		windows = append(windows, window.LiveWindow{
			Handle:    b.acquire(id),
			Signature: window.NewSignature(app, title),
		})
	}
	return windows, nil
}

// WindowRect returns the window's frame in root coordinates.
func (b *LinuxBackend) WindowRect(h window.Handle) (Rect, bool) {
	id, ok := b.windowID(h)
	if !ok {
		return Rect{}, false
	}
	x, y, w, hgt, err := b.conn.Geometry(id)
	if err != nil {
		return Rect{}, false
	}
	return Rect{X: x, Y: y, Width: w, Height: hgt}, true
}

// IsMinimized reports _NET_WM_STATE_HIDDEN.
func (b *LinuxBackend) IsMinimized(h window.Handle) bool {
	id, ok := b.windowID(h)
	if !ok {
		return false
	}
	return b.conn.IsHidden(id)
}

// FocusedWindow returns _NET_ACTIVE_WINDOW.
func (b *LinuxBackend) FocusedWindow() (window.Handle, bool) {
	id, err := b.conn.GetActiveWindow()
	if err != nil || id == 0 {
		return nil, false
	}
	return b.acquire(id), true
}

// MoveResize moves and resizes a window to the specified bounds.
func (b *LinuxBackend) MoveResize(h window.Handle, r Rect) error {
	id, ok := b.windowID(h)
	if !ok {
		return fmt.Errorf("foreign window handle %T", h)
	}
	return b.conn.MoveResizeWindow(id, r.X, r.Y, r.Width, r.Height)
}

// MainDisplayRect returns the primary monitor minus panels and docks.
func (b *LinuxBackend) MainDisplayRect() (Rect, error) {
	m, err := b.conn.GetMainMonitor()
	if err != nil {
		return Rect{}, fmt.Errorf("%w: %v", ErrNoDisplay, err)
	}
	return Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height}, nil
}

// Displays returns all active displays.
func (b *LinuxBackend) Displays() ([]Display, error) {
	monitors, err := b.conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, Display{
			ID:     m.ID,
			Name:   m.Name,
			Bounds: Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height},
			Main:   m.Primary,
		})
	}

	sort.Slice(displays, func(i, j int) bool {
		return displays[i].ID < displays[j].ID
	})
	return displays, nil
}

// Close disconnects from the X server. Handles still outstanding are logged.
func (b *LinuxBackend) Close() error {
	b.mu.Lock()
	leaked := len(b.refs)
	b.mu.Unlock()
	if leaked > 0 {
		b.logger.Warn("window handles not released", "count", leaked)
	}
	b.conn.Close()
	return nil
}
