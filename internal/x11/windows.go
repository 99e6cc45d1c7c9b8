package x11

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
	"golang.org/x/text/encoding/charmap"
)

const (
	stateHidden  = "_NET_WM_STATE_HIDDEN"
	stateMaxHorz = "_NET_WM_STATE_MAXIMIZED_HORZ"
	stateMaxVert = "_NET_WM_STATE_MAXIMIZED_VERT"
)

const (
	typeNormal  = "_NET_WM_WINDOW_TYPE_NORMAL"
	typeDesktop = "_NET_WM_WINDOW_TYPE_DESKTOP"
	typeDock    = "_NET_WM_WINDOW_TYPE_DOCK"
	typeSplash  = "_NET_WM_WINDOW_TYPE_SPLASH"
	typeNotify  = "_NET_WM_WINDOW_TYPE_NOTIFICATION"
)

// allDesktops is the _NET_WM_DESKTOP value of sticky windows.
const allDesktops = 0xFFFFFFFF

// ClientList returns the managed top-level windows in the window manager's
// mapping order.
func (c *Connection) ClientList() ([]xproto.Window, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}
	return clients, nil
}

// MoveResizeWindow moves and resizes a window to the specified geometry.
// The request goes through the window manager when possible and falls back
// to a checked ConfigureWindow, whose error is returned.
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	// Maximized windows ignore geometry requests in most window managers.
	c.unmaximizeWindow(windowID)

	if err := ewmh.MoveresizeWindow(c.XUtil, windowID, x, y, width, height); err == nil {
		return nil
	}

	// Fallback to direct window manipulation
	mask := uint16(xproto.ConfigWindowX | xproto.ConfigWindowY | xproto.ConfigWindowWidth | xproto.ConfigWindowHeight)
	values := []uint32{uint32(int32(x)), uint32(int32(y)), uint32(max(width, 1)), uint32(max(height, 1))}
	if err := xproto.ConfigureWindowChecked(c.XUtil.Conn(), windowID, mask, values).Check(); err != nil {
		return fmt.Errorf("configure window 0x%x: %w", uint32(windowID), err)
	}
	return nil
}

func (c *Connection) unmaximizeWindow(windowID xproto.Window) {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return
	}
	if hasState(states, stateMaxHorz) {
		ewmh.WmStateReq(c.XUtil, windowID, ewmh.StateRemove, stateMaxHorz)
	}
	if hasState(states, stateMaxVert) {
		ewmh.WmStateReq(c.XUtil, windowID, ewmh.StateRemove, stateMaxVert)
	}
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}
	return isNormalType(types)
}

func isNormalType(types []string) bool {
	for _, t := range types {
		switch t {
		case typeNormal:
			return true
		case typeDesktop, typeDock, typeSplash, typeNotify:
			return false
		}
	}
	return len(types) == 0
}

// IsHidden reports whether the window is iconified.
func (c *Connection) IsHidden(windowID xproto.Window) bool {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	return hasState(states, stateHidden)
}

func hasState(states []string, want string) bool {
	for _, s := range states {
		if s == want {
			return true
		}
	}
	return false
}

// OnCurrentDesktop reports whether the window is visible on the active
// virtual desktop. Sticky windows and window managers without desktop
// support count as visible.
func (c *Connection) OnCurrentDesktop(windowID xproto.Window) bool {
	current, err := ewmh.CurrentDesktopGet(c.XUtil)
	if err != nil {
		return true
	}
	desktop, err := ewmh.WmDesktopGet(c.XUtil, windowID)
	if err != nil {
		return true
	}
	return onDesktop(desktop, current)
}

func onDesktop(windowDesktop, current uint) bool {
	return windowDesktop == allDesktops || windowDesktop == current
}

// WindowClass returns the WM_CLASS class name, which identifies the owning
// application.
func (c *Connection) WindowClass(windowID xproto.Window) string {
	wmClass, err := icccm.WmClassGet(c.XUtil, windowID)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(wmClass.Class)
}

// WindowTitle returns _NET_WM_NAME, falling back to WM_NAME. ok is false
// when the window sets neither property.
func (c *Connection) WindowTitle(windowID xproto.Window) (title string, ok bool) {
	if name, err := ewmh.WmNameGet(c.XUtil, windowID); err == nil {
		ok = true
		if title = strings.TrimSpace(name); title != "" {
			return title, true
		}
	}

	reply, err := xprop.GetProperty(c.XUtil, windowID, "WM_NAME")
	if err != nil {
		return "", ok
	}
	typeName, _ := xprop.AtomName(c.XUtil, reply.Type)
	return strings.TrimSpace(decodeTextProperty(typeName, reply.Value)), true
}

// decodeTextProperty converts an ICCCM text property to UTF-8. STRING is
// Latin-1 and UTF8_STRING is used as is. Any other type that is not valid
// UTF-8 is read as Latin-1 too.
func decodeTextProperty(typeName string, value []byte) string {
	if typeName != "STRING" && utf8.Valid(value) {
		return string(value)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(value)
	if err != nil {
		return strings.ToValidUTF8(string(value), "\uFFFD")
	}
	return string(decoded)
}

// Geometry returns the window's frame rectangle in root coordinates,
// including window manager decorations when the frame can be found.
func (c *Connection) Geometry(windowID xproto.Window) (x, y, width, height int, err error) {
	if r, err := xwindow.New(c.XUtil, windowID).DecorGeometry(); err == nil {
		return r.X(), r.Y(), r.Width(), r.Height(), nil
	}

	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return 0, 0, 0, 0, err
	}

	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return 0, 0, 0, 0, err
	}

	return int(translate.DstX), int(translate.DstY), int(geom.Width), int(geom.Height), nil
}

// GetActiveWindow returns _NET_ACTIVE_WINDOW. Zero means nothing is focused.
func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}
