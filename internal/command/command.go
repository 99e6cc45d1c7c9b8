// Package command implements the layout/order state machine driven by the
// cycle and promote shortcuts.
package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/1broseidon/vega/internal/tiling"
	"github.com/1broseidon/vega/internal/window"
)

// Command is one user request. Exactly one is applied per invocation.
type Command string

const (
	Cycle   Command = "cycle"
	Promote Command = "promote"
)

var (
	// ErrUnknownCommand is returned for anything other than cycle or promote.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrNoFocusedWindow means the OS reported no focused window.
	ErrNoFocusedWindow = errors.New("no focused window")

	// ErrFocusNotTiled means the focused window is not part of the tiled set.
	ErrFocusNotTiled = errors.New("focused window is not managed")
)

// Commands returns every supported command.
func Commands() []Command {
	return []Command{Cycle, Promote}
}

// Parse converts a CLI argument into a Command.
func Parse(s string) (Command, error) {
	switch c := Command(strings.TrimSpace(s)); c {
	case Cycle, Promote:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCommand, s)
	}
}

// State is the pair a command transitions: the active layout and the
// reconciled window order.
type State struct {
	Layout tiling.Layout
	Order  []window.LiveWindow
}

// Result is the state after a command, plus what happened.
type Result struct {
	State State

	// Promoted is true when promote moved a window to the master slot.
	Promoted bool

	// Diagnostic explains why promote left the order untouched. It is
	// informational; the returned State is valid either way.
	Diagnostic error
}

// Apply runs cmd against s. focused is only consulted by promote and may be
// nil. The input order is never modified.
func Apply(cmd Command, s State, focused window.Handle) (Result, error) {
	order := make([]window.LiveWindow, len(s.Order))
	copy(order, s.Order)

	switch cmd {
	case Cycle:
		return Result{State: State{Layout: s.Layout.Next(), Order: order}}, nil

	case Promote:
		res := Result{State: State{Layout: s.Layout, Order: order}}
		if focused == nil {
			res.Diagnostic = ErrNoFocusedWindow
			return res, nil
		}
		idx := window.IndexOfHandle(order, focused)
		if idx < 0 {
			res.Diagnostic = ErrFocusNotTiled
			return res, nil
		}
		res.State.Order = moveToFront(order, idx)
		res.Promoted = true
		return res, nil

	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownCommand, string(cmd))
	}
}

// moveToFront moves windows[idx] to index 0, shifting the entries before it
// one slot right. Everything else keeps its relative order.
func moveToFront(windows []window.LiveWindow, idx int) []window.LiveWindow {
	if idx <= 0 {
		return windows
	}
	target := windows[idx]
	copy(windows[1:idx+1], windows[:idx])
	windows[0] = target
	return windows
}
