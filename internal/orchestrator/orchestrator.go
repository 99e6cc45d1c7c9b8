// Package orchestrator runs one command end to end: load state, collect and
// reconcile windows, apply the command, retile and persist.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/1broseidon/vega/internal/command"
	"github.com/1broseidon/vega/internal/order"
	"github.com/1broseidon/vega/internal/platform"
	"github.com/1broseidon/vega/internal/state"
	"github.com/1broseidon/vega/internal/tiling"
	"github.com/1broseidon/vega/internal/window"
)

// Store loads and saves the session state. *state.Store satisfies it.
type Store interface {
	Load() state.SessionState
	Save(state.SessionState) error
}

// Report summarizes one pass.
type Report struct {
	Command  command.Command
	Layout   tiling.Layout
	Order    []window.Signature
	Promoted bool

	// Tiled is how many windows were laid out; Applied and Failed split
	// those by the outcome of the move/resize request.
	Tiled   int
	Applied int
	Failed  int

	Persisted bool
}

// Orchestrator drives a platform.Provider through one command at a time.
type Orchestrator struct {
	provider platform.Provider
	store    Store
	logger   *slog.Logger
}

// New returns an Orchestrator. A nil logger discards diagnostics.
func New(provider platform.Provider, store Store, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Orchestrator{provider: provider, store: store, logger: logger}
}

// Run applies cmd and retiles the main display.
//
// Only an unknown command or a failure to enumerate windows is returned as
// an error. An unknown command leaves the persisted state untouched. When
// enumeration fails the command is still applied to the saved layout and
// persisted with the saved order. Every other problem is logged and the state
// is persisted regardless.
func (o *Orchestrator) Run(cmd command.Command) (Report, error) {
	if _, err := command.Parse(string(cmd)); err != nil {
		return Report{}, err
	}

	saved := o.store.Load()

	live, err := o.provider.CollectLiveWindows()
	if err != nil {
		o.persistWithoutWindows(cmd, saved)
		return Report{}, fmt.Errorf("failed to collect windows: %w", err)
	}
	set := window.NewSet(live)
	defer set.Release()

	current := command.State{
		Layout: saved.CurrentLayout,
		Order:  order.Reconcile(saved.WindowOrder, set.Windows()),
	}

	var focused window.Handle
	if cmd == command.Promote {
		if h, ok := o.provider.FocusedWindow(); ok {
			defer h.Release()
			focused = h
		}
	}

	res, err := command.Apply(cmd, current, focused)
	if err != nil {
		return Report{}, err
	}
	if res.Diagnostic != nil {
		o.logger.Warn("promote left window order unchanged", "error", res.Diagnostic)
	}

	report := Report{
		Command:  cmd,
		Layout:   res.State.Layout,
		Order:    window.Signatures(res.State.Order),
		Promoted: res.Promoted,
	}

	o.retile(res.State, &report)

	next := state.SessionState{
		CurrentLayout: res.State.Layout,
		WindowOrder:   report.Order,
	}
	if err := o.store.Save(next); err != nil {
		o.logger.Warn("failed to persist session state", "error", err)
	} else {
		report.Persisted = true
	}

	o.logger.Debug("command applied",
		"command", string(cmd),
		"layout", report.Layout.String(),
		"windows", len(report.Order),
		"tiled", report.Tiled,
		"failed", report.Failed,
	)
	return report, nil
}

// persistWithoutWindows records the command's layout change when no live
// windows are available. The saved order is written back as is.
func (o *Orchestrator) persistWithoutWindows(cmd command.Command, saved state.SessionState) {
	res, err := command.Apply(cmd, command.State{Layout: saved.CurrentLayout}, nil)
	if err != nil {
		return
	}
	next := state.SessionState{
		CurrentLayout: res.State.Layout,
		WindowOrder:   saved.WindowOrder,
	}
	if err := o.store.Save(next); err != nil {
		o.logger.Warn("failed to persist session state", "error", err)
	}
}

func (o *Orchestrator) retile(s command.State, report *Report) {
	screen, err := o.provider.MainDisplayRect()
	if err != nil {
		o.logger.Warn("skipping retile", "error", err)
		return
	}
	o.logDisplays()

	tiled := o.tileable(s.Order, screen)
	rects := tiling.Tile(s.Layout, toTilingRect(screen), len(tiled))
	report.Tiled = len(tiled)

	for i, w := range tiled {
		if err := o.provider.MoveResize(w.Handle, toPlatformRect(rects[i])); err != nil {
			report.Failed++
			o.logger.Warn("failed to move window",
				"app", w.Signature.App,
				"title", w.Signature.Title,
				"error", err,
			)
			continue
		}
		report.Applied++
	}
}

// tileable keeps the windows that take part in this pass's layout: not
// minimized, with readable geometry, and centred on the main display. The
// rest stay in the order and are laid out again once they qualify.
func (o *Orchestrator) tileable(windows []window.LiveWindow, screen platform.Rect) []window.LiveWindow {
	out := make([]window.LiveWindow, 0, len(windows))
	for _, w := range windows {
		if o.provider.IsMinimized(w.Handle) {
			o.logger.Debug("not tiling minimized window", "app", w.Signature.App, "title", w.Signature.Title)
			continue
		}
		r, ok := o.provider.WindowRect(w.Handle)
		if !ok {
			o.logger.Warn("window geometry unavailable", "app", w.Signature.App, "title", w.Signature.Title)
			continue
		}
		if cx, cy := r.Center(); !screen.Contains(cx, cy) {
			o.logger.Debug("not tiling window outside main display", "app", w.Signature.App, "title", w.Signature.Title)
			continue
		}
		out = append(out, w)
	}
	return out
}

func (o *Orchestrator) logDisplays() {
	if !o.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	displays, err := o.provider.Displays()
	if err != nil {
		o.logger.Debug("failed to list displays", "error", err)
		return
	}
	for _, d := range displays {
		o.logger.Debug("display",
			"id", d.ID,
			"name", d.Name,
			"main", d.Main,
			"x", d.Bounds.X, "y", d.Bounds.Y,
			"width", d.Bounds.Width, "height", d.Bounds.Height,
		)
	}
}

func toTilingRect(r platform.Rect) tiling.Rect {
	return tiling.Rect{
		X:      float64(r.X),
		Y:      float64(r.Y),
		Width:  float64(r.Width),
		Height: float64(r.Height),
	}
}

// toPlatformRect rounds the edges rather than the size, so rects that share
// an edge in float space still share it in pixels.
func toPlatformRect(r tiling.Rect) platform.Rect {
	x0 := int(math.Round(r.X))
	y0 := int(math.Round(r.Y))
	x1 := int(math.Round(r.X + r.Width))
	y1 := int(math.Round(r.Y + r.Height))
	return platform.Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}
