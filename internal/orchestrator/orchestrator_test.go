package orchestrator

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/vega/internal/command"
	"github.com/1broseidon/vega/internal/platform"
	"github.com/1broseidon/vega/internal/platform/platformtest"
	"github.com/1broseidon/vega/internal/state"
	"github.com/1broseidon/vega/internal/tiling"
	"github.com/1broseidon/vega/internal/window"
)

func win(app, title string) platformtest.Window {
	return platformtest.Window{
		App:   app,
		Title: title,
		Rect:  platform.Rect{X: 10, Y: 10, Width: 300, Height: 200},
	}
}

type memStore struct {
	st      state.SessionState
	saveErr error
	saves   int
}

func (m *memStore) Load() state.SessionState { return m.st }

func (m *memStore) Save(s state.SessionState) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.st = s
	return nil
}

func titles(sigs []window.Signature) string {
	parts := make([]string, len(sigs))
	for i, s := range sigs {
		parts[i] = s.Title
	}
	return strings.Join(parts, ",")
}

func TestRun_CycleScenarioWithoutPriorState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vega-state.json")
	store := state.NewStore(path, nil)
	provider := platformtest.New(win("App1", "T1"), win("App2", "T2"))

	report, err := New(provider, store, nil).Run(command.Cycle)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Layout != tiling.Horizontal {
		t.Fatalf("expected Horizontal, got %s", report.Layout)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("state file not written: %v", err)
	}
	persisted, err := state.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if persisted.CurrentLayout != tiling.Horizontal {
		t.Fatalf("persisted layout = %s", persisted.CurrentLayout)
	}
	want := []window.Signature{{App: "App1", Title: "T1"}, {App: "App2", Title: "T2"}}
	if len(persisted.WindowOrder) != 2 || persisted.WindowOrder[0] != want[0] || persisted.WindowOrder[1] != want[1] {
		t.Fatalf("persisted order = %v, want %v", persisted.WindowOrder, want)
	}

	moves := provider.Moves()
	if len(moves) != 2 {
		t.Fatalf("expected 2 move requests, got %d", len(moves))
	}
	if moves[0].Signature != want[0] || moves[0].Rect != (platform.Rect{X: 0, Y: 0, Width: 1000, Height: 480}) {
		t.Fatalf("unexpected master move %+v", moves[0])
	}
	if moves[1].Signature != want[1] || moves[1].Rect != (platform.Rect{X: 0, Y: 480, Width: 1000, Height: 320}) {
		t.Fatalf("unexpected stack move %+v", moves[1])
	}

	if provider.Outstanding() != 0 {
		t.Fatalf("expected every handle released, %d outstanding", provider.Outstanding())
	}
}

func TestRun_PromoteReordersAndTilesMasterFirst(t *testing.T) {
	store := &memStore{st: state.SessionState{
		CurrentLayout: tiling.Vertical,
		WindowOrder: []window.Signature{
			{App: "app", Title: "A"}, {App: "app", Title: "B"},
			{App: "app", Title: "C"}, {App: "app", Title: "D"},
		},
	}}
	provider := platformtest.New(win("app", "D"), win("app", "C"), win("app", "B"), win("app", "A"))
	provider.Focused = 1 // C

	report, err := New(provider, store, nil).Run(command.Promote)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !report.Promoted {
		t.Fatalf("expected Promoted")
	}
	if got := titles(report.Order); got != "C,A,B,D" {
		t.Fatalf("order = %s, want C,A,B,D", got)
	}
	if got := titles(store.st.WindowOrder); got != "C,A,B,D" {
		t.Fatalf("persisted order = %s", got)
	}
	if store.st.CurrentLayout != tiling.Vertical {
		t.Fatalf("promote changed the layout to %s", store.st.CurrentLayout)
	}

	moves := provider.Moves()
	if len(moves) != 4 {
		t.Fatalf("expected 4 moves, got %d", len(moves))
	}
	if moves[0].Signature.Title != "C" || moves[0].Rect != (platform.Rect{X: 0, Y: 0, Width: 600, Height: 800}) {
		t.Fatalf("unexpected master move %+v", moves[0])
	}
	bottom := 0
	for _, m := range moves[1:] {
		if m.Rect.X != 600 || m.Rect.Width != 400 {
			t.Fatalf("stack window outside the stack column: %+v", m)
		}
		if m.Rect.Y != bottom {
			t.Fatalf("stack rects should abut: got y=%d, want %d", m.Rect.Y, bottom)
		}
		bottom = m.Rect.Y + m.Rect.Height
	}
	if bottom != 800 {
		t.Fatalf("stack should end at the bottom edge, ended at %d", bottom)
	}

	if provider.Outstanding() != 0 {
		t.Fatalf("expected every handle released, %d outstanding", provider.Outstanding())
	}
}

func TestRun_PromoteWithoutFocusLogsAndKeepsOrder(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	store := &memStore{st: state.Default()}
	provider := platformtest.New(win("a", "1"), win("b", "2"))

	report, err := New(provider, store, logger).Run(command.Promote)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Promoted {
		t.Fatalf("expected no promotion")
	}
	if got := titles(report.Order); got != "1,2" {
		t.Fatalf("order = %s, want 1,2", got)
	}
	if !strings.Contains(logs.String(), "promote left window order unchanged") {
		t.Fatalf("expected a diagnostic, got %q", logs.String())
	}
	if store.saves != 1 || len(provider.Moves()) != 2 {
		t.Fatalf("expected a full retile and save, got saves=%d moves=%d", store.saves, len(provider.Moves()))
	}
}

func TestRun_FiltersWindowsForGeometryOnly(t *testing.T) {
	minimized := win("app", "min")
	minimized.Minimized = true
	offscreen := win("app", "off")
	offscreen.Rect = platform.Rect{X: 2000, Y: 0, Width: 400, Height: 400}
	unreadable := win("app", "norect")
	unreadable.NoRect = true

	store := &memStore{st: state.Default()}
	provider := platformtest.New(win("app", "A"), minimized, offscreen, unreadable, win("app", "E"))

	report, err := New(provider, store, nil).Run(command.Cycle)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Tiled != 2 || report.Applied != 2 {
		t.Fatalf("expected 2 tiled windows, got %+v", report)
	}

	moves := provider.Moves()
	if len(moves) != 2 || moves[0].Signature.Title != "A" || moves[1].Signature.Title != "E" {
		t.Fatalf("unexpected moves %+v", moves)
	}
	if moves[0].Rect != (platform.Rect{X: 0, Y: 0, Width: 1000, Height: 480}) {
		t.Fatalf("layout should be computed over the filtered set, got %+v", moves[0].Rect)
	}

	if got := titles(store.st.WindowOrder); got != "A,min,off,norect,E" {
		t.Fatalf("persisted order must keep filtered windows, got %s", got)
	}
}

func TestRun_PromoteMinimizedWindowIsEligible(t *testing.T) {
	minimized := win("app", "min")
	minimized.Minimized = true

	store := &memStore{st: state.Default()}
	provider := platformtest.New(win("app", "A"), minimized)
	provider.Focused = 1

	report, err := New(provider, store, nil).Run(command.Promote)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !report.Promoted || titles(report.Order) != "min,A" {
		t.Fatalf("expected minimized window promoted, got %+v", report)
	}

	moves := provider.Moves()
	if len(moves) != 1 || moves[0].Signature.Title != "A" {
		t.Fatalf("only the visible window should be moved, got %+v", moves)
	}
	if moves[0].Rect != (platform.Rect{X: 0, Y: 0, Width: 1000, Height: 800}) {
		t.Fatalf("single tiled window should fill the display, got %+v", moves[0].Rect)
	}
}

func TestRun_MoveFailureDoesNotAbort(t *testing.T) {
	var logs bytes.Buffer
	store := &memStore{st: state.Default()}
	provider := platformtest.New(win("app", "A"), win("app", "B"), win("app", "C"))
	provider.FailMove = map[int]bool{0: true}

	report, err := New(provider, store, slog.New(slog.NewTextHandler(&logs, nil))).Run(command.Cycle)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Failed != 1 || report.Applied != 2 {
		t.Fatalf("expected 1 failure and 2 applied, got %+v", report)
	}
	if !report.Persisted || store.saves != 1 {
		t.Fatalf("state must be persisted despite move failures")
	}
	if !strings.Contains(logs.String(), "failed to move window") || !strings.Contains(logs.String(), "title=A") {
		t.Fatalf("expected a per-window warning, got %q", logs.String())
	}
}

func TestRun_SaveFailureIsNotFatal(t *testing.T) {
	store := &memStore{st: state.Default(), saveErr: errors.New("read-only filesystem")}
	provider := platformtest.New(win("app", "A"))

	report, err := New(provider, store, nil).Run(command.Cycle)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Persisted {
		t.Fatalf("expected Persisted=false")
	}
	if report.Layout != tiling.Horizontal {
		t.Fatalf("expected the command to complete, layout = %s", report.Layout)
	}
}

func TestRun_DisplayFailureSkipsGeometry(t *testing.T) {
	store := &memStore{st: state.Default()}
	provider := platformtest.New(win("app", "A"))
	provider.DisplayErr = platform.ErrNoDisplay

	report, err := New(provider, store, nil).Run(command.Cycle)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(provider.Moves()) != 0 || report.Tiled != 0 {
		t.Fatalf("expected no geometry without a display")
	}
	if store.saves != 1 {
		t.Fatalf("expected state persisted")
	}
}

func TestRun_CollectFailureStillAdvancesLayout(t *testing.T) {
	saved := state.SessionState{
		CurrentLayout: tiling.Vertical,
		WindowOrder:   []window.Signature{{App: "app", Title: "B"}, {App: "app", Title: "A"}},
	}
	store := &memStore{st: saved}
	provider := platformtest.New()
	provider.CollectErr = errors.New("window manager gone")

	if _, err := New(provider, store, nil).Run(command.Cycle); err == nil {
		t.Fatalf("expected an error")
	}
	if store.saves != 1 {
		t.Fatalf("saves = %d, want 1", store.saves)
	}
	if store.st.CurrentLayout != tiling.Horizontal {
		t.Fatalf("layout = %s, want Horizontal", store.st.CurrentLayout)
	}
	if got := titles(store.st.WindowOrder); got != "B,A" {
		t.Fatalf("order = %s, want the saved B,A", got)
	}
	if len(provider.Moves()) != 0 {
		t.Fatalf("no window may be moved when enumeration fails")
	}
}

func TestRun_CollectFailureKeepsLayoutOnPromote(t *testing.T) {
	saved := state.SessionState{
		CurrentLayout: tiling.Monocle,
		WindowOrder:   []window.Signature{{App: "app", Title: "A"}},
	}
	store := &memStore{st: saved}
	provider := platformtest.New()
	provider.CollectErr = errors.New("window manager gone")

	if _, err := New(provider, store, nil).Run(command.Promote); err == nil {
		t.Fatalf("expected an error")
	}
	if store.st.CurrentLayout != tiling.Monocle || titles(store.st.WindowOrder) != "A" {
		t.Fatalf("state = %+v, want the saved state", store.st)
	}
}

func TestRun_UnknownCommandTouchesNothing(t *testing.T) {
	store := &memStore{st: state.Default()}
	provider := platformtest.New(win("app", "A"))

	_, err := New(provider, store, nil).Run(command.Command("swap"))
	if !errors.Is(err, command.ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
	if store.saves != 0 || provider.Acquired() != 0 {
		t.Fatalf("unknown command must not query windows or save state")
	}
}

func TestRun_StateCarriesAcrossInvocations(t *testing.T) {
	store := state.NewStore(filepath.Join(t.TempDir(), "vega-state.json"), nil)

	first := platformtest.New(win("app", "A"), win("app", "B"), win("app", "C"))
	first.Focused = 2
	if _, err := New(first, store, nil).Run(command.Promote); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Discovery order changes and a window appears; the promoted order wins.
	second := platformtest.New(win("app", "N"), win("app", "B"), win("app", "A"), win("app", "C"))
	report, err := New(second, store, nil).Run(command.Cycle)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := titles(report.Order); got != "C,A,B,N" {
		t.Fatalf("order = %s, want C,A,B,N", got)
	}
	if report.Layout != tiling.Horizontal {
		t.Fatalf("layout = %s, want Horizontal", report.Layout)
	}
}

func TestRun_LatinOneTitleSurvivesPersistence(t *testing.T) {
	store := state.NewStore(filepath.Join(t.TempDir(), "vega-state.json"), nil)

	first := platformtest.New(win("XTerm", "b"), win("XTerm", "caf\xe9"))
	first.Focused = 1
	if _, err := New(first, store, nil).Run(command.Promote); err != nil {
		t.Fatalf("Run: %v", err)
	}

	second := platformtest.New(win("XTerm", "b"), win("XTerm", "caf\xe9"))
	report, err := New(second, store, nil).Run(command.Cycle)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := titles(report.Order); got != "caf\uFFFD,b" {
		t.Fatalf("order = %q, want the promoted window first", got)
	}

	persisted := store.Load().WindowOrder
	if len(persisted) != 2 || persisted[0] != report.Order[0] || persisted[1] != report.Order[1] {
		t.Fatalf("persisted order = %q, want %q", persisted, report.Order)
	}
}

func TestToPlatformRect_EdgesStayShared(t *testing.T) {
	rects := tiling.Tile(tiling.Vertical, tiling.Rect{Width: 1001, Height: 767}, 4)
	prev := 0
	for _, r := range rects[1:] {
		p := toPlatformRect(r)
		if p.Y != prev {
			t.Fatalf("gap or overlap at y=%d (expected %d)", p.Y, prev)
		}
		prev = p.Y + p.Height
	}
	if prev != 767 {
		t.Fatalf("stack should end at 767, ended at %d", prev)
	}
}
