package state

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/vega/internal/tiling"
	"github.com/1broseidon/vega/internal/window"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	in := SessionState{
		CurrentLayout: tiling.Monocle,
		WindowOrder: []window.Signature{
			{App: "Firefox", Title: "Docs"},
			{App: "Alacritty", Title: ""},
			{App: "Alacritty", Title: "Docs"},
		},
	}

	data, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if out.CurrentLayout != in.CurrentLayout {
		t.Fatalf("layout = %s, want %s", out.CurrentLayout, in.CurrentLayout)
	}
	if len(out.WindowOrder) != len(in.WindowOrder) {
		t.Fatalf("order length = %d, want %d", len(out.WindowOrder), len(in.WindowOrder))
	}
	for i := range in.WindowOrder {
		if out.WindowOrder[i] != in.WindowOrder[i] {
			t.Fatalf("order[%d] = %v, want %v", i, out.WindowOrder[i], in.WindowOrder[i])
		}
	}
}

func TestEncodeDecode_NonASCIITitles(t *testing.T) {
	in := SessionState{
		CurrentLayout: tiling.Vertical,
		WindowOrder: []window.Signature{
			window.NewSignature("XTerm", "caf\xe9"),
			{App: "Firefox", Title: "café"},
		},
	}

	data, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for i := range in.WindowOrder {
		if out.WindowOrder[i] != in.WindowOrder[i] {
			t.Fatalf("order[%d] = %q, want %q", i, out.WindowOrder[i], in.WindowOrder[i])
		}
	}
}

func TestEncode_Format(t *testing.T) {
	data, err := Encode(SessionState{
		CurrentLayout: tiling.Horizontal,
		WindowOrder:   []window.Signature{{App: "App1", Title: "T1"}},
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	text := string(data)
	for _, want := range []string{`"current_layout": "Horizontal"`, `"window_order"`, `"App1"`, `"T1"`} {
		if !strings.Contains(text, want) {
			t.Fatalf("encoded state missing %s:\n%s", want, text)
		}
	}
	if !strings.HasSuffix(text, "\n") {
		t.Fatalf("encoded state should end with a newline")
	}
}

func TestDecode_RejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":       `{`,
		"unknown layout": `{"current_layout":"Spiral","window_order":[]}`,
		"short pair":     `{"current_layout":"Vertical","window_order":[["App"]]}`,
		"long pair":      `{"current_layout":"Vertical","window_order":[["App","T","x"]]}`,
		"wrong type":     `{"current_layout":"Vertical","window_order":"App"}`,
	}
	for name, doc := range cases {
		if _, err := Decode([]byte(doc)); !errors.Is(err, ErrMalformed) {
			t.Fatalf("%s: expected ErrMalformed, got %v", name, err)
		}
	}
}

func TestStore_LoadMissingReturnsDefault(t *testing.T) {
	var logs bytes.Buffer
	store := NewStore(filepath.Join(t.TempDir(), "vega-state.json"), slog.New(slog.NewTextHandler(&logs, nil)))

	st := store.Load()
	if st.CurrentLayout != tiling.Vertical || len(st.WindowOrder) != 0 {
		t.Fatalf("expected default state, got %+v", st)
	}
	if logs.Len() != 0 {
		t.Fatalf("missing state file should be silent, got %q", logs.String())
	}
}

func TestStore_LoadCorruptReturnsDefaultAndWarns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vega-state.json")
	if err := os.WriteFile(path, []byte("garbage"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var logs bytes.Buffer
	store := NewStore(path, slog.New(slog.NewTextHandler(&logs, nil)))

	st := store.Load()
	if st.CurrentLayout != tiling.Vertical || len(st.WindowOrder) != 0 {
		t.Fatalf("expected default state, got %+v", st)
	}
	if !strings.Contains(logs.String(), "corrupt session state") {
		t.Fatalf("expected a warning, got %q", logs.String())
	}
}

func TestStore_SaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "vega-state.json")
	store := NewStore(path, nil)

	want := SessionState{
		CurrentLayout: tiling.Horizontal,
		WindowOrder:   []window.Signature{{App: "App1", Title: "T1"}, {App: "App2", Title: "T2"}},
	}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got := store.Load()
	if got.CurrentLayout != want.CurrentLayout || len(got.WindowOrder) != 2 ||
		got.WindowOrder[0] != want.WindowOrder[0] || got.WindowOrder[1] != want.WindowOrder[1] {
		t.Fatalf("Load = %+v, want %+v", got, want)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temporary file left behind: %v", err)
	}
}

func TestStore_SaveOverwritesPrevious(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "vega-state.json"), nil)

	if err := store.Save(SessionState{CurrentLayout: tiling.Monocle, WindowOrder: []window.Signature{{App: "a", Title: "b"}}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(Default()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got := store.Load()
	if got.CurrentLayout != tiling.Vertical || len(got.WindowOrder) != 0 {
		t.Fatalf("expected the second save to win, got %+v", got)
	}
}

func TestDefaultPath_UsesRuntimeDir(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)

	got, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath: %v", err)
	}
	if got != filepath.Join(td, "vega-state.json") {
		t.Fatalf("DefaultPath = %q", got)
	}
}
