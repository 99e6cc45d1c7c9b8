// Package hotkeys grabs global key chords on the X root window.
package hotkeys

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/1broseidon/vega/internal/command"
	"github.com/1broseidon/vega/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Binding maps a keybind sequence such as "Control-Mod1-t" to a command.
type Binding struct {
	Keys    string
	Command command.Command
}

// Bindings returns the cycle and promote bindings in that order.
func Bindings(cycleKeys, promoteKeys string) ([]Binding, error) {
	bindings := []Binding{
		{Keys: strings.TrimSpace(cycleKeys), Command: command.Cycle},
		{Keys: strings.TrimSpace(promoteKeys), Command: command.Promote},
	}
	seen := make(map[string]command.Command, len(bindings))
	for _, b := range bindings {
		if b.Keys == "" {
			return nil, fmt.Errorf("no key sequence for %s", b.Command)
		}
		if prev, ok := seen[strings.ToLower(b.Keys)]; ok {
			return nil, fmt.Errorf("key sequence %q bound to both %s and %s", b.Keys, prev, b.Command)
		}
		seen[strings.ToLower(b.Keys)] = b.Command
	}
	return bindings, nil
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	logger *slog.Logger
}

var ignoreModsOnce sync.Once

// NewHandler prepares conn for key grabs.
func NewHandler(conn *x11.Connection, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	keybind.Initialize(conn.XUtil)
	ignoreModsOnce.Do(func() {
		configureIgnoreMods(conn.XUtil)
	})

	return &Handler{
		xu:     conn.XUtil,
		root:   conn.Root,
		logger: logger,
	}
}

// Bind grabs every binding. fire runs on the X event loop goroutine and
// must not block.
func (h *Handler) Bind(bindings []Binding, fire func(command.Command)) error {
	for _, b := range bindings {
		cmd := b.Command
		keys := b.Keys
		if err := h.RegisterFunc(keys, func() {
			h.logger.Debug("hotkey triggered", "keys", keys, "command", string(cmd))
			fire(cmd)
		}); err != nil {
			return fmt.Errorf("failed to register %s hotkey %q: %w", cmd, keys, err)
		}
		h.logger.Info("hotkey registered", "keys", keys, "command", string(cmd))
	}
	return nil
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

// configureIgnoreMods makes grabs fire regardless of CapsLock, NumLock and
// ScrollLock.
func configureIgnoreMods(xu *xgbutil.XUtil) {
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	xevent.IgnoreMods = maskCombinations(base)
}

// maskCombinations returns every OR-combination of base, including zero,
// without duplicates.
func maskCombinations(base []uint16) []uint16 {
	unique := map[uint16]struct{}{0: {}}
	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		unique[mask] = struct{}{}
	}

	masks := make([]uint16, 0, len(unique))
	for mask := range unique {
		masks = append(masks, mask)
	}
	sort.Slice(masks, func(i, j int) bool { return masks[i] < masks[j] })
	return masks
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
