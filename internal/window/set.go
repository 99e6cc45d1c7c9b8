package window

import "sync"

// Set owns the handles discovered during one invocation. Callers defer
// Release right after construction so every handle is released exactly once,
// including on early returns.
type Set struct {
	once    sync.Once
	windows []LiveWindow
}

// NewSet takes ownership of windows.
func NewSet(windows []LiveWindow) *Set {
	return &Set{windows: windows}
}

// Windows returns the owned windows in discovery order. The slice is a copy;
// the handles inside it stay owned by the set.
func (s *Set) Windows() []LiveWindow {
	out := make([]LiveWindow, len(s.windows))
	copy(out, s.windows)
	return out
}

// Len returns the number of owned windows.
func (s *Set) Len() int {
	return len(s.windows)
}

// Release releases every owned handle. Calling it again is a no-op.
func (s *Set) Release() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		for _, w := range s.windows {
			if w.Handle != nil {
				w.Handle.Release()
			}
		}
	})
}
