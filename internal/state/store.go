package state

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/1broseidon/vega/internal/runtimepath"
)

// Store reads and writes a SessionState at a fixed path.
type Store struct {
	path   string
	logger *slog.Logger
}

// DefaultPath returns the state file in the per-user runtime directory.
func DefaultPath() (string, error) {
	return runtimepath.StatePath()
}

// NewStore returns a Store for path. A nil logger discards diagnostics.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{path: path, logger: logger}
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// Load returns the persisted state, or Default when the file is missing or
// unusable. It never fails: an unreadable or corrupt file is logged and
// ignored.
func (s *Store) Load() SessionState {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("failed to read session state, using defaults", "path", s.path, "error", err)
		}
		return Default()
	}

	st, err := Decode(data)
	if err != nil {
		s.logger.Warn("ignoring corrupt session state", "path", s.path, "error", err)
		return Default()
	}
	return st
}

// Save writes st, replacing the previous file atomically.
func (s *Store) Save(st SessionState) error {
	data, err := Encode(st)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write session state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace session state: %w", err)
	}
	return nil
}
