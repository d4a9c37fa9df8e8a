package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/swaybuild/internal/logfields"
)

// ErrNotCreated is returned by operations that need the scratch directory before Create.
var ErrNotCreated = errors.New("workspace not created")

// Manager handles the scratch directory lifecycle.
type Manager struct {
	dir     string
	keep    bool // If true, Cleanup leaves the directory in place
	created bool
}

// NewManager creates a manager for the scratch directory at dir.
func NewManager(dir string) *Manager {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "swaybuild")
	}
	return &Manager{dir: dir}
}

// WithKeep makes Cleanup a no-op so the checkouts survive a successful run.
func (m *Manager) WithKeep(keep bool) *Manager {
	m.keep = keep
	return m
}

// Create prepares an empty scratch directory, removing leftovers from a previous run.
func (m *Manager) Create() error {
	if _, err := os.Stat(m.dir); err == nil {
		slog.Warn("Removing leftover scratch directory", logfields.Path(m.dir))
		if err := os.RemoveAll(m.dir); err != nil {
			return fmt.Errorf("failed to remove leftover scratch directory: %w", err)
		}
	}
	if err := os.MkdirAll(m.dir, 0o750); err != nil {
		return fmt.Errorf("failed to create scratch directory: %w", err)
	}
	m.created = true
	slog.Info("Created scratch directory", logfields.Path(m.dir))
	return nil
}

// Path returns the path to the scratch directory.
func (m *Manager) Path() string {
	return m.dir
}

// Subdir returns the path of a named subdirectory, creating it.
func (m *Manager) Subdir(name string) (string, error) {
	if !m.created {
		return "", ErrNotCreated
	}
	subdir := filepath.Join(m.dir, name)
	if err := os.MkdirAll(subdir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}
	return subdir, nil
}

// Cleanup removes the scratch directory unless the manager was told to keep it.
func (m *Manager) Cleanup() error {
	if m.keep {
		slog.Info("Keeping scratch directory", logfields.Path(m.dir))
		return nil
	}
	if err := os.RemoveAll(m.dir); err != nil {
		return fmt.Errorf("failed to cleanup scratch directory: %w", err)
	}
	slog.Info("Removed scratch directory", logfields.Path(m.dir))
	m.created = false
	return nil
}
