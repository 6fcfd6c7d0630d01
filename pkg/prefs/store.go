// Package prefs persists user preferences as a flat YAML map. Each store
// owns one boolean key and leaves the rest of the file alone.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/b/tmux-autohide/pkg/paths"
)

// PanelsAutoHide is the key of the panel group auto-hide preference.
const PanelsAutoHide = "panels.autohide"

// Store reads and writes a single preference file. Other keys in the file
// are preserved on save.
type Store struct {
	path string
	key  string

	mu sync.Mutex
}

// NewStore returns a store for key in the file at path.
func NewStore(path, key string) *Store {
	return &Store{path: path, key: key}
}

// Default returns the panel auto-hide store in the state directory.
func Default() *Store {
	return NewStore(paths.PrefsPath(), PanelsAutoHide)
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Load returns the stored value. A missing file, an unreadable file or a
// missing key all report ok=false.
func (s *Store) Load() (value bool, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.read()
	if err != nil {
		return false, false
	}
	value, ok = values[s.key].(bool)
	return value, ok
}

// Save stores value under the store's key.
func (s *Store) Save(value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		// A corrupt file is replaced rather than blocking the save.
		values = nil
	}
	if values == nil {
		values = make(map[string]any)
	}
	values[s.key] = value

	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace prefs: %w", err)
	}
	return nil
}

func (s *Store) read() (map[string]any, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	var values map[string]any
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse prefs: %w", err)
	}
	return values, nil
}
