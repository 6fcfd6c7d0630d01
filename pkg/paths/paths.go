// Package paths resolves where tmux-autohide keeps its files.
//
// Layout (XDG-style):
//
//	Config:  ~/.config/tmux-autohide/config.yaml  (override: AUTOHIDE_CONFIG_DIR)
//	State:   ~/.local/state/tmux-autohide/         (override: AUTOHIDE_STATE_DIR)
//	Runtime: /tmp/tmux-autohide-*
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const appName = "tmux-autohide"

// dir resolves a directory once: the env override if set, otherwise
// $HOME/<elems>/tmux-autohide, otherwise ".".
type dir struct {
	env   string
	elems []string

	once sync.Once
	path string
}

func (d *dir) get() string {
	d.once.Do(func() {
		if env := os.Getenv(d.env); env != "" {
			d.path = env
			return
		}
		home, err := os.UserHomeDir()
		if err != nil {
			d.path = "."
			return
		}
		d.path = filepath.Join(append(append([]string{home}, d.elems...), appName)...)
	})
	return d.path
}

func (d *dir) ensure() (string, error) {
	p := d.get()
	if err := os.MkdirAll(p, 0755); err != nil {
		return "", fmt.Errorf("create %s: %w", p, err)
	}
	return p, nil
}

var (
	configDir = &dir{env: "AUTOHIDE_CONFIG_DIR", elems: []string{".config"}}
	stateDir  = &dir{env: "AUTOHIDE_STATE_DIR", elems: []string{".local", "state"}}
)

// ConfigDir resolves the config directory.
func ConfigDir() string { return configDir.get() }

// StateDir resolves the state directory.
func StateDir() string { return stateDir.get() }

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// PrefsPath returns the file holding persisted user preferences.
func PrefsPath() string {
	return filepath.Join(StateDir(), "prefs.yaml")
}

// RuntimePath returns /tmp/tmux-autohide-<session><suffix>.
func RuntimePath(session, suffix string) string {
	if session == "" {
		session = "default"
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("%s-%s%s", appName, session, suffix))
}

// EnsureConfigDir creates the config directory if needed and returns it.
func EnsureConfigDir() (string, error) { return configDir.ensure() }

// EnsureStateDir creates the state directory if needed and returns it.
func EnsureStateDir() (string, error) { return stateDir.ensure() }

// ResetForTest clears cached values so tests can re-run resolution logic.
// Only use in tests.
func ResetForTest() {
	for _, d := range []*dir{configDir, stateDir} {
		d.once = sync.Once{}
		d.path = ""
	}
}
