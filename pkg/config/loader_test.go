package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b/tmux-autohide/pkg/autohide"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "layout:\n  tabs: right\n"))
	require.NoError(t, err)

	assert.Equal(t, "left", cfg.Layout.Panels)
	assert.Equal(t, "right", cfg.Layout.Tabs)
	assert.Equal(t, Duration(125*time.Millisecond), cfg.AutoHide.ShowDelay)
	assert.Equal(t, Duration(250*time.Millisecond), cfg.AutoHide.HideDelay)
	assert.Equal(t, Duration(150*time.Millisecond), cfg.AutoHide.ResizeDebounce)
	assert.Equal(t, Sensor{Top: 1, Left: 1, Right: 1}, cfg.AutoHide.Sensor)
	assert.Equal(t, "ctrl+b", cfg.Bindings.TogglePanels)
	assert.Equal(t, Theme{Base: "#2980b9", Mode: "auto"}, cfg.Theme)
}

func TestLoadConfigDurations(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
autohide:
  show_delay: 80ms
  hide_delay: 400
  resize_debounce: 1s
`))
	require.NoError(t, err)
	assert.Equal(t, Duration(80*time.Millisecond), cfg.AutoHide.ShowDelay)
	assert.Equal(t, Duration(400*time.Millisecond), cfg.AutoHide.HideDelay, "bare numbers are milliseconds")
	assert.Equal(t, Duration(time.Second), cfg.AutoHide.ResizeDebounce)
}

func TestLoadConfigZeroDelaysAreInstant(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "autohide:\n  show_delay: 0ms\n  hide_delay: 0\n"))
	require.NoError(t, err)

	s := cfg.Settings()
	assert.Equal(t, time.Duration(0), s.ShowDelay)
	assert.Equal(t, time.Duration(0), s.HideDelay)
	assert.Equal(t, autohide.DefaultResizeDebounce, s.ResizeDebounce, "absent key keeps its default")

	cfg, err = LoadConfig(writeConfig(t, "autohide:\n  hide_delay: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, Duration(autohide.DefaultShowDelay), cfg.AutoHide.ShowDelay)
	assert.Equal(t, Duration(0), cfg.AutoHide.HideDelay)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadConfig(writeConfig(t, "layout:\n  panels: top\n"))
	assert.ErrorIs(t, err, ErrInvalidSide)

	_, err = LoadConfig(writeConfig(t, "autohide:\n  hide_delay: -5ms\n"))
	assert.ErrorIs(t, err, ErrInvalidDelay)

	_, err = LoadConfig(writeConfig(t, "autohide:\n  show_delay: soon\n"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "theme:\n  base: blue\n"))
	assert.ErrorIs(t, err, ErrInvalidTheme)

	_, err = LoadConfig(writeConfig(t, "theme:\n  mode: sepia\n"))
	assert.ErrorIs(t, err, ErrInvalidTheme)
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := Default()
	cfg.Layout.Tabs = "right"
	cfg.AutoHide.HideDelay = Duration(300 * time.Millisecond)

	require.NoError(t, SaveConfig(path, cfg))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hide_delay: 300ms")

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSettings(t *testing.T) {
	cfg := Default()
	cfg.Layout.Panels = "right"
	cfg.Layout.Tabs = "left"
	cfg.AutoHide.Sensor.Right = 2
	cfg.Bindings.TogglePanels = "C-t"

	s := cfg.Settings()
	assert.Equal(t, autohide.LayoutFacts{Panels: autohide.SideRight, Tabs: autohide.SideLeft}, s.Facts)
	assert.Equal(t, autohide.DefaultShowDelay, s.ShowDelay)
	assert.Equal(t, autohide.DefaultHideDelay, s.HideDelay)
	assert.Equal(t, 2, s.Thickness[autohide.Right])
	assert.Equal(t, []string{"C-t"}, s.ToggleKeys)

	m := cfg.NaturalSizes(100, 30)
	assert.Equal(t, autohide.Measurements{Width: 100, Height: 30, HeaderHeight: 1, PanelWidth: 25, TabsWidth: 20}, m)
}
