package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/b/tmux-autohide/pkg/autohide"
	"github.com/b/tmux-autohide/pkg/colors"
)

var (
	ErrInvalidSide  = errors.New("invalid side")
	ErrInvalidDelay = errors.New("invalid delay")
	ErrInvalidTheme = errors.New("invalid theme")
)

// Default returns a config with every default applied.
func Default() *Config {
	cfg := preset()
	applyDefaults(&cfg)
	return &cfg
}

// preset seeds the fields where zero is a meaningful setting. The yaml
// decoder only overwrites keys present in the file, so an explicit
// "show_delay: 0" survives while an absent key keeps the default.
func preset() Config {
	return Config{AutoHide: AutoHide{
		ShowDelay:      Duration(autohide.DefaultShowDelay),
		HideDelay:      Duration(autohide.DefaultHideDelay),
		ResizeDebounce: Duration(autohide.DefaultResizeDebounce),
	}}
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := preset()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads path, returning the defaults when the file does not
// exist. Any other failure is returned.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// SaveConfig writes the config to the specified path
func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate rejects layouts and delays the engine cannot use.
func (c *Config) Validate() error {
	if _, err := autohide.ParseSide(c.Layout.Panels); err != nil {
		return fmt.Errorf("%w: layout.panels: %v", ErrInvalidSide, err)
	}
	if _, err := autohide.ParseSide(c.Layout.Tabs); err != nil {
		return fmt.Errorf("%w: layout.tabs: %v", ErrInvalidSide, err)
	}
	delays := []struct {
		name string
		d    Duration
	}{
		{"show_delay", c.AutoHide.ShowDelay},
		{"hide_delay", c.AutoHide.HideDelay},
		{"resize_debounce", c.AutoHide.ResizeDebounce},
	}
	for _, dl := range delays {
		if dl.d < 0 {
			return fmt.Errorf("%w: autohide.%s is negative", ErrInvalidDelay, dl.name)
		}
	}
	if _, ok := colors.ParseHex(c.Theme.Base); !ok {
		return fmt.Errorf("%w: theme.base %q", ErrInvalidTheme, c.Theme.Base)
	}
	switch colors.Mode(c.Theme.Mode) {
	case colors.ModeAuto, colors.ModeDark, colors.ModeLight:
	default:
		return fmt.Errorf("%w: theme.mode %q", ErrInvalidTheme, c.Theme.Mode)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Layout.Panels == "" {
		cfg.Layout.Panels = "left"
	}
	if cfg.Layout.Tabs == "" {
		cfg.Layout.Tabs = "none"
	}
	if cfg.Layout.HeaderHeight == 0 {
		cfg.Layout.HeaderHeight = 1
	}
	if cfg.Layout.PanelWidth == 0 {
		cfg.Layout.PanelWidth = 25
	}
	if cfg.Layout.TabsWidth == 0 {
		cfg.Layout.TabsWidth = 20
	}
	if cfg.AutoHide.Sensor.Top == 0 {
		cfg.AutoHide.Sensor.Top = 1
	}
	if cfg.AutoHide.Sensor.Left == 0 {
		cfg.AutoHide.Sensor.Left = 1
	}
	if cfg.AutoHide.Sensor.Right == 0 {
		cfg.AutoHide.Sensor.Right = 1
	}
	if cfg.Bindings.TogglePanels == "" {
		cfg.Bindings.TogglePanels = "ctrl+b"
	}
	if cfg.Theme.Base == "" {
		cfg.Theme.Base = colors.DefaultBase
	}
	if cfg.Theme.Mode == "" {
		cfg.Theme.Mode = string(colors.ModeAuto)
	}
}
