package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/b/tmux-autohide/pkg/autohide"
)

type Config struct {
	Layout   Layout   `yaml:"layout"`
	AutoHide AutoHide `yaml:"autohide"`
	Bindings Bindings `yaml:"bindings"`
	Theme    Theme    `yaml:"theme"`
}

type Layout struct {
	Panels string `yaml:"panels"` // left|right|none (default: left)
	Tabs   string `yaml:"tabs"`   // left|right|none (default: none)

	// Natural sizes used when the host cannot report them (demo, tests).
	HeaderHeight int `yaml:"header_height"` // default: 1
	PanelWidth   int `yaml:"panel_width"`   // default: 25
	TabsWidth    int `yaml:"tabs_width"`    // default: 20
}

type AutoHide struct {
	ShowDelay      Duration `yaml:"show_delay"`      // default: 125ms, 0 = instant
	HideDelay      Duration `yaml:"hide_delay"`      // default: 250ms, 0 = instant
	ResizeDebounce Duration `yaml:"resize_debounce"` // default: 150ms
	Sensor         Sensor   `yaml:"sensor"`
}

// Sensor is the thickness of each edge trigger strip in cells.
type Sensor struct {
	Top   int `yaml:"top"`
	Left  int `yaml:"left"`
	Right int `yaml:"right"`
}

type Bindings struct {
	TogglePanels string `yaml:"toggle_panels"` // default: ctrl+b
}

// Theme colors the demo host's chrome.
type Theme struct {
	Base string `yaml:"base"` // hex, default: #2980b9
	Mode string `yaml:"mode"` // auto|dark|light (default: auto)
}

// Settings converts the config into the inputs of an auto-hide session.
// Call Validate first; unparseable sides fall back to none.
func (c *Config) Settings() autohide.Settings {
	panels, _ := autohide.ParseSide(c.Layout.Panels)
	tabs, _ := autohide.ParseSide(c.Layout.Tabs)
	s := autohide.Settings{
		Facts:          autohide.LayoutFacts{Panels: panels, Tabs: tabs},
		ShowDelay:      time.Duration(c.AutoHide.ShowDelay),
		HideDelay:      time.Duration(c.AutoHide.HideDelay),
		ResizeDebounce: time.Duration(c.AutoHide.ResizeDebounce),
		Thickness: map[autohide.Region]int{
			autohide.Top:   c.AutoHide.Sensor.Top,
			autohide.Left:  c.AutoHide.Sensor.Left,
			autohide.Right: c.AutoHide.Sensor.Right,
		},
	}
	if c.Bindings.TogglePanels != "" {
		s.ToggleKeys = []string{c.Bindings.TogglePanels}
	}
	return s
}

// NaturalSizes reports the configured sizes as measurements for a viewport
// of width x height.
func (c *Config) NaturalSizes(width, height int) autohide.Measurements {
	return autohide.Measurements{
		Width:        width,
		Height:       height,
		HeaderHeight: c.Layout.HeaderHeight,
		PanelWidth:   c.Layout.PanelWidth,
		TabsWidth:    c.Layout.TabsWidth,
	}
}

// Duration is written as a Go duration string ("250ms"). A bare number is
// read as milliseconds.
type Duration time.Duration

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	raw = strings.TrimSpace(raw)
	if ms, err := strconv.Atoi(raw); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(parsed)
	return nil
}
