package autohide

import (
	"io"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// PreferenceStore persists whether the panel group auto-hides.
type PreferenceStore interface {
	// Load returns the stored value; ok is false when nothing usable is
	// stored.
	Load() (value bool, ok bool)
	Save(value bool) error
}

// Options configure a Controller.
type Options struct {
	// WindowID is the window this controller serves. Shortcuts for other
	// windows are ignored. Empty accepts every window.
	WindowID string
	Prefs    PreferenceStore
	Log      *log.Logger
}

// Controller binds sensor and content signals to region transitions and
// manages the panel group toggle. Its methods must be called from a single
// event loop.
type Controller struct {
	state    *UIState
	windowID string
	toggle   key.Binding
	prefs    PreferenceStore
	log      *log.Logger

	panelsEnabled bool
	content       map[Group]func()

	inContent bool
	inZone    bool
	zone      Region
}

// NewController mounts the controller on state: the layout is measured, the
// header group is bound and asked to hide, and the panel group is enabled or
// disabled according to the stored preference (absent means enabled).
func NewController(state *UIState, opts Options) *Controller {
	logger := opts.Log
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	keys := make([]string, 0, len(state.Settings.ToggleKeys))
	for _, k := range state.Settings.ToggleKeys {
		if n := NormalizeCombo(k); n != "" {
			keys = append(keys, n)
		}
	}
	c := &Controller{
		state:    state,
		windowID: opts.WindowID,
		toggle: key.NewBinding(
			key.WithKeys(keys...),
			key.WithHelp(strings.Join(keys, "/"), "toggle panel auto-hide"),
		),
		prefs:   opts.Prefs,
		log:     logger,
		content: make(map[Group]func()),
	}

	state.Layout.Recompute()

	m := state.Machine
	state.Zones.Bind(Top, m.RequestShow)
	c.content[HeaderGroup] = func() { m.RequestHide(Top) }
	m.RequestHide(Top)

	if ResolvePreference(opts.Prefs) {
		c.EnablePanelGroup()
	} else {
		c.DisablePanelGroup()
	}
	return c
}

// ResolvePreference returns the stored panel preference. A missing store or
// value means enabled; only an explicit false disables.
func ResolvePreference(p PreferenceStore) bool {
	if p == nil {
		return true
	}
	v, ok := p.Load()
	if !ok {
		return true
	}
	return v
}

// State returns the state the controller owns.
func (c *Controller) State() *UIState {
	return c.state
}

// ToggleBinding returns the key binding that flips the panel group.
func (c *Controller) ToggleBinding() key.Binding {
	return c.toggle
}

// PanelsEnabled reports whether the panel group is auto-hiding.
func (c *Controller) PanelsEnabled() bool {
	return c.panelsEnabled
}

// EnablePanelGroup asks the active side regions to hide and binds their
// sensors and the content area. Calling it while enabled does nothing.
func (c *Controller) EnablePanelGroup() {
	if c.panelsEnabled {
		return
	}
	c.panelsEnabled = true

	m := c.state.Machine
	var active []Region
	for _, r := range PanelRegions {
		if !m.Active(r) {
			continue
		}
		active = append(active, r)
		c.state.Zones.Bind(r, m.RequestShow)
		m.RequestHide(r)
	}
	c.content[PanelGroup] = func() {
		for _, r := range active {
			m.RequestHide(r)
		}
	}
	c.log.Printf("panel group enabled regions=%v", active)
}

// DisablePanelGroup unbinds the panel listeners and reveals the side
// regions immediately, dropping any pending show or hide.
func (c *Controller) DisablePanelGroup() {
	c.panelsEnabled = false
	delete(c.content, PanelGroup)

	m := c.state.Machine
	for _, r := range PanelRegions {
		c.state.Zones.Unbind(r)
		m.ForceVisible(r)
	}
	c.log.Printf("panel group disabled")
}

// TogglePanelGroup flips the panel group and persists the new value. A save
// failure is logged and otherwise ignored.
func (c *Controller) TogglePanelGroup() bool {
	enabled := !c.panelsEnabled
	if enabled {
		c.EnablePanelGroup()
	} else {
		c.DisablePanelGroup()
	}
	if c.prefs != nil {
		if err := c.prefs.Save(enabled); err != nil {
			c.log.Printf("save panel preference: %v", err)
		}
	}
	return enabled
}

// HandleShortcut toggles the panel group when combo matches the toggle
// binding and windowID is this controller's window. It reports whether the
// shortcut was consumed.
func (c *Controller) HandleShortcut(combo, windowID string) bool {
	if c.windowID != "" && windowID != c.windowID {
		return false
	}
	if !key.Matches(comboKey(NormalizeCombo(combo)), c.toggle) {
		return false
	}
	c.TogglePanelGroup()
	return true
}

// ContentEnter is the pointer entering the main content area.
func (c *Controller) ContentEnter() {
	if fn, ok := c.content[HeaderGroup]; ok {
		fn()
	}
	if fn, ok := c.content[PanelGroup]; ok {
		fn()
	}
}

// SensorEnter is the pointer entering r's sensor zone.
func (c *Controller) SensorEnter(r Region) {
	c.state.Zones.Enter(r)
}

// Resized is a viewport resize with no payload.
func (c *Controller) Resized() {
	c.state.Layout.Resized()
}

// PointerAt turns a pointer position into enter signals. Only transitions
// into a zone or into the content area emit; moving within one does not.
func (c *Controller) PointerAt(x, y int) {
	if z, ok := c.state.Zones.Hit(x, y); ok {
		c.inContent = false
		if !c.inZone || c.zone != z.Region {
			c.inZone = true
			c.zone = z.Region
			z.Enter()
		}
		return
	}
	c.inZone = false

	if c.state.Layout.Content().Contains(x, y) {
		if !c.inContent {
			c.inContent = true
			c.ContentEnter()
		}
		return
	}
	c.inContent = false
}

// Stop cancels every pending transition.
func (c *Controller) Stop() {
	c.state.Timers.Stop()
}

type comboKey string

func (k comboKey) String() string { return string(k) }

// NormalizeCombo rewrites a key combination into the form bubbletea
// reports: "alt+ctrl+b". tmux notation ("C-b", "M-C-x") and mixed case
// modifiers are accepted.
func NormalizeCombo(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	var alt, ctrl, shift bool
prefixes:
	for len(s) > 2 && s[1] == '-' {
		switch s[0] {
		case 'C', 'c':
			ctrl = true
		case 'M', 'm':
			alt = true
		case 'S', 's':
			shift = true
		default:
			break prefixes
		}
		s = s[2:]
	}
	k := s
	if s != "+" {
		parts := strings.Split(s, "+")
		k = parts[len(parts)-1]
		if k == "" && len(parts) > 1 {
			k = "+"
			parts = parts[:len(parts)-1]
		}
		for _, mod := range parts[:len(parts)-1] {
			switch strings.ToLower(mod) {
			case "ctrl", "control", "c":
				ctrl = true
			case "alt", "meta", "opt", "option", "m":
				alt = true
			case "shift", "s":
				shift = true
			}
		}
	}
	if ctrl || len(k) > 1 {
		k = strings.ToLower(k)
	}

	var b strings.Builder
	if alt {
		b.WriteString("alt+")
	}
	if ctrl {
		b.WriteString("ctrl+")
	}
	if shift {
		b.WriteString("shift+")
	}
	b.WriteString(k)
	return b.String()
}
