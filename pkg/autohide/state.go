package autohide

import (
	"io"
	"log"
	"time"

	"github.com/b/tmux-autohide/pkg/timers"
)

// Settings are the static inputs of a session.
type Settings struct {
	Facts          LayoutFacts
	ShowDelay      time.Duration
	HideDelay      time.Duration
	ResizeDebounce time.Duration
	// Thickness is the sensor strip width per region, in cells.
	Thickness map[Region]int
	// ToggleKeys are the key combinations that flip the panel group.
	ToggleKeys []string
}

// DefaultSettings returns panels on the left, no tab bar and the default
// delays.
func DefaultSettings() Settings {
	return Settings{
		Facts:          LayoutFacts{Panels: SideLeft, Tabs: SideNone},
		ShowDelay:      DefaultShowDelay,
		HideDelay:      DefaultHideDelay,
		ResizeDebounce: DefaultResizeDebounce,
		Thickness:      map[Region]int{Top: 1, Left: 1, Right: 1},
		ToggleKeys:     []string{"ctrl+b"},
	}
}

// UIState owns everything the controller mutates: the timer slots, the
// region flags, the sensor zones and the layout adapter. Build one per
// window.
type UIState struct {
	Settings Settings
	Timers   *timers.Registry
	Machine  *Machine
	Zones    *Zones
	Layout   *Layout
}

// NewUIState builds the state for one window. sched and dispatch are passed
// to the timer registry; geom may be nil.
func NewUIState(s Settings, sched timers.Scheduler, dispatch timers.Dispatcher, geom Geometry, logger *log.Logger) *UIState {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if s.ShowDelay < 0 {
		s.ShowDelay = 0
	}
	if s.HideDelay < 0 {
		s.HideDelay = 0
	}
	reg := timers.NewRegistry(sched, dispatch)
	machine := NewMachine(reg, s.Facts, s.ShowDelay, s.HideDelay, logger)
	zones := NewZones(s.Facts, s.Thickness)
	return &UIState{
		Settings: s,
		Timers:   reg,
		Machine:  machine,
		Zones:    zones,
		Layout:   NewLayout(s.Facts, geom, machine, zones, reg, s.ResizeDebounce, logger),
	}
}
