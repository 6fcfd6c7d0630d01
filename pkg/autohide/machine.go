package autohide

import (
	"io"
	"log"
	"sync"
	"time"

	"github.com/b/tmux-autohide/pkg/perf"
	"github.com/b/tmux-autohide/pkg/timers"
)

// Default delays. Showing is quicker than hiding so the chrome feels
// responsive, while brief excursions into the content do not make it blink.
const (
	DefaultShowDelay = 125 * time.Millisecond
	DefaultHideDelay = 250 * time.Millisecond
)

// RegionState is the observable state of a single region.
type RegionState struct {
	Region  Region
	Active  bool
	Visible bool
	Size    int
}

type regionState struct {
	active  bool
	visible bool
	size    int
}

// Machine holds the visible flag of each region and applies debounced
// show/hide requests through a timer registry.
//
// Requests are expected from a single event loop. Reads (Visible, Snapshot)
// are safe from any goroutine.
type Machine struct {
	timers *timers.Registry
	log    *log.Logger

	mu        sync.Mutex
	showDelay time.Duration
	hideDelay time.Duration
	regions   [3]regionState
	observers []func(Region, bool)
}

// NewMachine creates a machine with every region Visible. One show slot and
// one hide slot are declared for each active region.
func NewMachine(reg *timers.Registry, facts LayoutFacts, showDelay, hideDelay time.Duration, logger *log.Logger) *Machine {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	m := &Machine{
		timers:    reg,
		log:       logger,
		showDelay: showDelay,
		hideDelay: hideDelay,
	}
	for _, r := range Regions {
		active := facts.Active(r)
		m.regions[r] = regionState{active: active, visible: true}
		if active {
			reg.Declare(slotName(r, dirShow), slotName(r, dirHide))
		}
	}
	return m
}

// OnChange registers fn to be called whenever a region's visible flag flips.
func (m *Machine) OnChange(fn func(r Region, visible bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

// SetDelays replaces the show and hide delays. Pending requests keep the
// delay they were scheduled with.
func (m *Machine) SetDelays(showDelay, hideDelay time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.showDelay = showDelay
	m.hideDelay = hideDelay
}

// Delays returns the current show and hide delays.
func (m *Machine) Delays() (showDelay, hideDelay time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.showDelay, m.hideDelay
}

// RequestHide cancels anything pending for r and schedules it to become
// Hidden after the hide delay.
func (m *Machine) RequestHide(r Region) {
	if !m.Active(r) {
		return
	}
	m.mu.Lock()
	delay := m.hideDelay
	m.mu.Unlock()

	m.timers.Cancel(slotName(r, dirShow))
	m.timers.Cancel(slotName(r, dirHide))
	m.timers.Schedule(slotName(r, dirHide), delay, func() { m.mark(r, false) })
}

// RequestShow cancels anything pending for r and schedules it to become
// Visible after the show delay.
func (m *Machine) RequestShow(r Region) {
	if !m.Active(r) {
		return
	}
	m.mu.Lock()
	delay := m.showDelay
	m.mu.Unlock()

	m.timers.Cancel(slotName(r, dirHide))
	m.timers.Cancel(slotName(r, dirShow))
	m.timers.Schedule(slotName(r, dirShow), delay, func() { m.mark(r, true) })
}

// ForceVisible cancels anything pending for r and marks it Visible now.
func (m *Machine) ForceVisible(r Region) {
	if !m.Active(r) {
		return
	}
	m.timers.Cancel(slotName(r, dirShow))
	m.timers.Cancel(slotName(r, dirHide))
	m.mark(r, true)
}

// Pending reports whether r has a show or hide waiting to fire.
func (m *Machine) Pending(r Region) bool {
	return m.timers.Pending(slotName(r, dirShow)) || m.timers.Pending(slotName(r, dirHide))
}

// Active reports whether r exists in the current layout.
func (m *Machine) Active(r Region) bool {
	if r < Top || r > Right {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.regions[r].active
}

// Visible reports the current visible flag of r. Inactive regions report
// false.
func (m *Machine) Visible(r Region) bool {
	if r < Top || r > Right {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.regions[r].active && m.regions[r].visible
}

// Size returns the last measured size of r in cells.
func (m *Machine) Size(r Region) int {
	if r < Top || r > Right {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.regions[r].size
}

// SetSize records the measured size of r. Inactive regions stay at 0.
func (m *Machine) SetSize(r Region, size int) {
	if r < Top || r > Right {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.regions[r].active || size < 0 {
		size = 0
	}
	m.regions[r].size = size
}

// Snapshot returns the state of every region.
func (m *Machine) Snapshot() []RegionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RegionState, 0, len(Regions))
	for _, r := range Regions {
		st := m.regions[r]
		out = append(out, RegionState{
			Region:  r,
			Active:  st.active,
			Visible: st.active && st.visible,
			Size:    st.size,
		})
	}
	return out
}

func (m *Machine) mark(r Region, visible bool) {
	m.mu.Lock()
	if m.regions[r].visible == visible {
		m.mu.Unlock()
		return
	}
	m.regions[r].visible = visible
	observers := append([]func(Region, bool){}, m.observers...)
	m.mu.Unlock()

	m.log.Printf("%s visible=%v", r, visible)
	span := perf.Begin("machine.transition " + r.String())
	defer span.End()
	for _, fn := range observers {
		fn(r, visible)
	}
}
