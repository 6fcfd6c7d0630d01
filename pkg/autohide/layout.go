package autohide

import (
	"io"
	"log"
	"time"

	"github.com/b/tmux-autohide/pkg/perf"
	"github.com/b/tmux-autohide/pkg/timers"
)

// DefaultResizeDebounce coalesces bursts of resize events.
const DefaultResizeDebounce = 150 * time.Millisecond

const resizeSlot = "layout.resize"

// Measurements is the content geometry reported by the host, in cells.
// Anything the host could not find is 0.
type Measurements struct {
	Width        int
	Height       int
	HeaderHeight int
	PanelWidth   int
	TabsWidth    int
}

// Geometry measures the host window.
type Geometry interface {
	Measure() (Measurements, error)
}

// GeometryFunc adapts a function to Geometry.
type GeometryFunc func() (Measurements, error)

// Measure implements Geometry.
func (f GeometryFunc) Measure() (Measurements, error) { return f() }

// Layout recomputes zone placement and region sizes from the host geometry.
type Layout struct {
	facts    LayoutFacts
	geom     Geometry
	machine  *Machine
	zones    *Zones
	timers   *timers.Registry
	debounce time.Duration
	log      *log.Logger

	width  int
	height int
	onDone []func()
}

// NewLayout wires a layout adapter. geom may be nil, in which case every
// size is 0.
func NewLayout(facts LayoutFacts, geom Geometry, machine *Machine, zones *Zones, reg *timers.Registry, debounce time.Duration, logger *log.Logger) *Layout {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if debounce <= 0 {
		debounce = DefaultResizeDebounce
	}
	return &Layout{
		facts:    facts,
		geom:     geom,
		machine:  machine,
		zones:    zones,
		timers:   reg,
		debounce: debounce,
		log:      logger,
	}
}

// OnRecompute registers fn to run after every recompute.
func (l *Layout) OnRecompute(fn func()) {
	l.onDone = append(l.onDone, fn)
}

// Resized schedules a recompute after the debounce delay. Further resizes
// inside the window push it back.
func (l *Layout) Resized() {
	l.timers.Schedule(resizeSlot, l.debounce, l.Recompute)
}

// Recompute measures the host and updates sizes and zone bounds now.
func (l *Layout) Recompute() {
	span := perf.Begin("layout.recompute")
	defer span.End()

	m := l.measure()
	l.width, l.height = max(m.Width, 0), max(m.Height, 0)

	for _, r := range Regions {
		l.machine.SetSize(r, l.sizeFor(r, m))
	}
	l.zones.Place(l.width, l.height)
	l.log.Printf("layout %dx%d top=%d left=%d right=%d", l.width, l.height,
		l.machine.Size(Top), l.machine.Size(Left), l.machine.Size(Right))

	for _, fn := range l.onDone {
		fn()
	}
}

// Viewport returns the last measured window size.
func (l *Layout) Viewport() (width, height int) {
	return l.width, l.height
}

// Offsets returns how far each region has to move to be out of view. It is
// the region size for active regions and 0 otherwise.
func (l *Layout) Offsets() map[Region]int {
	out := make(map[Region]int, len(Regions))
	for _, r := range Regions {
		out[r] = l.machine.Size(r)
	}
	return out
}

// Content returns the rectangle not covered by any visible region.
func (l *Layout) Content() Rect {
	top, left, right := 0, 0, 0
	if l.machine.Visible(Top) {
		top = l.machine.Size(Top)
	}
	if l.machine.Visible(Left) {
		left = l.machine.Size(Left)
	}
	if l.machine.Visible(Right) {
		right = l.machine.Size(Right)
	}
	return Rect{
		X: left,
		Y: top,
		W: max(l.width-left-right, 0),
		H: max(l.height-top, 0),
	}
}

func (l *Layout) measure() Measurements {
	if l.geom == nil {
		return Measurements{}
	}
	m, err := l.geom.Measure()
	if err != nil {
		l.log.Printf("measure: %v", err)
		return Measurements{}
	}
	return m
}

func (l *Layout) sizeFor(r Region, m Measurements) int {
	if !l.facts.Active(r) {
		return 0
	}
	if r == Top {
		return max(m.HeaderHeight, 0)
	}
	side := sideOf(r)
	size := 0
	if l.facts.Panels == side {
		size += max(m.PanelWidth, 0)
	}
	if l.facts.Tabs == side {
		size += max(m.TabsWidth, 0)
	}
	return size
}
