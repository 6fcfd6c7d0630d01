package autohide

// Rect is a cell rectangle; X/Y is the top-left corner.
type Rect struct {
	X, Y int
	W, H int
}

// Contains reports whether the cell (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && y >= r.Y && x < r.X+r.W && y < r.Y+r.H
}

// Empty reports whether r covers no cells.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Zone is a thin trigger strip pinned to one screen edge. Entering it asks
// its region to show; it never hides anything.
type Zone struct {
	Region    Region
	Thickness int
	Bounds    Rect

	onEnter func(Region)
}

// Bound reports whether the zone currently forwards enters.
func (z *Zone) Bound() bool {
	return z.onEnter != nil
}

// Enter signals proximity. A bound zone emits exactly one show request.
func (z *Zone) Enter() {
	if z.onEnter != nil {
		z.onEnter(z.Region)
	}
}

// Zones holds one zone per active region.
type Zones struct {
	zones map[Region]*Zone
}

// NewZones creates a zone for each active region in facts. thickness gives
// the strip width per region; values below 1 become 1.
func NewZones(facts LayoutFacts, thickness map[Region]int) *Zones {
	zs := &Zones{zones: make(map[Region]*Zone)}
	for _, r := range Regions {
		if !facts.Active(r) {
			continue
		}
		t := thickness[r]
		if t < 1 {
			t = 1
		}
		zs.zones[r] = &Zone{Region: r, Thickness: t}
	}
	return zs
}

// Get returns the zone for r, if r is active.
func (zs *Zones) Get(r Region) (*Zone, bool) {
	z, ok := zs.zones[r]
	return z, ok
}

// Len returns the number of zones.
func (zs *Zones) Len() int {
	return len(zs.zones)
}

// Bind routes enters on r's zone to fn, replacing any previous binding.
func (zs *Zones) Bind(r Region, fn func(Region)) {
	if z, ok := zs.zones[r]; ok {
		z.onEnter = fn
	}
}

// Unbind stops r's zone from emitting.
func (zs *Zones) Unbind(r Region) {
	if z, ok := zs.zones[r]; ok {
		z.onEnter = nil
	}
}

// Enter forwards a proximity signal to r's zone. Inactive regions have no
// zone and are ignored.
func (zs *Zones) Enter(r Region) {
	if z, ok := zs.zones[r]; ok {
		z.Enter()
	}
}

// Place pins every zone to its edge of a width x height viewport.
func (zs *Zones) Place(width, height int) {
	for r, z := range zs.zones {
		t := z.Thickness
		switch r {
		case Top:
			z.Bounds = Rect{X: 0, Y: 0, W: width, H: min(t, height)}
		case Left:
			z.Bounds = Rect{X: 0, Y: 0, W: min(t, width), H: height}
		case Right:
			w := min(t, width)
			z.Bounds = Rect{X: width - w, Y: 0, W: w, H: height}
		}
	}
}

// Hit returns the zone under (x, y). Top wins in the corners so the header
// stays reachable when side panels are docked.
func (zs *Zones) Hit(x, y int) (*Zone, bool) {
	for _, r := range Regions {
		z, ok := zs.zones[r]
		if !ok || z.Bounds.Empty() {
			continue
		}
		if z.Bounds.Contains(x, y) {
			return z, true
		}
	}
	return nil, false
}
