// Package autohide decides when the header bar and the side panels of a
// window should be shown or hidden.
//
// Pointer proximity at the screen edges asks a region to show; the pointer
// entering the main content asks it to hide. Both requests are debounced
// through named timer slots, and a request always supersedes an opposing one
// that is still pending. The only output is a visible flag per region plus
// the geometry the rendering layer needs to offset hidden regions.
package autohide

import (
	"errors"
	"fmt"
	"strings"
)

// Region is one of the auto-hiding areas of the window.
type Region int

const (
	Top Region = iota
	Left
	Right
)

// Regions lists every region in a stable order.
var Regions = []Region{Top, Left, Right}

// ErrUnknownRegion is returned when a region name cannot be parsed.
var ErrUnknownRegion = errors.New("unknown region")

func (r Region) String() string {
	switch r {
	case Top:
		return "top"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("region(%d)", int(r))
}

// ParseRegion accepts "top", "left" or "right" (any case). "header" is an
// alias for top.
func ParseRegion(s string) (Region, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top", "header":
		return Top, nil
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRegion, s)
}

// Group is a set of regions that share one enable toggle.
type Group int

const (
	// HeaderGroup holds Top and is always enabled.
	HeaderGroup Group = iota
	// PanelGroup holds Left and Right and can be toggled by the user.
	PanelGroup
)

func (g Group) String() string {
	if g == HeaderGroup {
		return "header"
	}
	return "panels"
}

// Group returns the group r belongs to.
func (r Region) Group() Group {
	if r == Top {
		return HeaderGroup
	}
	return PanelGroup
}

// PanelRegions are the members of PanelGroup.
var PanelRegions = []Region{Left, Right}

// Side is where a panel or tab bar is docked.
type Side int

const (
	SideNone Side = iota
	SideLeft
	SideRight
)

// ErrUnknownSide is returned when a side name cannot be parsed.
var ErrUnknownSide = errors.New("unknown side")

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	}
	return "none"
}

// ParseSide accepts "left", "right", "none" or the empty string.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "off":
		return SideNone, nil
	case "left":
		return SideLeft, nil
	case "right":
		return SideRight, nil
	}
	return SideNone, fmt.Errorf("%w: %q", ErrUnknownSide, s)
}

// LayoutFacts are the static placement facts computed once per session.
type LayoutFacts struct {
	Panels Side
	Tabs   Side
}

// Active reports whether r exists in this layout. Top always exists; a side
// region exists only if the panel or the tab bar is docked there.
func (f LayoutFacts) Active(r Region) bool {
	switch r {
	case Top:
		return true
	case Left:
		return f.Panels == SideLeft || f.Tabs == SideLeft
	case Right:
		return f.Panels == SideRight || f.Tabs == SideRight
	}
	return false
}

// sideOf maps a side region to its Side.
func sideOf(r Region) Side {
	switch r {
	case Left:
		return SideLeft
	case Right:
		return SideRight
	}
	return SideNone
}

type direction string

const (
	dirShow direction = "show"
	dirHide direction = "hide"
)

// slotName is unique per (region, direction).
func slotName(r Region, d direction) string {
	return r.String() + "." + string(d)
}
