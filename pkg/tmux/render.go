package tmux

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"

	"github.com/b/tmux-autohide/pkg/autohide"
)

// HiddenSize is how small a hidden pane gets. tmux does not allow 0.
const HiddenSize = 1

// Renderer applies region visibility to a tmux window by resizing the
// panes that carry each region's role.
type Renderer struct {
	Target string
	Facts  autohide.LayoutFacts
	Log    *log.Logger
}

// NewRenderer returns a renderer for the window target.
func NewRenderer(target string, facts autohide.LayoutFacts, logger *log.Logger) *Renderer {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Renderer{Target: target, Facts: facts, Log: logger}
}

// Roles returns the pane roles that make up region.
func (r *Renderer) Roles(region autohide.Region) []string {
	if region == autohide.Top {
		return []string{RoleHeader}
	}
	side := autohide.SideLeft
	if region == autohide.Right {
		side = autohide.SideRight
	}
	var roles []string
	if r.Facts.Panels == side {
		roles = append(roles, RolePanel)
	}
	if r.Facts.Tabs == side {
		roles = append(roles, RoleTabs)
	}
	return roles
}

// Apply resizes every pane of region to its natural size when visible and
// to HiddenSize otherwise. The natural size is pinned to the pane before the
// first hide so it can be restored.
func (r *Renderer) Apply(region autohide.Region, visible bool) error {
	w, err := QueryWindow(r.Target)
	if err != nil {
		return err
	}
	return r.apply(w, region, visible)
}

func (r *Renderer) apply(w *Window, region autohide.Region, visible bool) error {
	axis := "-x"
	if region == autohide.Top {
		axis = "-y"
	}
	var errs []error
	for _, role := range r.Roles(region) {
		for _, p := range w.PanesWithRole(role) {
			size := HiddenSize
			if visible {
				size = p.Natural
			} else if !p.Pinned && p.Natural > HiddenSize {
				if _, err := run("set-option", "-p", "-t", p.ID, "@autohide_size", strconv.Itoa(p.Natural)); err != nil {
					errs = append(errs, err)
				}
			}
			if _, err := run("resize-pane", "-t", p.ID, axis, strconv.Itoa(size)); err != nil {
				errs = append(errs, fmt.Errorf("resize %s %s: %w", role, p.ID, err))
				continue
			}
			r.Log.Printf("%s %s %s=%d", region, p.ID, axis, size)
		}
	}
	return errors.Join(errs...)
}
