package tmux

import (
	"bytes"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/b/tmux-autohide/pkg/autohide"
)

// Pane roles, stored in the @autohide_role pane option by whoever creates
// the chrome panes.
const (
	RoleHeader  = "header"
	RolePanel   = "panel"
	RoleTabs    = "tabs"
	RoleContent = "content"
)

type Pane struct {
	ID     string
	Role   string
	Width  int
	Height int
	// Natural is the size the pane wants when shown (@autohide_size). It
	// falls back to the current width, or height for the header.
	Natural int
	// Pinned is set when Natural came from @autohide_size.
	Pinned bool
}

// Window is a snapshot of one tmux window's geometry.
type Window struct {
	ID     string
	Width  int
	Height int
	Panes  []Pane
}

const paneFormat = "#{window_id}\x1f#{window_width}\x1f#{window_height}\x1f#{pane_id}\x1f#{pane_width}\x1f#{pane_height}\x1f#{@autohide_role}\x1f#{@autohide_size}"

// run executes tmux and returns stdout. Tests replace it.
var run = func(args ...string) (string, error) {
	cmd := exec.Command("tmux", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tmux %s: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// CurrentWindowID returns the id of the active window, e.g. "@3".
func CurrentWindowID() (string, error) {
	out, err := run("display-message", "-p", "#{window_id}")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// CurrentSessionID returns the id of the current session, e.g. "$1".
func CurrentSessionID() (string, error) {
	out, err := run("display-message", "-p", "#{session_id}")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// QueryWindow lists the panes of target with their geometry.
func QueryWindow(target string) (*Window, error) {
	out, err := run("list-panes", "-t", target, "-F", paneFormat)
	if err != nil {
		return nil, err
	}
	w := parseWindow(out)
	if w.ID == "" {
		return nil, fmt.Errorf("tmux list-panes: no panes for %s", target)
	}
	return w, nil
}

func parseWindow(out string) *Window {
	w := &Window{}
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		parts := strings.Split(line, "\x1f")
		if len(parts) < 8 {
			continue
		}
		if w.ID == "" {
			w.ID = parts[0]
			w.Width = atoi(parts[1])
			w.Height = atoi(parts[2])
		}
		p := Pane{
			ID:     parts[3],
			Width:  atoi(parts[4]),
			Height: atoi(parts[5]),
			Role:   strings.TrimSpace(parts[6]),
		}
		p.Natural = atoi(parts[7])
		p.Pinned = p.Natural > 0
		if !p.Pinned {
			if p.Role == RoleHeader {
				p.Natural = p.Height
			} else {
				p.Natural = p.Width
			}
		}
		w.Panes = append(w.Panes, p)
	}
	return w
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// PanesWithRole returns the panes tagged role.
func (w *Window) PanesWithRole(role string) []Pane {
	var out []Pane
	for _, p := range w.Panes {
		if p.Role == role {
			out = append(out, p)
		}
	}
	return out
}

func (w *Window) naturalSize(role string) int {
	size := 0
	for _, p := range w.PanesWithRole(role) {
		size = max(size, p.Natural)
	}
	return size
}

// Measurements converts the snapshot into autohide measurements. Roles
// without a pane measure 0.
func (w *Window) Measurements() autohide.Measurements {
	if w == nil {
		return autohide.Measurements{}
	}
	return autohide.Measurements{
		Width:        w.Width,
		Height:       w.Height,
		HeaderHeight: w.naturalSize(RoleHeader),
		PanelWidth:   w.naturalSize(RolePanel),
		TabsWidth:    w.naturalSize(RoleTabs),
	}
}

// Geometry measures target on every call.
type Geometry struct {
	Target string
}

// Measure implements autohide.Geometry.
func (g Geometry) Measure() (autohide.Measurements, error) {
	w, err := QueryWindow(g.Target)
	if err != nil {
		return autohide.Measurements{}, err
	}
	return w.Measurements(), nil
}
