package tmux

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b/tmux-autohide/pkg/autohide"
)

func paneLine(fields ...string) string {
	return strings.Join(fields, "\x1f")
}

var sampleListing = strings.Join([]string{
	paneLine("@2", "200", "50", "%1", "200", "2", "header", ""),
	paneLine("@2", "200", "50", "%2", "30", "47", "panel", "32"),
	paneLine("@2", "200", "50", "%3", "150", "47", "content", ""),
	paneLine("@2", "200", "50", "%4", "18", "47", "tabs", ""),
	"garbage line",
}, "\n") + "\n"

type fakeTmux struct {
	calls   [][]string
	listing string
	failOn  string
}

func (f *fakeTmux) install(t *testing.T) {
	t.Helper()
	orig := run
	run = func(args ...string) (string, error) {
		f.calls = append(f.calls, args)
		if f.failOn != "" && args[0] == f.failOn {
			return "", errors.New("tmux exploded")
		}
		if args[0] == "list-panes" {
			return f.listing, nil
		}
		return "", nil
	}
	t.Cleanup(func() { run = orig })
}

func (f *fakeTmux) commands(name string) [][]string {
	var out [][]string
	for _, c := range f.calls {
		if c[0] == name {
			out = append(out, c)
		}
	}
	return out
}

func TestParseWindow(t *testing.T) {
	w := parseWindow(sampleListing)
	require.Len(t, w.Panes, 4)
	assert.Equal(t, "@2", w.ID)
	assert.Equal(t, 200, w.Width)
	assert.Equal(t, 50, w.Height)

	header := w.PanesWithRole(RoleHeader)
	require.Len(t, header, 1)
	assert.Equal(t, 2, header[0].Natural, "header falls back to height")
	assert.False(t, header[0].Pinned)

	panel := w.PanesWithRole(RolePanel)[0]
	assert.Equal(t, 32, panel.Natural)
	assert.True(t, panel.Pinned)
}

func TestMeasurements(t *testing.T) {
	m := parseWindow(sampleListing).Measurements()
	assert.Equal(t, autohide.Measurements{Width: 200, Height: 50, HeaderHeight: 2, PanelWidth: 32, TabsWidth: 18}, m)

	var missing *Window
	assert.Equal(t, autohide.Measurements{}, missing.Measurements())

	bare := parseWindow(paneLine("@1", "80", "24", "%1", "80", "24", "", ""))
	assert.Equal(t, autohide.Measurements{Width: 80, Height: 24}, bare.Measurements())
}

func TestGeometryMeasure(t *testing.T) {
	fake := &fakeTmux{listing: sampleListing}
	fake.install(t)

	m, err := Geometry{Target: "@2"}.Measure()
	require.NoError(t, err)
	assert.Equal(t, 32, m.PanelWidth)
	assert.Equal(t, []string{"list-panes", "-t", "@2", "-F", paneFormat}, fake.calls[0])

	fake.listing = ""
	_, err = Geometry{Target: "@9"}.Measure()
	assert.Error(t, err)
}

func TestRendererRoles(t *testing.T) {
	r := NewRenderer("@2", autohide.LayoutFacts{Panels: autohide.SideLeft, Tabs: autohide.SideLeft}, nil)
	assert.Equal(t, []string{RoleHeader}, r.Roles(autohide.Top))
	assert.Equal(t, []string{RolePanel, RoleTabs}, r.Roles(autohide.Left))
	assert.Empty(t, r.Roles(autohide.Right))
}

func TestRendererHideAndShow(t *testing.T) {
	fake := &fakeTmux{listing: sampleListing}
	fake.install(t)
	r := NewRenderer("@2", autohide.LayoutFacts{Panels: autohide.SideLeft, Tabs: autohide.SideRight}, nil)

	require.NoError(t, r.Apply(autohide.Right, false))
	assert.Equal(t, [][]string{{"set-option", "-p", "-t", "%4", "@autohide_size", "18"}}, fake.commands("set-option"))
	assert.Equal(t, [][]string{{"resize-pane", "-t", "%4", "-x", "1"}}, fake.commands("resize-pane"))

	fake.calls = nil
	require.NoError(t, r.Apply(autohide.Left, true))
	assert.Empty(t, fake.commands("set-option"))
	assert.Equal(t, [][]string{{"resize-pane", "-t", "%2", "-x", "32"}}, fake.commands("resize-pane"))

	fake.calls = nil
	require.NoError(t, r.Apply(autohide.Top, false))
	assert.Equal(t, [][]string{{"resize-pane", "-t", "%1", "-y", "1"}}, fake.commands("resize-pane"))
}

func TestRendererReportsResizeFailure(t *testing.T) {
	fake := &fakeTmux{listing: sampleListing, failOn: "resize-pane"}
	fake.install(t)
	r := NewRenderer("@2", autohide.LayoutFacts{Panels: autohide.SideLeft}, nil)

	err := r.Apply(autohide.Left, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resize panel %2")
}
