package main

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b/tmux-autohide/pkg/autohide"
	"github.com/b/tmux-autohide/pkg/config"
	"github.com/b/tmux-autohide/pkg/daemon"
	"github.com/b/tmux-autohide/pkg/timers"
)

type applied struct {
	window  string
	region  autohide.Region
	visible bool
}

type recorder struct {
	window string
	calls  *[]applied
}

func (r recorder) Apply(region autohide.Region, visible bool) error {
	*r.calls = append(*r.calls, applied{r.window, region, visible})
	return nil
}

type memPrefs struct {
	value, ok bool
}

func (p *memPrefs) Load() (bool, bool) { return p.value, p.ok }
func (p *memPrefs) Save(v bool) error  { p.value, p.ok = v, true; return nil }

type harness struct {
	clock     *timers.ManualScheduler
	sess      *session
	prefs     *memPrefs
	applied   []applied
	published []*daemon.StatePayload
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		clock: timers.NewManualScheduler(time.Unix(0, 0)),
		prefs: &memPrefs{},
	}
	h.sess = newSession(config.Default(), h.prefs, h.clock, nil, nil)
	h.sess.geometry = func(string) autohide.Geometry {
		return autohide.GeometryFunc(func() (autohide.Measurements, error) {
			return autohide.Measurements{Width: 120, Height: 40, HeaderHeight: 1, PanelWidth: 25}, nil
		})
	}
	h.sess.renderer = func(id string, _ autohide.LayoutFacts) applier {
		return recorder{window: id, calls: &h.applied}
	}
	h.sess.activeWindow = func() (string, error) { return "@1", nil }
	h.sess.broadcast = func(st *daemon.StatePayload) { h.published = append(h.published, st) }
	return h
}

func (h *harness) send(t *testing.T, typ daemon.MessageType, payload any) *daemon.StatePayload {
	t.Helper()
	msg, err := daemon.NewMessage(typ, payload)
	require.NoError(t, err)
	st, err := h.sess.handle("hook", msg)
	require.NoError(t, err)
	return st
}

func visible(st *daemon.StatePayload, region string) bool {
	for _, r := range st.Regions {
		if r.Region == region {
			return r.Visible
		}
	}
	return false
}

func TestSessionIgnoresSignalsBeforeAttach(t *testing.T) {
	h := newHarness(t)

	st := h.send(t, daemon.MsgQuery, nil)
	assert.False(t, st.Mounted)

	st = h.send(t, daemon.MsgSensorEnter, daemon.SensorPayload{Region: "top"})
	assert.False(t, st.Mounted)
	assert.Empty(t, h.applied)
}

func TestSessionAttachHidesAfterDelay(t *testing.T) {
	h := newHarness(t)

	st := h.send(t, daemon.MsgAttach, nil)
	require.True(t, st.Mounted)
	assert.True(t, st.PanelsEnabled)
	assert.True(t, visible(st, "top"))

	h.clock.Advance(249 * time.Millisecond)
	assert.Empty(t, h.applied)

	h.clock.Advance(time.Millisecond)
	assert.Equal(t, []applied{
		{"@1", autohide.Top, false},
		{"@1", autohide.Left, false},
	}, h.applied)
	require.NotEmpty(t, h.published)
	last := h.published[len(h.published)-1]
	assert.False(t, visible(last, "top"))
	assert.False(t, visible(last, "left"))
}

func TestSessionSensorRevealsRegion(t *testing.T) {
	h := newHarness(t)
	h.send(t, daemon.MsgAttach, nil)
	h.clock.Advance(time.Second)

	h.send(t, daemon.MsgSensorEnter, daemon.SensorPayload{Region: "left"})
	h.clock.Advance(124 * time.Millisecond)
	st := h.send(t, daemon.MsgQuery, nil)
	assert.False(t, visible(st, "left"))

	h.clock.Advance(time.Millisecond)
	st = h.send(t, daemon.MsgQuery, nil)
	assert.True(t, visible(st, "left"))
	assert.False(t, visible(st, "top"))
}

func TestSessionShortcutTogglesPanels(t *testing.T) {
	h := newHarness(t)
	h.send(t, daemon.MsgAttach, nil)
	h.clock.Advance(time.Second)

	st := h.send(t, daemon.MsgShortcut, daemon.ShortcutPayload{Combo: "C-b", WindowID: "@9"})
	assert.True(t, st.PanelsEnabled, "other window's shortcut is ignored")

	st = h.send(t, daemon.MsgShortcut, daemon.ShortcutPayload{Combo: "C-b"})
	assert.False(t, st.PanelsEnabled)
	assert.True(t, visible(st, "left"))
	assert.Equal(t, &memPrefs{value: false, ok: true}, h.prefs)
}

func TestSessionRespectsStoredPreference(t *testing.T) {
	h := newHarness(t)
	h.prefs.value, h.prefs.ok = false, true

	st := h.send(t, daemon.MsgAttach, nil)
	assert.False(t, st.PanelsEnabled)

	h.clock.Advance(time.Second)
	assert.Equal(t, []applied{{"@1", autohide.Top, false}}, h.applied)
}

func TestSessionRoutesByWindow(t *testing.T) {
	h := newHarness(t)
	h.send(t, daemon.MsgAttach, nil)
	_, err := h.sess.handle("hook", daemon.Message{Type: daemon.MsgAttach, Window: "@2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"@1", "@2"}, h.sess.windowIDs())

	_, err = h.sess.handle("hook", daemon.Message{Type: daemon.MsgDetach, Window: "@2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"@1"}, h.sess.windowIDs())

	h.clock.Advance(time.Second)
	for _, a := range h.applied {
		assert.Equal(t, "@1", a.window, "detached window keeps no timers")
	}
}

func TestSessionTagsBroadcastsWithWindow(t *testing.T) {
	h := newHarness(t)
	st := h.send(t, daemon.MsgAttach, nil)
	assert.Equal(t, "@1", st.Window)
	st, err := h.sess.handle("hook", daemon.Message{Type: daemon.MsgAttach, Window: "@2"})
	require.NoError(t, err)
	assert.Equal(t, "@2", st.Window)

	h.published = nil
	h.clock.Advance(time.Second)
	require.Len(t, h.published, 4)

	seen := map[string]int{}
	for i, a := range h.applied {
		assert.Equal(t, a.window, h.published[i].Window, "broadcast %d", i)
		seen[h.published[i].Window]++
	}
	assert.Equal(t, map[string]int{"@1": 2, "@2": 2}, seen)

	st = h.send(t, daemon.MsgQuery, nil)
	assert.Equal(t, "@1", st.Window)
	assert.True(t, st.Mounted)
}

func TestSessionRejectsBadMessages(t *testing.T) {
	h := newHarness(t)
	h.send(t, daemon.MsgAttach, nil)

	msg, err := daemon.NewMessage(daemon.MsgSensorEnter, daemon.SensorPayload{Region: "bottom"})
	require.NoError(t, err)
	_, err = h.sess.handle("hook", msg)
	assert.ErrorIs(t, err, autohide.ErrUnknownRegion)

	_, err = h.sess.handle("hook", daemon.Message{Type: "bogus"})
	assert.Error(t, err)

	_, err = h.sess.handle("hook", daemon.Message{Type: daemon.MsgPointer})
	assert.Error(t, err)
}

func TestSessionNoActiveWindow(t *testing.T) {
	h := newHarness(t)
	h.sess.activeWindow = func() (string, error) { return "", errors.New("no server running") }

	_, err := h.sess.handle("hook", daemon.Message{Type: daemon.MsgQuery})
	assert.ErrorIs(t, err, errNoWindow)
}

func TestSessionReloadUpdatesDelays(t *testing.T) {
	h := newHarness(t)
	h.send(t, daemon.MsgAttach, nil)

	cfg := config.Default()
	cfg.AutoHide.ShowDelay = config.Duration(40 * time.Millisecond)
	cfg.AutoHide.HideDelay = config.Duration(500 * time.Millisecond)
	h.sess.reload(cfg)

	show, hide := h.sess.windows["@1"].State().Machine.Delays()
	assert.Equal(t, 40*time.Millisecond, show)
	assert.Equal(t, 500*time.Millisecond, hide)
}
