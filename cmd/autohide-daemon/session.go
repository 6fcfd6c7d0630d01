package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sort"

	"github.com/b/tmux-autohide/pkg/autohide"
	"github.com/b/tmux-autohide/pkg/config"
	"github.com/b/tmux-autohide/pkg/daemon"
	"github.com/b/tmux-autohide/pkg/timers"
	"github.com/b/tmux-autohide/pkg/tmux"
)

var errNoWindow = errors.New("no window to route to")

// applier pushes a region's visibility to the host.
type applier interface {
	Apply(region autohide.Region, visible bool) error
}

// session owns one controller per attached window. Every method runs on the
// daemon's event loop.
type session struct {
	cfg   *config.Config
	prefs autohide.PreferenceStore
	sched timers.Scheduler
	post  timers.Dispatcher
	log   *log.Logger

	geometry     func(windowID string) autohide.Geometry
	renderer     func(windowID string, facts autohide.LayoutFacts) applier
	activeWindow func() (string, error)
	broadcast    func(*daemon.StatePayload)

	windows map[string]*autohide.Controller
}

func newSession(cfg *config.Config, prefs autohide.PreferenceStore, sched timers.Scheduler, post timers.Dispatcher, logger *log.Logger) *session {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &session{
		cfg:   cfg,
		prefs: prefs,
		sched: sched,
		post:  post,
		log:   logger,
		geometry: func(id string) autohide.Geometry {
			return tmux.Geometry{Target: id}
		},
		renderer: func(id string, facts autohide.LayoutFacts) applier {
			return tmux.NewRenderer(id, facts, logger)
		},
		activeWindow: tmux.CurrentWindowID,
		broadcast:    func(*daemon.StatePayload) {},
		windows:      make(map[string]*autohide.Controller),
	}
}

func (s *session) resolve(msg daemon.Message) (string, error) {
	if msg.Window != "" {
		return msg.Window, nil
	}
	id, err := s.activeWindow()
	if err != nil {
		return "", fmt.Errorf("%w: %v", errNoWindow, err)
	}
	if id == "" {
		return "", errNoWindow
	}
	return id, nil
}

func (s *session) handle(clientID string, msg daemon.Message) (*daemon.StatePayload, error) {
	windowID, err := s.resolve(msg)
	if err != nil {
		return nil, err
	}
	ctrl := s.windows[windowID]

	switch msg.Type {
	case daemon.MsgAttach:
		if ctrl == nil {
			s.mount(windowID)
		} else {
			ctrl.Resized()
		}
	case daemon.MsgDetach:
		if ctrl != nil {
			ctrl.Stop()
			delete(s.windows, windowID)
			s.log.Printf("window %s detached", windowID)
		}
	case daemon.MsgQuery, daemon.MsgSubscribe:
	case daemon.MsgShortcut:
		var p daemon.ShortcutPayload
		if err := msg.Decode(&p); err != nil {
			return nil, err
		}
		if p.WindowID == "" {
			p.WindowID = windowID
		}
		for _, id := range s.windowIDs() {
			s.windows[id].HandleShortcut(p.Combo, p.WindowID)
		}
	case daemon.MsgSensorEnter, daemon.MsgContentEnter, daemon.MsgPointer, daemon.MsgResize:
		if ctrl == nil {
			// Signals before the window is attached have nothing to drive.
			break
		}
		if err := s.route(ctrl, msg); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown message type %q", msg.Type)
	}
	return s.state(windowID), nil
}

func (s *session) route(ctrl *autohide.Controller, msg daemon.Message) error {
	switch msg.Type {
	case daemon.MsgSensorEnter:
		var p daemon.SensorPayload
		if err := msg.Decode(&p); err != nil {
			return err
		}
		r, err := autohide.ParseRegion(p.Region)
		if err != nil {
			return err
		}
		ctrl.SensorEnter(r)
	case daemon.MsgContentEnter:
		ctrl.ContentEnter()
	case daemon.MsgPointer:
		var p daemon.PointerPayload
		if err := msg.Decode(&p); err != nil {
			return err
		}
		ctrl.PointerAt(p.X, p.Y)
	case daemon.MsgResize:
		ctrl.Resized()
	}
	return nil
}

func (s *session) mount(windowID string) {
	settings := s.cfg.Settings()
	st := autohide.NewUIState(settings, s.sched, s.post, s.geometry(windowID), s.log)
	r := s.renderer(windowID, settings.Facts)

	st.Machine.OnChange(func(region autohide.Region, visible bool) {
		if err := r.Apply(region, visible); err != nil {
			s.log.Printf("window %s: apply %s visible=%v: %v", windowID, region, visible, err)
		}
		s.broadcast(s.state(windowID))
	})
	st.Layout.OnRecompute(func() {
		if _, ok := s.windows[windowID]; ok {
			s.broadcast(s.state(windowID))
		}
	})

	s.windows[windowID] = autohide.NewController(st, autohide.Options{
		WindowID: windowID,
		Prefs:    s.prefs,
		Log:      s.log,
	})
	s.log.Printf("window %s attached facts=%+v", windowID, settings.Facts)
}

// reload applies a new config. Delays change for every attached window;
// layout facts only affect windows attached afterwards.
func (s *session) reload(cfg *config.Config) {
	s.cfg = cfg
	settings := cfg.Settings()
	for _, id := range s.windowIDs() {
		s.windows[id].State().Machine.SetDelays(settings.ShowDelay, settings.HideDelay)
	}
	s.log.Printf("config reloaded show=%s hide=%s", settings.ShowDelay, settings.HideDelay)
}

func (s *session) state(windowID string) *daemon.StatePayload {
	ctrl := s.windows[windowID]
	if ctrl == nil {
		return &daemon.StatePayload{Window: windowID}
	}
	st := &daemon.StatePayload{Window: windowID, Mounted: true, PanelsEnabled: ctrl.PanelsEnabled()}
	for _, r := range ctrl.State().Machine.Snapshot() {
		st.Regions = append(st.Regions, daemon.RegionPayload{
			Region:  r.Region.String(),
			Active:  r.Active,
			Visible: r.Visible,
			Size:    r.Size,
		})
	}
	return st
}

func (s *session) windowIDs() []string {
	ids := make([]string, 0, len(s.windows))
	for id := range s.windows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *session) stop() {
	for _, ctrl := range s.windows {
		ctrl.Stop()
	}
}
