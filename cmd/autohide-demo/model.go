package main

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/b/tmux-autohide/pkg/autohide"
	"github.com/b/tmux-autohide/pkg/colors"
	"github.com/b/tmux-autohide/pkg/config"
	"github.com/b/tmux-autohide/pkg/timers"
)

// timerMsg carries a fired timer action onto the program's loop.
type timerMsg struct {
	run func()
}

type keyMap struct {
	Toggle key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type styles struct {
	header  lipgloss.Style
	panel   lipgloss.Style
	content lipgloss.Style
	hidden  lipgloss.Style
	shown   lipgloss.Style
}

func newStyles(p colors.Palette) styles {
	return styles{
		header:  lipgloss.NewStyle().Foreground(lipgloss.Color(p.HeaderFg)).Background(lipgloss.Color(p.HeaderBg)).Bold(true),
		panel:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.PanelFg)).Background(lipgloss.Color(p.PanelBg)),
		content: lipgloss.NewStyle().Foreground(lipgloss.Color(p.Text)),
		hidden:  lipgloss.NewStyle().Foreground(lipgloss.Color(p.Muted)),
		shown:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.Accent)),
	}
}

type model struct {
	cfg   *config.Config
	prefs autohide.PreferenceStore
	sched timers.Scheduler
	log   *log.Logger
	send  func(tea.Msg)

	ctrl   *autohide.Controller
	keys   keyMap
	help   help.Model
	styles styles

	width  int
	height int
	mouseX int
	mouseY int
}

func newModel(cfg *config.Config, prefs autohide.PreferenceStore, sched timers.Scheduler, palette colors.Palette, logger *log.Logger) *model {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &model{
		cfg:   cfg,
		prefs: prefs,
		sched: sched,
		log:   logger,
		keys: keyMap{
			Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		},
		help:   help.New(),
		styles: newStyles(palette),
		mouseX: -1,
		mouseY: -1,
	}
}

func (m *model) dispatch(run func()) {
	if m.send != nil {
		m.send(timerMsg{run: run})
	}
}

// mount builds the controller once the terminal size is known.
func (m *model) mount() {
	geom := autohide.GeometryFunc(func() (autohide.Measurements, error) {
		return m.cfg.NaturalSizes(m.width, m.height), nil
	})
	state := autohide.NewUIState(m.cfg.Settings(), m.sched, m.dispatch, geom, m.log)
	m.ctrl = autohide.NewController(state, autohide.Options{Prefs: m.prefs, Log: m.log})
	m.keys.Toggle = m.ctrl.ToggleBinding()
	m.log.Printf("mounted %dx%d", m.width, m.height)
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		if m.ctrl == nil {
			m.mount()
		} else {
			m.ctrl.Resized()
		}

	case timerMsg:
		msg.run()

	case tea.MouseMsg:
		m.mouseX, m.mouseY = msg.X, msg.Y
		if m.ctrl != nil {
			m.ctrl.PointerAt(msg.X, msg.Y)
		}

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			if m.ctrl != nil {
				m.ctrl.Stop()
			}
			return m, tea.Quit
		}
		if m.ctrl != nil {
			m.ctrl.HandleShortcut(msg.String(), "")
		}
	}
	return m, nil
}

func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

func (m *model) View() string {
	if m.ctrl == nil {
		return ""
	}
	st := m.ctrl.State()
	mach := st.Machine
	content := st.Layout.Content()

	var rows []string
	if mach.Visible(autohide.Top) && mach.Size(autohide.Top) > 0 {
		rows = append(rows, m.styles.header.
			Width(m.width).
			Height(mach.Size(autohide.Top)).
			Render(fit(" tmux-autohide demo", m.width)))
	}
	if content.H == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, rows...)
	}

	var cols []string
	if mach.Visible(autohide.Left) && mach.Size(autohide.Left) > 0 {
		cols = append(cols, m.renderSide(autohide.Left, content.H))
	}
	cols = append(cols, m.styles.content.
		Width(content.W).
		Height(content.H).
		Render(m.contentLines(content.W)))
	if mach.Visible(autohide.Right) && mach.Size(autohide.Right) > 0 {
		cols = append(cols, m.renderSide(autohide.Right, content.H))
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *model) renderSide(r autohide.Region, height int) string {
	w := m.ctrl.State().Machine.Size(r)
	facts := m.ctrl.State().Settings.Facts
	var lines []string
	if facts.Panels != autohide.SideNone && r == regionFor(facts.Panels) {
		lines = append(lines, fit(" panels", w))
	}
	if facts.Tabs != autohide.SideNone && r == regionFor(facts.Tabs) {
		lines = append(lines, fit(" tabs", w))
	}
	return m.styles.panel.Width(w).Height(height).Render(strings.Join(lines, "\n"))
}

func regionFor(s autohide.Side) autohide.Region {
	if s == autohide.SideRight {
		return autohide.Right
	}
	return autohide.Left
}

func (m *model) contentLines(width int) string {
	mach := m.ctrl.State().Machine
	lines := []string{
		"",
		fit(fmt.Sprintf(" pointer %d,%d  viewport %dx%d", m.mouseX, m.mouseY, m.width, m.height), width),
		fit(fmt.Sprintf(" panel auto-hide: %v", m.ctrl.PanelsEnabled()), width),
		"",
	}
	for _, rs := range mach.Snapshot() {
		if !rs.Active {
			continue
		}
		state := m.styles.hidden.Render("hidden")
		if rs.Visible {
			state = m.styles.shown.Render("visible")
		}
		lines = append(lines, fmt.Sprintf(" %-6s %s", rs.Region, state))
	}
	lines = append(lines, "", " "+m.help.View(m.keys))
	return strings.Join(lines, "\n")
}
