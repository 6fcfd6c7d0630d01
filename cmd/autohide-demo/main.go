// Command autohide-demo runs the auto-hide controller against the terminal
// it is started in: a header, side panels and a content area that react to
// the mouse.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/b/tmux-autohide/pkg/colors"
	"github.com/b/tmux-autohide/pkg/config"
	"github.com/b/tmux-autohide/pkg/paths"
	"github.com/b/tmux-autohide/pkg/prefs"
	"github.com/b/tmux-autohide/pkg/timers"
)

var (
	configPath = flag.String("config", "", "config file (default: config dir/config.yaml)")
	debugMode  = flag.Bool("debug", false, "Log transitions to a file in the temp dir")
)

func main() {
	flag.Parse()

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "autohide-demo: stdout is not a terminal")
		os.Exit(1)
	}

	path := *configPath
	if path == "" {
		path = paths.ConfigPath()
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger := log.New(io.Discard, "", 0)
	if *debugMode {
		logPath := paths.RuntimePath("demo", ".log")
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err == nil {
			defer f.Close()
			logger = log.New(f, "[demo] ", log.LstdFlags|log.Lmicroseconds)
		}
	}

	// Force ANSI256 color mode for consistent rendering across terminals
	lipgloss.SetColorProfile(termenv.ANSI256)

	palette := colors.Derive(cfg.Theme.Base, colors.DarkBackground(colors.Mode(cfg.Theme.Mode)))
	m := newModel(cfg, prefs.Default(), timers.WallClock, palette, logger)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	m.send = p.Send

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
