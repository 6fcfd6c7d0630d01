package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"

	"github.com/fsnotify/fsnotify"

	"github.com/b/tmux-autohide/pkg/config"
	"github.com/b/tmux-autohide/pkg/daemon"
	"github.com/b/tmux-autohide/pkg/paths"
	"github.com/b/tmux-autohide/pkg/prefs"
	"github.com/b/tmux-autohide/pkg/timers"
	"github.com/b/tmux-autohide/pkg/tmux"
)

var (
	sessionID  = flag.String("session", "", "tmux session ID")
	configPath = flag.String("config", "", "config file (default: config dir/config.yaml)")
	debugMode  = flag.Bool("debug", false, "Enable debug logging")
)

var (
	crashLog *log.Logger
	eventLog *log.Logger
	debugLog *log.Logger
)

var errShuttingDown = errors.New("daemon shutting down")

func openLog(sessionID, kind, prefix string) *log.Logger {
	path := paths.RuntimePath(sessionID, "-"+kind+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stderr, "["+kind+"] ", log.LstdFlags)
	}
	return log.New(f, prefix, log.LstdFlags|log.Lmicroseconds)
}

func logEvent(format string, args ...interface{}) {
	if eventLog != nil {
		eventLog.Printf(format, args...)
	}
}

func recoverAndLog(context string) {
	if r := recover(); r != nil {
		crashLog.Printf("=== CRASH in %s ===", context)
		crashLog.Printf("Panic: %v", r)
		crashLog.Printf("Stack trace:\n%s", debug.Stack())
		crashLog.Printf("=== END CRASH ===\n")
	}
}

// loop serialises every controller call. Timer callbacks and socket
// handlers post closures into it.
type loop struct {
	events chan func()
	done   chan struct{}
	exited chan struct{}
}

func newLoop() *loop {
	return &loop{
		events: make(chan func(), 64),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
}

func (l *loop) post(run func()) {
	select {
	case l.events <- run:
	case <-l.done:
	}
}

func (l *loop) run() {
	defer close(l.exited)
	for {
		select {
		case fn := <-l.events:
			func() {
				defer recoverAndLog("event-loop")
				fn()
			}()
		case <-l.done:
			return
		}
	}
}

// call runs fn on the loop and waits for its result.
func (l *loop) call(fn func() (*daemon.StatePayload, error)) (*daemon.StatePayload, error) {
	type result struct {
		state *daemon.StatePayload
		err   error
	}
	reply := make(chan result, 1)
	l.post(func() {
		st, err := fn()
		reply <- result{st, err}
	})
	select {
	case r := <-reply:
		return r.state, r.err
	case <-l.done:
		return nil, errShuttingDown
	}
}

func watchConfig(l *loop, path string, reload func(*config.Config)) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Editors replace the file, so watch its directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}
	go func() {
		defer recoverAndLog("config-watch")
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				cfg, err := config.LoadConfig(path)
				if err != nil {
					debugLog.Printf("config reload: %v", err)
					continue
				}
				l.post(func() { reload(cfg) })
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				debugLog.Printf("config watch: %v", err)
			}
		}
	}()
	return watcher, nil
}

func main() {
	flag.Parse()

	if *sessionID == "" {
		if id, err := tmux.CurrentSessionID(); err == nil {
			*sessionID = id
		}
	}
	defaultConfig := *configPath == ""
	if defaultConfig {
		*configPath = paths.ConfigPath()
	}

	crashLog = openLog(*sessionID, "crash", "")
	eventLog = openLog(*sessionID, "events", "[event] ")
	defer recoverAndLog("main")

	if *debugMode {
		debugLog = log.New(os.Stderr, "[daemon] ", log.LstdFlags|log.Lmicroseconds)
	} else {
		debugLog = log.New(os.Stderr, "", 0)
	}

	if defaultConfig {
		if _, err := paths.EnsureConfigDir(); err != nil {
			debugLog.Printf("config dir: %v", err)
		}
	}

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	l := newLoop()
	sess := newSession(cfg, prefs.Default(), timers.WallClock, l.post, eventLog)

	server := daemon.NewServer(*sessionID)
	sess.broadcast = server.BroadcastState
	server.OnMessage = func(clientID string, msg daemon.Message) (*daemon.StatePayload, error) {
		logEvent("MSG client=%s type=%s window=%s", clientID, msg.Type, msg.Window)
		return l.call(func() (*daemon.StatePayload, error) {
			return sess.handle(clientID, msg)
		})
	}

	if err := server.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
	debugLog.Printf("Server listening on %s", server.GetSocketPath())
	logEvent("DAEMON_START session=%s pid=%d", *sessionID, os.Getpid())

	go l.run()

	if watcher, err := watchConfig(l, *configPath, sess.reload); err != nil {
		debugLog.Printf("config watch disabled: %v", err)
	} else {
		defer watcher.Close()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	<-sigCh

	debugLog.Printf("Shutting down daemon")
	logEvent("DAEMON_STOP session=%s pid=%d", *sessionID, os.Getpid())
	close(l.done)
	server.Stop()
	<-l.exited
	sess.stop()
}
