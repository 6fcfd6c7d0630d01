// Package perf records how long layout and transition work takes.
// Set AUTOHIDE_PERF=1 to append timings to /tmp/tmux-autohide-perf.log.
package perf

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

const logPath = "/tmp/tmux-autohide-perf.log"

var (
	mu  sync.Mutex
	out io.Writer
)

func init() {
	if os.Getenv("AUTOHIDE_PERF") != "1" {
		return
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return
	}
	out = f
}

// SetOutput redirects timing output. Passing nil disables it.
func SetOutput(w io.Writer) {
	mu.Lock()
	out = w
	mu.Unlock()
}

// Enabled reports whether timings are being written.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return out != nil
}

// Span measures one named operation.
type Span struct {
	name  string
	start time.Time
}

// Begin starts a span.
func Begin(name string) Span {
	return Span{name: name, start: time.Now()}
}

// End records the span and returns its duration.
func (s Span) End() time.Duration {
	elapsed := time.Since(s.start)
	Logf("%s: %v", s.name, elapsed)
	return elapsed
}

// Logf writes a timestamped line when timing output is enabled.
func Logf(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if out == nil {
		return
	}
	fmt.Fprintf(out, "%s: %s\n", time.Now().Format("15:04:05.000"), fmt.Sprintf(format, args...))
}
