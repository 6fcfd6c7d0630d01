// Package timers provides named, cancelable delayed-action slots.
//
// Each slot holds at most one pending action. Scheduling into a slot that
// already has a pending action replaces it, so the most recent call always
// wins. Fired actions are handed to a Dispatcher, which lets the owner run
// them on its own event loop instead of on the timer goroutine.
package timers

import (
	"sync"
	"time"
)

// Handle is a pending timer that can be stopped before it fires.
type Handle interface {
	Stop() bool
}

// Scheduler runs f once after d has elapsed.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Handle
}

// Dispatcher runs a fired action. A nil Dispatcher runs it inline on the
// goroutine that fired the timer.
type Dispatcher func(run func())

type wallClock struct{}

func (wallClock) AfterFunc(d time.Duration, f func()) Handle {
	return time.AfterFunc(d, f)
}

// WallClock schedules with time.AfterFunc.
var WallClock Scheduler = wallClock{}

type slot struct {
	handle Handle
	gen    uint64
}

// Registry owns a set of named slots.
type Registry struct {
	mu       sync.Mutex
	sched    Scheduler
	dispatch Dispatcher
	slots    map[string]*slot
}

// NewRegistry creates a registry. sched defaults to WallClock.
func NewRegistry(sched Scheduler, dispatch Dispatcher) *Registry {
	if sched == nil {
		sched = WallClock
	}
	return &Registry{
		sched:    sched,
		dispatch: dispatch,
		slots:    make(map[string]*slot),
	}
}

// Declare creates empty slots up front. Scheduling into an undeclared slot
// creates it on demand, so this only makes the slot set visible early.
func (r *Registry) Declare(names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range names {
		r.slotLocked(name)
	}
}

// Slots returns the names of all known slots.
func (r *Registry) Slots() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.slots))
	for name := range r.slots {
		names = append(names, name)
	}
	return names
}

// Schedule cancels whatever is pending under name, then arranges for action
// to run after delay.
func (r *Registry) Schedule(name string, delay time.Duration, action func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.slotLocked(name)
	r.stopLocked(s)
	gen := s.gen
	s.handle = r.sched.AfterFunc(delay, func() {
		r.fire(name, gen, action)
	})
}

// Cancel drops the pending action under name, if any.
func (r *Registry) Cancel(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.slots[name]; ok {
		r.stopLocked(s)
	}
}

// Pending reports whether name has an action waiting to fire.
func (r *Registry) Pending(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[name]
	return ok && s.handle != nil
}

// Stop cancels every pending action.
func (r *Registry) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.slots {
		r.stopLocked(s)
	}
}

func (r *Registry) slotLocked(name string) *slot {
	s, ok := r.slots[name]
	if !ok {
		s = &slot{}
		r.slots[name] = s
	}
	return s
}

// stopLocked bumps the generation even when there is no live handle, so a
// run that was already handed to the dispatcher is recognised as stale.
func (r *Registry) stopLocked(s *slot) {
	if s.handle != nil {
		s.handle.Stop()
		s.handle = nil
	}
	s.gen++
}

func (r *Registry) fire(name string, gen uint64, action func()) {
	run := func() {
		r.mu.Lock()
		s, ok := r.slots[name]
		if !ok || s.gen != gen || s.handle == nil {
			r.mu.Unlock()
			return
		}
		s.handle = nil
		r.mu.Unlock()
		action()
	}
	if r.dispatch != nil {
		r.dispatch(run)
		return
	}
	run()
}
