package server

import (
	"sync"
	"time"
)

// FunctionDelayer debounces calls by key.  A FHIR server notifies the subscription hook once per changed resource,
// so a batch of new vitals for one patient arrives as a burst of requests; the delayer turns the burst into one
// recalculation.  Delay schedules fn to run after Duration; if the key is already scheduled, its timer restarts
// and the originally scheduled function is the one that eventually runs.
type FunctionDelayer struct {
	sync.Mutex
	Duration time.Duration
	timers   map[string]*time.Timer
	stopped  bool
}

// NewFunctionDelayer creates a new FunctionDelayer with the specified duration.
func NewFunctionDelayer(duration time.Duration) *FunctionDelayer {
	return &FunctionDelayer{
		Duration: duration,
		timers:   make(map[string]*time.Timer),
	}
}

// Delay schedules fn to be called once Duration has elapsed without another Delay for the same key.  Calls made
// after Stop are ignored.
func (f *FunctionDelayer) Delay(key string, fn func()) {
	f.Lock()
	defer f.Unlock()
	f.schedule(key, fn)
}

// schedule does the work of Delay; f must be locked.
func (f *FunctionDelayer) schedule(key string, fn func()) {
	if f.stopped {
		return
	}
	if t, ok := f.timers[key]; ok && t.Stop() {
		t.Reset(f.Duration)
		return
	}
	// no timer, or it already fired.  Resetting a fired timer would run fn again.
	var t *time.Timer
	t = time.AfterFunc(f.Duration, func() {
		f.Lock()
		// a later Delay may have replaced this timer while it waited for the lock
		if f.timers[key] == t {
			delete(f.timers, key)
		}
		f.Unlock()
		fn()
	})
	f.timers[key] = t
}

// Pending returns the number of keys waiting to fire.
func (f *FunctionDelayer) Pending() int {
	f.Lock()
	defer f.Unlock()
	return len(f.timers)
}

// Stop cancels every scheduled call and returns how many were cancelled.
func (f *FunctionDelayer) Stop() int {
	f.Lock()
	defer f.Unlock()

	f.stopped = true
	cancelled := 0
	for key, t := range f.timers {
		if t.Stop() {
			cancelled++
		}
		delete(f.timers, key)
	}
	return cancelled
}
