// Package ratelimit provides debounce and throttle primitives used to
// coalesce high-frequency change notifications.
//
// Both limiters carry the work itself: each Call supplies the function to
// run, and when calls are coalesced only the most recently supplied function
// fires. This matches how change notifications behave - the caller always
// wants the latest value delivered, never a stale intermediate one.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter is the common surface of Debouncer and Throttler.
type Limiter interface {
	// Call schedules fn according to the limiter's policy. When calls are
	// coalesced, the most recent fn wins.
	Call(fn func())

	// Flush runs any pending fn immediately and cancels its timer.
	Flush()

	// Cancel drops any pending fn without running it.
	Cancel()
}

// Debouncer delivers on the trailing edge: a pending call fires only after
// no new calls have arrived for the configured delay. Each new call resets
// the timer and replaces the pending function.
//
// Thread-safety: all methods are safe for concurrent use. The pending
// function is never invoked concurrently with itself from the debouncer.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending func()
	seq     uint64 // invalidates stale timer callbacks
}

// NewDebouncer creates a debouncer with the given quiet-period delay.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Call schedules fn after the debounce delay, replacing any pending call.
func (d *Debouncer) Call(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = fn
	d.seq++
	seq := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.fire(seq)
	})
}

func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	if d.seq != seq || d.pending == nil {
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()
	fn()
}

// Flush runs the pending call immediately, if any.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	fn := d.pending
	d.pending = nil
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Cancel drops the pending call without running it.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	d.pending = nil
}

// Pending reports whether a call is waiting to fire.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// SetDelay changes the quiet period. Takes effect starting with the next
// Call; an already-scheduled call keeps its original timing.
func (d *Debouncer) SetDelay(delay time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.delay = delay
}

// Throttler delivers at most one call per interval window. The first call in
// a fresh window fires immediately and opens the window; calls arriving
// mid-window are coalesced and the most recent one fires at the window
// boundary.
//
// Thread-safety: all methods are safe for concurrent use.
type Throttler struct {
	mu       sync.Mutex
	interval time.Duration
	lastFire time.Time
	timer    *time.Timer
	pending  func()
	seq      uint64 // invalidates stale timer callbacks
}

// NewThrottler creates a throttler with the given window interval.
func NewThrottler(interval time.Duration) *Throttler {
	return &Throttler{interval: interval}
}

// Call runs fn now if the current window has expired, otherwise holds fn
// (replacing any held call) until the window boundary.
func (t *Throttler) Call(fn func()) {
	t.mu.Lock()

	now := time.Now()
	if now.Sub(t.lastFire) >= t.interval {
		t.lastFire = now
		t.mu.Unlock()
		fn()
		return
	}

	t.pending = fn
	if t.timer == nil {
		remaining := t.interval - now.Sub(t.lastFire)
		t.seq++
		seq := t.seq
		t.timer = time.AfterFunc(remaining, func() {
			t.fireTrailing(seq)
		})
	}
	t.mu.Unlock()
}

func (t *Throttler) fireTrailing(seq uint64) {
	t.mu.Lock()
	t.timer = nil
	if t.seq != seq || t.pending == nil {
		t.mu.Unlock()
		return
	}
	fn := t.pending
	t.pending = nil
	t.lastFire = time.Now()
	t.mu.Unlock()
	fn()
}

// Flush runs the held trailing call immediately, if any.
func (t *Throttler) Flush() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.seq++
	fn := t.pending
	t.pending = nil
	if fn != nil {
		t.lastFire = time.Now()
	}
	t.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Cancel drops the held trailing call without running it.
func (t *Throttler) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.seq++
	t.pending = nil
}

// Pending reports whether a trailing call is waiting to fire.
func (t *Throttler) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending != nil
}

// SetInterval changes the window length. Takes effect starting with the next
// Call; an already-open window keeps its original boundary.
func (t *Throttler) SetInterval(interval time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.interval = interval
}

// Passthrough runs every call immediately. Used when no rate limiting is
// configured so callers can hold a Limiter unconditionally.
type Passthrough struct{}

// Call runs fn immediately.
func (Passthrough) Call(fn func()) { fn() }

// Flush is a no-op.
func (Passthrough) Flush() {}

// Cancel is a no-op.
func (Passthrough) Cancel() {}
