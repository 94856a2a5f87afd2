// Package debounce delays propagation of rapidly-changing values, e.g. the
// catalog filter set while the user is still typing.
package debounce

import (
	"sync"
	"time"
)

// Debouncer emits the latest pushed value once no new value has arrived for
// the window. A single timer covers the whole value, so editing two fields
// back to back restarts the one timer for the combined value.
type Debouncer[T any] struct {
	window time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	latest  T
	seq     uint64
	stopped bool
	out     chan T
}

func New[T any](window time.Duration) *Debouncer[T] {
	return &Debouncer[T]{
		window: window,
		out:    make(chan T, 1),
	}
}

// Push records v as the latest value and restarts the quiet-window timer.
// Values pushed faster than the window are never emitted.
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.latest = v
	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() { d.emit(seq) })
}

// C delivers debounced values. The channel holds at most one pending value;
// a newer emission replaces an unconsumed older one, so a slow consumer only
// ever sees the latest state.
func (d *Debouncer[T]) C() <-chan T {
	return d.out
}

// Stop halts future emissions. Values already delivered on C remain readable.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}

func (d *Debouncer[T]) emit(seq uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	// A push racing the timer callback bumps seq; the superseded emission
	// must not fire before the new quiet window ends.
	if d.stopped || seq != d.seq {
		return
	}

	// Replace any unconsumed pending value with the latest one.
	select {
	case <-d.out:
	default:
	}
	d.out <- d.latest
}
