package search

import (
	"sync"
	"time"
)

// Debounce window bounds.
const (
	DefaultDebounce = 200 * time.Millisecond
	MinDebounce     = 150 * time.Millisecond
	MaxDebounce     = 300 * time.Millisecond
)

// ClampDebounce returns d limited to [MinDebounce, MaxDebounce]. Zero selects
// DefaultDebounce.
func ClampDebounce(d time.Duration) time.Duration {
	switch {
	case d == 0:
		return DefaultDebounce
	case d < MinDebounce:
		return MinDebounce
	case d > MaxDebounce:
		return MaxDebounce
	}
	return d
}

// Debouncer delays a computation until calls stop for one window. Each
// Schedule supersedes the previous one; a superseded computation that is
// already running never delivers its value.
type Debouncer[T any] struct {
	window time.Duration

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// NewDebouncer returns a debouncer with the clamped window.
func NewDebouncer[T any](window time.Duration) *Debouncer[T] {
	return &Debouncer[T]{window: ClampDebounce(window)}
}

// Window returns the effective delay.
func (d *Debouncer[T]) Window() time.Duration {
	return d.window
}

// Schedule runs compute after the window and passes its value to deliver,
// unless another Schedule or Cancel happened in the meantime. deliver runs
// with the debouncer locked and must not call back into it.
func (d *Debouncer[T]) Schedule(compute func() T, deliver func(T)) {
	d.ScheduleThen(compute, deliver, nil)
}

// ScheduleThen is Schedule with a hook that runs after a successful delivery
// once the debouncer is unlocked. then may call Schedule or Cancel.
func (d *Debouncer[T]) ScheduleThen(compute func() T, deliver func(T), then func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() {
		v := compute()

		d.mu.Lock()
		if gen != d.gen {
			d.mu.Unlock()
			return
		}
		deliver(v)
		d.mu.Unlock()

		if then != nil {
			then()
		}
	})
}

// Cancel drops any pending or running computation.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
