package search

import (
	"sync"
	"time"
)

// Debounce delay bounds
const (
	MinDelay     = 300 * time.Millisecond
	MaxDelay     = 500 * time.Millisecond
	DefaultDelay = 400 * time.Millisecond
)

// ClampDelay keeps d within [MinDelay, MaxDelay]. Zero selects the default.
func ClampDelay(d time.Duration) time.Duration {
	switch {
	case d == 0:
		return DefaultDelay
	case d < MinDelay:
		return MinDelay
	case d > MaxDelay:
		return MaxDelay
	}
	return d
}

// Debouncer calls fn with the most recent value once no new value has
// arrived for the delay. Every Trigger restarts the wait.
type Debouncer[T any] struct {
	delay time.Duration
	fn    func(T)

	mu     sync.Mutex
	timer  *time.Timer
	closed bool
	wg     sync.WaitGroup
}

// NewDebouncer creates a debouncer; delay is clamped with ClampDelay
func NewDebouncer[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{delay: ClampDelay(delay), fn: fn}
}

// Delay returns the effective delay
func (d *Debouncer[T]) Delay() time.Duration {
	return d.delay
}

// Trigger schedules fn(v), replacing any pending call
func (d *Debouncer[T]) Trigger(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.stopLocked()
	d.wg.Add(1)
	d.timer = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		d.fn(v)
	})
}

// Cancel drops the pending call, if any
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

// Close cancels the pending call and waits for a running one to return.
// Trigger is a no-op afterwards.
func (d *Debouncer[T]) Close() {
	d.mu.Lock()
	d.closed = true
	d.stopLocked()
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Debouncer[T]) stopLocked() {
	if d.timer != nil && d.timer.Stop() {
		d.wg.Done()
	}
	d.timer = nil
}
