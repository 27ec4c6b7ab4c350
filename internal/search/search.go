// Package search debounces keystroke-level query changes so the notes list
// is fetched once per pause in typing instead of once per key.
package search

import (
	"context"
	"sync"
	"time"
)

// DefaultQuiet is the pause after the last change before a query is emitted.
const DefaultQuiet = 300 * time.Millisecond

// Debouncer emits the latest pushed value once no new value has arrived for the quiet period.
//
// Only the most recent value is kept. Emitted values are delivered on [Debouncer.C].
type Debouncer struct {
	quiet time.Duration
	out   chan string

	mu      sync.Mutex
	timer   *time.Timer
	pending string
	gen     uint64
	stopped bool
}

// NewDebouncer creates a debouncer. A non-positive quiet uses [DefaultQuiet].
func NewDebouncer(quiet time.Duration) *Debouncer {
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	return &Debouncer{quiet: quiet, out: make(chan string, 1)}
}

// C delivers settled values.
func (d *Debouncer) C() <-chan string {
	return d.out
}

// Push records v and restarts the quiet period.
func (d *Debouncer) Push(v string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.pending = v
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
	}
	gen := d.gen
	d.timer = time.AfterFunc(d.quiet, func() { d.fire(gen) })
}

// fire emits the pending value unless a newer push superseded generation gen.
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped || gen != d.gen {
		return
	}
	// drop a stale, unread value so the newest one wins
	select {
	case <-d.out:
	default:
	}
	d.out <- d.pending
}

// Flush emits the pending value immediately, skipping the rest of the quiet period.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	pending := d.timer != nil && d.timer.Stop()
	gen := d.gen
	d.mu.Unlock()

	if pending {
		d.fire(gen)
	}
}

// Stop cancels any pending emission. Values pushed afterwards are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}

// Debounce reads raw values from in and forwards each value that is followed by a pause of quiet.
//
// The returned channel closes when ctx is done or in is closed. A value pending when in closes is still delivered.
func Debounce(ctx context.Context, in <-chan string, quiet time.Duration) <-chan string {
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	out := make(chan string)

	go func() {
		defer close(out)

		var (
			timer   *time.Timer
			timerC  <-chan time.Time
			pending string
			waiting bool
		)
		stop := func() {
			if timer != nil {
				timer.Stop()
			}
		}
		defer stop()

		emit := func(v string) bool {
			select {
			case out <- v:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-in:
				if !ok {
					if waiting {
						emit(pending)
					}
					return
				}
				pending, waiting = v, true
				stop()
				timer = time.NewTimer(quiet)
				timerC = timer.C
			case <-timerC:
				timerC = nil
				waiting = false
				if !emit(pending) {
					return
				}
			}
		}
	}()

	return out
}
