package watch

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of change notifications for the same path into
// a single delayed trigger. Each new notification for a path cancels any
// pending trigger for that path and schedules a fresh one, so the callback
// fires only after a full quiet period.
type Debouncer struct {
	delay    time.Duration
	callback func(path string)

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// NewDebouncer creates a Debouncer that invokes callback for a path once no
// new notifications for it have arrived for the given delay.
func NewDebouncer(delay time.Duration, callback func(path string)) *Debouncer {
	return &Debouncer{
		delay:    delay,
		callback: callback,
		pending:  make(map[string]*time.Timer),
	}
}

// Trigger records activity for path. Any pending trigger for the same path
// is cancelled and replaced; at most one timer is live per path.
func (d *Debouncer) Trigger(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.pending[path]; ok {
		t.Stop()
	}
	d.pending[path] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		delete(d.pending, path)
		d.mu.Unlock()

		// Run outside the lock so a slow callback cannot stall new triggers.
		d.callback(path)
	})
}

// CancelAll stops every pending trigger. Used during shutdown to prevent
// callbacks from firing into a stopped worker.
func (d *Debouncer) CancelAll() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for path, t := range d.pending {
		t.Stop()
		delete(d.pending, path)
	}
}

// PendingCount returns the number of paths with a live trigger.
func (d *Debouncer) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
