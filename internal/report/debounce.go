package report

import (
	"sync"
	"time"
)

// EditDebounceDelay is how long manager edits to a locked report coalesce
// before being persisted.
const EditDebounceDelay = 600 * time.Millisecond

type stopFunc func() bool

// Debouncer schedules one pending task per key with cancel-and-replace
// semantics: a newer task for the same key cancels the older one, so only
// the trailing edit within the window is executed. The timer source is
// injectable so tests can fire tasks without real timers.
type Debouncer struct {
	delay time.Duration
	after func(time.Duration, func()) stopFunc

	mu      sync.Mutex
	pending map[string]stopFunc
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay: delay,
		after: func(d time.Duration, fn func()) stopFunc {
			return time.AfterFunc(d, fn).Stop
		},
		pending: make(map[string]stopFunc),
	}
}

// Schedule replaces any pending task for key with fn, to run after the
// debounce delay.
func (d *Debouncer) Schedule(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if stop, ok := d.pending[key]; ok {
		stop()
	}

	d.pending[key] = d.after(d.delay, func() {
		d.mu.Lock()
		delete(d.pending, key)
		d.mu.Unlock()
		fn()
	})
}

// Cancel drops the pending task for key, if any.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if stop, ok := d.pending[key]; ok {
		stop()
		delete(d.pending, key)
	}
}

// PendingCount reports how many keys have a scheduled task.
func (d *Debouncer) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
