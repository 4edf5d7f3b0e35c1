package hotreload

import (
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DebounceWindow is how long a path must stay quiet before its events
// settle. Editors commonly perform several writes per logical save; without
// this, one save would trigger multiple redundant actions.
const DebounceWindow = time.Second

// Event is a settled filesystem event: one per path per window, with the
// union of the raw ops observed.
type Event struct {
	Path string
	Op   fsnotify.Op
}

// Debouncer coalesces raw filesystem events per path over a quiet window
// and delivers each settled batch to a handler.
type Debouncer struct {
	window  time.Duration
	handler func([]Event)

	mu      sync.Mutex
	pending map[string]fsnotify.Op
	timer   *time.Timer
	queue   [][]Event
	stopped bool

	wake chan struct{}
	done chan struct{}
}

// NewDebouncer creates a debouncer delivering settled batches to handler.
// All deliveries happen on one goroutine: the handler never runs
// concurrently with itself, and batches arrive in the order they settled,
// even when a delivery blocks.
func NewDebouncer(window time.Duration, handler func([]Event)) *Debouncer {
	d := &Debouncer{
		window:  window,
		handler: handler,
		pending: make(map[string]fsnotify.Op),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go d.deliver()
	return d
}

// Observe records one raw event. The first event of a batch starts the
// window; further events for the same path merge into one pending entry.
func (d *Debouncer) Observe(path string, op fsnotify.Op) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.pending[path] |= op
	if d.timer == nil {
		d.timer = time.AfterFunc(d.window, d.flush)
	}
}

// flush moves the pending batch onto the delivery queue and resets for the
// next window.
func (d *Debouncer) flush() {
	d.mu.Lock()
	if d.stopped || len(d.pending) == 0 {
		d.timer = nil
		d.mu.Unlock()
		return
	}

	batch := make([]Event, 0, len(d.pending))
	for path, op := range d.pending {
		batch = append(batch, Event{Path: path, Op: op})
	}
	d.pending = make(map[string]fsnotify.Op)
	d.timer = nil

	// Deterministic delivery order; map iteration is not.
	sort.Slice(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })
	d.queue = append(d.queue, batch)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// deliver is the single delivery goroutine. A blocked handler holds up
// later batches instead of running alongside them.
func (d *Debouncer) deliver() {
	for {
		select {
		case <-d.wake:
		case <-d.done:
			return
		}
		for {
			d.mu.Lock()
			if len(d.queue) == 0 {
				d.mu.Unlock()
				break
			}
			batch := d.queue[0]
			d.queue = d.queue[1:]
			d.mu.Unlock()

			d.handler(batch)
		}
	}
}

// Stop discards pending and queued events and prevents further delivery.
// Idempotent.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
	d.queue = nil
	close(d.done)
}
