// Package notify relays printer events to live subscribers. Delivery is
// best-effort: the queue keeps only the most recent events and anything not
// drained before it is overwritten is lost.
package notify

import (
	"sync"
	"time"
)

// EventPrinterAlert is the type of events raised by the fleet monitor.
const EventPrinterAlert = "printer_alert"

// Event is one notification.
type Event struct {
	Type      string    `json:"type"`
	DeviceID  string    `json:"printer_id"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Queue is a bounded, mutex-guarded buffer of pending events.
type Queue struct {
	mu      sync.Mutex
	size    int
	pending []Event
	dropped uint64
}

// NewQueue creates a queue holding at most size events. Sizes below one
// are raised to one.
func NewQueue(size int) *Queue {
	if size < 1 {
		size = 1
	}
	return &Queue{size: size, pending: make([]Event, 0, size)}
}

// Publish appends an event, discarding the oldest when full. It never
// blocks on subscribers.
func (q *Queue) Publish(e Event) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, e)
	if over := len(q.pending) - q.size; over > 0 {
		q.pending = append(q.pending[:0:0], q.pending[over:]...)
		q.dropped += uint64(over)
		eventsDroppedTotal.Add(float64(over))
	}
	return nil
}

// Drain removes and returns all pending events in publish order.
func (q *Queue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	out := q.pending
	q.pending = make([]Event, 0, q.size)
	return out
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Dropped returns how many events were discarded because the queue was full.
func (q *Queue) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
