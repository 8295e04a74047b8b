package event

import "sync"

// Queue buffers events between the host's event callbacks and the render
// tick. The host pushes from its platform callbacks; the renderer drains
// once per frame. Push and Drain may run on different goroutines (browser
// hosts deliver callbacks on the same thread, native hosts may not), so
// the queue locks internally.
type Queue struct {
	mu     sync.Mutex
	events []Event
}

// NewQueue creates an empty event queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends an event to the queue.
func (q *Queue) Push(e Event) {
	q.mu.Lock()
	q.events = append(q.events, e)
	q.mu.Unlock()
}

// Drain returns all buffered events in arrival order and empties the
// queue. The returned slice is owned by the caller.
func (q *Queue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) == 0 {
		return nil
	}
	out := q.events
	q.events = nil
	return out
}

// Len returns the number of buffered events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
