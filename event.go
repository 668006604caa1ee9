package dtnsim

// event.go defines the tagged-variant Event type dispatched by the
// scheduler, and the min-heap that orders pending events by (time,
// insertion sequence). A tagged struct with an EventKind discriminant is
// used instead of an interface hierarchy, per the static-polymorphism
// design note: there is no virtual dispatch on the scheduler's hot path.

import "container/heap"

// EventKind discriminates the Event variant.
type EventKind int

const (
	MessageCreateEvent EventKind = iota
	TickEvent
	SimEndEvent
)

// Event is a time-stamped, tagged unit of scheduler work.
type Event struct {
	Kind EventKind
	Time float64

	// MessageCreate fields
	From HostID
	To   HostID
	Size int

	seq int // insertion order, for FIFO tie-break within equal Time
}

// eventHeap implements container/heap.Interface, min-ordered by (Time, seq)
// -- the same pattern the teacher's scheduler.go uses for reqSrvHeap, a
// min-priority heap over residual service requirements.
type eventHeap []*Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].Time != h[j].Time {
		return h[i].Time < h[j].Time
	}
	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(*Event))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// EventQueue is a min-heap of pending events, supporting O(log n) push/pop.
type EventQueue struct {
	h      eventHeap
	nextSeq int
}

// NewEventQueue builds an empty event queue.
func NewEventQueue() *EventQueue {
	q := &EventQueue{}
	heap.Init(&q.h)
	return q
}

// Push inserts an event, stamping it with the next insertion sequence so
// equal-time events remain FIFO.
func (q *EventQueue) Push(e *Event) {
	e.seq = q.nextSeq
	q.nextSeq++
	heap.Push(&q.h, e)
}

// Pop removes and returns the earliest-time (then earliest-inserted) event.
// ok is false if the queue is empty.
func (q *EventQueue) Pop() (*Event, bool) {
	if q.h.Len() == 0 {
		return nil, false
	}
	return heap.Pop(&q.h).(*Event), true
}

// Peek returns the earliest pending event without removing it.
func (q *EventQueue) Peek() (*Event, bool) {
	if q.h.Len() == 0 {
		return nil, false
	}
	return q.h[0], true
}

// Len reports the number of pending events.
func (q *EventQueue) Len() int {
	return q.h.Len()
}
