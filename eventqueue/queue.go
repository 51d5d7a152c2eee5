// Package eventqueue implements the simulation kernel's priority queue
// (spec §4.1): a min-heap over (timestamp, insertion sequence) so that
// events with identical timestamps fire in scheduling order. It generalizes
// LarryRuane-minesim's container/heap-backed eventlist (a single
// event{to, mining, when, bid} struct) to the four-way tagged union of
// spec §4.9, keeping the queue value-typed so a dispatched Event is cheap
// to log or replay.
package eventqueue

import "container/heap"

// Kind tags which of the four event shapes an Event carries (spec §4.9 /
// §9 "Polymorphic event callbacks").
type Kind int

const (
	GenerateTxn Kind = iota
	DeliverTxn
	MineComplete
	DeliverBlock
)

func (k Kind) String() string {
	switch k {
	case GenerateTxn:
		return "GenerateTxn"
	case DeliverTxn:
		return "DeliverTxn"
	case MineComplete:
		return "MineComplete"
	case DeliverBlock:
		return "DeliverBlock"
	default:
		return "Unknown"
	}
}

// Event is a scheduled occurrence. Payload is one of the kind-specific
// structs defined by the peer/simulator packages (e.g. peer.DeliverTxnPayload);
// the simulator's dispatch loop type-switches on it. Keeping Payload as
// interface{} here (rather than importing the peer package, which would
// create an import cycle since peer schedules events on this queue) mirrors
// the teacher's own event.TypeMux, whose Post(interface{}) accepts an
// arbitrary event value dispatched by subscribers' own type switches.
type Event struct {
	When    float64
	Kind    Kind
	Payload interface{}

	seq int // insertion sequence, the queue's stable tie-break
}

// Queue is a min-heap of scheduled Events ordered by (When, seq).
type Queue struct {
	h    eventHeap
	next int
}

// New returns an empty Queue.
func New() *Queue {
	q := &Queue{}
	heap.Init(&q.h)
	return q
}

// Push schedules ev, stamping it with the next insertion sequence number so
// that equal-When events stay FIFO (spec §4.1, §5).
func (q *Queue) Push(ev Event) {
	ev.seq = q.next
	q.next++
	heap.Push(&q.h, ev)
}

// Pop removes and returns the event with the smallest (When, seq). ok is
// false if the queue is empty.
func (q *Queue) Pop() (Event, bool) {
	if q.h.Len() == 0 {
		return Event{}, false
	}
	return heap.Pop(&q.h).(Event), true
}

// Len reports the number of scheduled events.
func (q *Queue) Len() int { return q.h.Len() }

// Peek returns the next event without removing it.
func (q *Queue) Peek() (Event, bool) {
	if q.h.Len() == 0 {
		return Event{}, false
	}
	return q.h[0], true
}

type eventHeap []Event

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].When != h[j].When {
		return h[i].When < h[j].When
	}
	return h[i].seq < h[j].seq
}
func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x interface{}) {
	*h = append(*h, x.(Event))
}

func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
