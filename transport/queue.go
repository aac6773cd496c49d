package transport

import "sync"

// OutgoingQueue is the FIFO of outgoing frame groups awaiting injection at
// the next broadcast-data tick. A group is either a single acknowledged
// frame or every packet of one burst transfer, popped atomically: the
// queue never hands back a partial burst.
type OutgoingQueue struct {
	mu     sync.Mutex
	groups [][][]byte
}

// NewOutgoingQueue creates an empty queue.
func NewOutgoingQueue() *OutgoingQueue {
	return &OutgoingQueue{}
}

// Enqueue appends one group (a single-frame slice for an acknowledged send,
// or the full ordered packet list for a burst send) to the tail of the
// queue.
func (q *OutgoingQueue) Enqueue(group [][]byte) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.groups = append(q.groups, group)
}

// Pop removes and returns the head group, if any.
func (q *OutgoingQueue) Pop() ([][]byte, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.groups) == 0 {
		return nil, false
	}
	group := q.groups[0]
	q.groups = q.groups[1:]
	return group, true
}

// Len reports the number of groups currently queued.
func (q *OutgoingQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.groups)
}
