package queue

import (
	"container/heap"
	"container/list"
	"context"
	"sort"
	"sync"
)

// entryHeap orders entries by priority rank, then created_at, then insertion
// sequence. The minimum element is always the next batch to dispatch.
type entryHeap []*QueueEntry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
		return ra < rb
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.seq < b.seq
}

func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *entryHeap) Push(x interface{}) {
	*h = append(*h, x.(*QueueEntry))
}

func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil // avoid memory leak
	*h = old[0 : n-1]
	return entry
}

// PriorityQueue is an unbounded in-memory BatchQueue. Entries come out in
// (priority rank, created_at, insertion order); dequeuers park on a FIFO
// waiter list while the queue is empty, so an arriving entry is handed to the
// longest-waiting consumer.
type PriorityQueue struct {
	mutex   *sync.RWMutex
	entries entryHeap
	waiters *list.List // of chan *QueueEntry
	nextSeq uint64
	closed  bool
}

// NewPriorityQueue creates an empty queue that is immediately ready for
// concurrent enqueues and dequeues.
func NewPriorityQueue() *PriorityQueue {
	return &PriorityQueue{
		mutex:   &sync.RWMutex{},
		waiters: list.New(),
	}
}

// Enqueue adds an entry to the queue. If a dequeuer is parked the entry is
// handed straight to it - the heap is necessarily empty in that case, so the
// handoff cannot skip a higher-priority entry.
func (q *PriorityQueue) Enqueue(entry *QueueEntry) error {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	entry.seq = q.nextSeq
	q.nextSeq++

	if front := q.waiters.Front(); front != nil {
		q.waiters.Remove(front)
		// buffered and waiter-owned, never blocks
		front.Value.(chan *QueueEntry) <- entry
		return nil
	}

	heap.Push(&q.entries, entry)
	return nil
}

// Dequeue removes and returns the minimum entry, blocking while the queue is
// empty. A cancelled context aborts the wait without consuming an entry;
// an entry handed over in the same instant is still returned rather than
// dropped.
func (q *PriorityQueue) Dequeue(ctx context.Context) (*QueueEntry, error) {
	q.mutex.Lock()
	if q.closed {
		q.mutex.Unlock()
		return nil, ErrQueueClosed
	}
	if err := ctx.Err(); err != nil {
		q.mutex.Unlock()
		return nil, err
	}
	if q.entries.Len() > 0 {
		entry := heap.Pop(&q.entries).(*QueueEntry)
		q.mutex.Unlock()
		return entry, nil
	}

	// queue is empty - park until an enqueue hands us an entry
	ch := make(chan *QueueEntry, 1)
	elem := q.waiters.PushBack(ch)
	q.mutex.Unlock()

	select {
	case entry := <-ch:
		if entry == nil {
			return nil, ErrQueueClosed
		}
		return entry, nil
	case <-ctx.Done():
		q.mutex.Lock()
		// an enqueue may have delivered concurrently with the cancellation;
		// prefer the entry over the error so it is not lost
		select {
		case entry := <-ch:
			q.mutex.Unlock()
			if entry == nil {
				return nil, ErrQueueClosed
			}
			return entry, nil
		default:
		}
		q.waiters.Remove(elem)
		q.mutex.Unlock()
		return nil, ctx.Err()
	}
}

// Size returns the number of entries currently waiting.
func (q *PriorityQueue) Size() int {
	q.mutex.RLock()
	defer q.mutex.RUnlock()
	return q.entries.Len()
}

// GetAll returns a snapshot of the waiting entries in dispatch order.
func (q *PriorityQueue) GetAll() []*QueueEntry {
	q.mutex.RLock()
	snapshot := make([]*QueueEntry, len(q.entries))
	copy(snapshot, q.entries)
	q.mutex.RUnlock()

	sort.Slice(snapshot, func(i, j int) bool {
		return entryHeap(snapshot).Less(i, j)
	})
	return snapshot
}

// Clear drops all waiting entries. Parked dequeuers stay parked.
func (q *PriorityQueue) Clear() error {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	q.entries = nil
	return nil
}

// Close shuts the queue down and wakes every parked dequeuer with
// ErrQueueClosed. Further operations fail.
func (q *PriorityQueue) Close() error {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	q.closed = true
	for front := q.waiters.Front(); front != nil; front = q.waiters.Front() {
		q.waiters.Remove(front)
		close(front.Value.(chan *QueueEntry))
	}
	return nil
}
