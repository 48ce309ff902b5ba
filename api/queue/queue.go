package queue

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"gitlab.uncharted.software/WM/wm-ingest-queue/api/model"
)

// ErrQueueClosed is returned for any operation against a closed queue,
// including dequeues that were blocked when the queue closed.
var ErrQueueClosed = errors.New("batch queue closed")

// QueueEntry is the scheduling view of a batch: just enough to order it for
// dispatch and hand it to a processor. Batch status lives in the status
// store, never here.
type QueueEntry struct {
	BatchID   string
	RequestID string
	IDs       []int64
	Priority  model.Priority
	CreatedAt time.Time

	// insertion sequence, assigned on enqueue; breaks created_at ties so
	// ordering stays stable
	seq uint64
}

// BatchQueue is the pending-batch container serviced by the dispatcher.
// Implementations must be safe for concurrent use from request handlers and
// dispatch workers.
type BatchQueue interface {
	// Enqueue adds an entry. The queue is unbounded; the only failure mode
	// is enqueueing after Close.
	Enqueue(entry *QueueEntry) error
	// Dequeue removes and returns the highest-priority entry, blocking while
	// the queue is empty. It returns early with the context error when ctx is
	// cancelled, and with ErrQueueClosed when the queue closes.
	Dequeue(ctx context.Context) (*QueueEntry, error)
	// Size returns the number of entries currently waiting.
	Size() int
	// GetAll returns a snapshot of the waiting entries in dispatch order.
	GetAll() []*QueueEntry
	// Clear drops all waiting entries.
	Clear() error
	// Close permanently shuts the queue down and wakes blocked dequeuers.
	Close() error
}
