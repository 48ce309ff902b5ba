package queue

import (
	"encoding/gob"
	"os"
	"path"
	"reflect"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/uncharted-causemos/dque"

	"gitlab.uncharted.software/WM/wm-ingest-queue/api/model"
)

const deadLetterSegmentSize = 50

// FailedBatch records a batch the dispatcher gave up on, with enough context
// to resubmit its IDs later.
type FailedBatch struct {
	BatchID   string
	RequestID string
	IDs       []int64
	Priority  model.Priority
	Reason    string
	FailedAt  time.Time
}

func failedBatchBuilder() interface{} {
	return &FailedBatch{}
}

// DeadLetterQueue is an on-disk FIFO of failed batches backed by dque, so the
// record of failures survives a restart. Unlike the dispatch queue it has no
// ordering requirement beyond arrival order.
type DeadLetterQueue struct {
	queue *dque.DQue
	mutex *sync.Mutex
}

// NewDeadLetterQueue opens the dead letter queue at dir/name, creating it if
// it does not exist yet.
func NewDeadLetterQueue(dir string, name string) (*DeadLetterQueue, error) {
	// dque stores entries with gob, which requires a one-time registration
	// of the stored type
	gob.Register(&FailedBatch{})

	queuePath := path.Join(dir, name)

	var queue *dque.DQue
	if _, err := os.Stat(queuePath); err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to stat dead letter queue %s", queuePath)
		}
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, errors.Wrapf(err, "failed to create dead letter queue dir %s", dir)
		}
		queue, err = dque.New(name, dir, deadLetterSegmentSize, failedBatchBuilder)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to initialize dead letter queue %s", queuePath)
		}
	} else {
		queue, err = dque.Open(name, dir, deadLetterSegmentSize, failedBatchBuilder)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load dead letter queue %s", queuePath)
		}
	}

	return &DeadLetterQueue{
		queue: queue,
		mutex: &sync.Mutex{},
	}, nil
}

// Append records a failed batch at the back of the queue.
func (d *DeadLetterQueue) Append(failed *FailedBatch) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	return errors.Wrapf(d.queue.Enqueue(failed), "failed to dead-letter batch %s", failed.BatchID)
}

// failedBatchCollector gathers queue contents during an ApplyToQueue pass.
type failedBatchCollector struct {
	batches []*FailedBatch
}

// Apply is called on each element of the queue when its contents are read.
func (c *failedBatchCollector) Apply(entry interface{}) error {
	failed, ok := entry.(*FailedBatch)
	if !ok {
		return errors.Errorf("unexpected type %s in dead letter queue", reflect.TypeOf(entry))
	}
	c.batches = append(c.batches, failed)
	return nil
}

// GetAll returns the queue contents oldest-first without consuming them.
func (d *DeadLetterQueue) GetAll() ([]*FailedBatch, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	collector := failedBatchCollector{batches: make([]*FailedBatch, 0, d.queue.Size())}
	if err := d.queue.ApplyToQueue(&collector); err != nil {
		return nil, errors.Wrap(err, "failed to read dead letter queue")
	}
	return collector.batches, nil
}

// Drain removes and returns every queued failure, oldest first.
func (d *DeadLetterQueue) Drain() ([]*FailedBatch, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	count := d.queue.Size()
	drained := make([]*FailedBatch, 0, count)
	for i := 0; i < count; i++ {
		entry, err := d.queue.Dequeue()
		if err != nil {
			return drained, errors.Wrap(err, "failed to drain dead letter queue")
		}
		failed, ok := entry.(*FailedBatch)
		if !ok {
			return drained, errors.Errorf("unexpected type %s in dead letter queue", reflect.TypeOf(entry))
		}
		drained = append(drained, failed)
	}
	return drained, nil
}

// Size returns the number of recorded failures.
func (d *DeadLetterQueue) Size() int {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.queue.Size()
}

// Clear drops all recorded failures.
func (d *DeadLetterQueue) Clear() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	// the underlying queue has no clear operation so drain it iteratively
	count := d.queue.Size()
	for i := 0; i < count; i++ {
		if _, err := d.queue.Dequeue(); err != nil {
			return errors.Wrap(err, "failed to clear dead letter queue")
		}
	}
	return nil
}

// Close flushes queue state to disk and disallows further operations.
func (d *DeadLetterQueue) Close() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return errors.Wrap(d.queue.Close(), "failed to close dead letter queue")
}
