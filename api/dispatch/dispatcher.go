package dispatch

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"gitlab.uncharted.software/WM/wm-ingest-queue/api/model"
	"gitlab.uncharted.software/WM/wm-ingest-queue/api/queue"
	"gitlab.uncharted.software/WM/wm-ingest-queue/api/store"
	"gitlab.uncharted.software/WM/wm-ingest-queue/config"
)

// BatchDispatcher services the batch queue in the background. Workers pull
// the highest-priority batch, wait for the shared rate limiter, then mark the
// batch triggered and hand it to the processor. A failed batch is recorded as
// failed and dead-lettered; the loop keeps going either way.
type BatchDispatcher struct {
	config.Config
	queue      queue.BatchQueue
	store      store.StatusStore
	processor  Processor
	limiter    *rate.Limiter
	deadLetter *queue.DeadLetterQueue

	mutex   *sync.RWMutex
	running bool
	cancel  context.CancelFunc
	wg      *sync.WaitGroup
}

// NewBatchDispatcher creates a new instance of a batch dispatcher. The rate
// limiter is shared across all workers so the downstream submission rate
// stays global regardless of parallelism.
func NewBatchDispatcher(cfg *config.Config, batchQueue queue.BatchQueue, statusStore store.StatusStore,
	processor Processor, limiter *rate.Limiter, deadLetter *queue.DeadLetterQueue) *BatchDispatcher {
	return &BatchDispatcher{
		Config: config.Config{
			Logger:      cfg.Logger,
			Environment: cfg.Environment,
		},
		queue:      batchQueue,
		store:      statusStore,
		processor:  processor,
		limiter:    limiter,
		deadLetter: deadLetter,
		mutex:      &sync.RWMutex{},
	}
}

// Start launches the dispatch workers. Calling Start on a running dispatcher
// is a no-op.
func (d *BatchDispatcher) Start() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	// workers are tracked per generation; a Stop that is still waiting on the
	// previous generation never waits on workers started here
	wg := &sync.WaitGroup{}
	d.cancel = cancel
	d.wg = wg
	d.running = true
	for i := 0; i < d.Environment.DispatchParallelism; i++ {
		wg.Add(1)
		go d.run(ctx, wg)
	}
	d.Logger.Infof("dispatcher started with %d worker(s)", d.Environment.DispatchParallelism)
}

// Stop halts dispatching and waits for in-flight batches to finish or abort.
// Batches still waiting in the queue are untouched and will be picked up by
// the next Start.
func (d *BatchDispatcher) Stop() {
	d.mutex.Lock()
	if !d.running {
		d.mutex.Unlock()
		return
	}
	d.running = false
	cancel := d.cancel
	wg := d.wg
	d.mutex.Unlock()

	cancel()
	wg.Wait()
	d.Logger.Info("dispatcher stopped")
}

// Running indicates whether or not the dispatch workers are currently up.
func (d *BatchDispatcher) Running() bool {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	return d.running
}

func (d *BatchDispatcher) run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		entry, err := d.queue.Dequeue(ctx)
		if err != nil {
			// cancelled or queue closed - either way this worker is done
			return
		}
		if err := d.limiter.Wait(ctx); err != nil {
			// shutdown raced the limiter - the batch was never triggered,
			// so put it back for the next start
			if enqueueErr := d.queue.Enqueue(entry); enqueueErr != nil {
				d.Logger.Errorf("dropping batch %s on shutdown: %+v", entry.BatchID, enqueueErr)
			}
			return
		}
		d.dispatch(ctx, entry)
	}
}

func (d *BatchDispatcher) dispatch(ctx context.Context, entry *queue.QueueEntry) {
	if err := d.store.UpdateBatchStatus(entry.BatchID, model.StatusTriggered); err != nil {
		// lifecycle is out of step with the queue, nothing sane to execute
		d.Logger.Errorf("failed to trigger batch %s: %+v", entry.BatchID, err)
		return
	}
	d.Logger.Infof("dispatching batch %s - request %s, %d ids, priority %s",
		entry.BatchID, entry.RequestID, len(entry.IDs), entry.Priority)

	if err := d.processor.Process(ctx, entry.BatchID, entry.IDs); err != nil {
		d.Logger.Errorf("batch %s failed: %+v", entry.BatchID, err)
		if statusErr := d.store.UpdateBatchStatus(entry.BatchID, model.StatusFailed); statusErr != nil {
			d.Logger.Errorf("failed to record failure of batch %s: %+v", entry.BatchID, statusErr)
		}
		failed := &queue.FailedBatch{
			BatchID:   entry.BatchID,
			RequestID: entry.RequestID,
			IDs:       entry.IDs,
			Priority:  entry.Priority,
			Reason:    err.Error(),
			FailedAt:  time.Now(),
		}
		if dlqErr := d.deadLetter.Append(failed); dlqErr != nil {
			d.Logger.Errorf("failed to dead-letter batch %s: %+v", entry.BatchID, dlqErr)
		}
		return
	}

	if err := d.store.UpdateBatchStatus(entry.BatchID, model.StatusCompleted); err != nil {
		d.Logger.Errorf("failed to record completion of batch %s: %+v", entry.BatchID, err)
	}
}
