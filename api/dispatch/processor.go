package dispatch

import (
	"context"
	"time"
)

// Processor hands one batch of record IDs to the downstream ingestion
// backend. Process returns once the backend has accepted or rejected the
// batch - tracking the batch through the rest of its lifecycle downstream is
// not the queue's job.
type Processor interface {
	Process(ctx context.Context, batchID string, ids []int64) error
}

// SimulatedProcessor stands in for a real ingestion backend in development
// and tests, sleeping for a fixed interval per record ID.
type SimulatedProcessor struct {
	delay time.Duration
}

// NewSimulatedProcessor creates a simulated backend with the given per-ID
// delay.
func NewSimulatedProcessor(delay time.Duration) *SimulatedProcessor {
	return &SimulatedProcessor{delay: delay}
}

// Process implements Processor.
func (p *SimulatedProcessor) Process(ctx context.Context, batchID string, ids []int64) error {
	for range ids {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.delay):
		}
	}
	return nil
}
