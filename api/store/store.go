package store

import (
	"github.com/pkg/errors"

	"gitlab.uncharted.software/WM/wm-ingest-queue/api/model"
)

var (
	// ErrNotFound indicates a lookup for an unknown request or batch ID.
	ErrNotFound = errors.New("unknown identifier")
	// ErrDuplicateID indicates an attempt to register an already-registered
	// ID. IDs are generated, so hitting this is a programming defect.
	ErrDuplicateID = errors.New("identifier already registered")
	// ErrInvalidTransition indicates a status update that would skip or
	// reverse the batch lifecycle. Like ErrDuplicateID this is a defect in
	// the caller, not a client error.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// StatusStore owns the authoritative status of every ingestion request and
// batch. Implementations serialize their own mutations so concurrent readers
// always observe a consistent snapshot.
type StatusStore interface {
	// CreateRequest atomically registers a request and all of its batches.
	CreateRequest(request *model.IngestionRequest, batches []*model.Batch) error
	// UpdateBatchStatus moves a batch forward through its lifecycle,
	// rejecting skips and regressions with ErrInvalidTransition.
	UpdateBatchStatus(batchID string, next model.Status) error
	// GetRequestStatus returns the aggregate and per-batch status for a
	// request as one consistent snapshot.
	GetRequestStatus(requestID string) (*model.RequestStatusView, error)
	// Close releases any resources held by the store.
	Close() error
}

// statusView projects a request's batches into the client-facing response.
// Callers must hold whatever lock or transaction makes the batch slice a
// consistent snapshot.
func statusView(requestID string, batches []*model.Batch) *model.RequestStatusView {
	views := make([]model.BatchStatusView, len(batches))
	statuses := make([]model.Status, len(batches))
	for i, batch := range batches {
		views[i] = model.BatchStatusView{
			BatchID: batch.ID,
			IDs:     batch.IDs,
			Status:  batch.Status,
		}
		statuses[i] = batch.Status
	}
	return &model.RequestStatusView{
		RequestID: requestID,
		Status:    model.Aggregate(statuses),
		Batches:   views,
	}
}
