package store

import (
	"sync"

	"github.com/pkg/errors"

	"gitlab.uncharted.software/WM/wm-ingest-queue/api/model"
)

type requestRecord struct {
	request *model.IngestionRequest
	// batches in split order, so status responses line up with the
	// original ID list
	batches []*model.Batch
}

// MemoryStore is the default StatusStore. All state is process-local and lost
// on restart.
type MemoryStore struct {
	mutex    *sync.RWMutex
	requests map[string]*requestRecord
	// batch ID -> owning record, so batch updates skip a request scan
	batches map[string]*model.Batch
}

// NewMemoryStore instantiates an empty in-memory status store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mutex:    &sync.RWMutex{},
		requests: make(map[string]*requestRecord),
		batches:  make(map[string]*model.Batch),
	}
}

// CreateRequest implements StatusStore.
func (s *MemoryStore) CreateRequest(request *model.IngestionRequest, batches []*model.Batch) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.requests[request.ID]; ok {
		return errors.Wrapf(ErrDuplicateID, "ingestion request %s", request.ID)
	}
	for _, batch := range batches {
		if _, ok := s.batches[batch.ID]; ok {
			return errors.Wrapf(ErrDuplicateID, "batch %s", batch.ID)
		}
	}

	s.requests[request.ID] = &requestRecord{request: request, batches: batches}
	for _, batch := range batches {
		s.batches[batch.ID] = batch
	}
	return nil
}

// UpdateBatchStatus implements StatusStore.
func (s *MemoryStore) UpdateBatchStatus(batchID string, next model.Status) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	batch, ok := s.batches[batchID]
	if !ok {
		return errors.Wrapf(ErrNotFound, "batch %s", batchID)
	}
	if !model.ValidTransition(batch.Status, next) {
		return errors.Wrapf(ErrInvalidTransition, "batch %s cannot move from %s to %s", batchID, batch.Status, next)
	}
	batch.Status = next
	return nil
}

// GetRequestStatus implements StatusStore.
func (s *MemoryStore) GetRequestStatus(requestID string) (*model.RequestStatusView, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	record, ok := s.requests[requestID]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "ingestion request %s", requestID)
	}
	return statusView(requestID, record.batches), nil
}

// Close implements StatusStore. The in-memory store holds no resources.
func (s *MemoryStore) Close() error {
	return nil
}
