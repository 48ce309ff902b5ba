package ingest

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"gitlab.uncharted.software/WM/wm-ingest-queue/api/model"
	"gitlab.uncharted.software/WM/wm-ingest-queue/api/queue"
	"gitlab.uncharted.software/WM/wm-ingest-queue/api/store"
	"gitlab.uncharted.software/WM/wm-ingest-queue/config"
)

// ErrInvalidRequest flags a submission the service refuses to accept. Route
// handlers map it to a client error response.
var ErrInvalidRequest = errors.New("invalid ingestion request")

// Service accepts ingestion requests: it validates the submitted record IDs,
// splits them into batches, registers everything with the status store and
// queues the batches for dispatch.
type Service struct {
	config.Config
	queue queue.BatchQueue
	store store.StatusStore
}

// NewService creates a new instance of an ingestion service.
func NewService(cfg *config.Config, batchQueue queue.BatchQueue, statusStore store.StatusStore) *Service {
	return &Service{
		Config: config.Config{
			Logger:      cfg.Logger,
			Environment: cfg.Environment,
		},
		queue: batchQueue,
		store: statusStore,
	}
}

// Submit accepts a list of record IDs for ingestion at the given priority and
// returns the generated ingestion request ID. Batches become visible through
// Status before this returns.
func (s *Service) Submit(ids []int64, priority model.Priority) (string, error) {
	if err := s.validate(ids, priority); err != nil {
		return "", err
	}

	groups, err := SplitIDs(ids, s.Environment.IngestChunkSize)
	if err != nil {
		return "", err
	}

	requestID := uuid.NewString()
	created := time.Now()

	batches := make([]*model.Batch, 0, len(groups))
	batchIDs := make([]string, 0, len(groups))
	for _, group := range groups {
		batch := &model.Batch{
			ID:        uuid.NewString(),
			RequestID: requestID,
			IDs:       group,
			Priority:  priority,
			CreatedAt: created,
			Status:    model.StatusYetToStart,
		}
		batches = append(batches, batch)
		batchIDs = append(batchIDs, batch.ID)
	}
	request := &model.IngestionRequest{
		ID:        requestID,
		Priority:  priority,
		CreatedAt: created,
		BatchIDs:  batchIDs,
	}

	// register first so a dispatched batch always finds its status
	if err := s.store.CreateRequest(request, batches); err != nil {
		return "", errors.Wrapf(err, "failed to register ingestion request %s", requestID)
	}
	for _, batch := range batches {
		entry := &queue.QueueEntry{
			BatchID:   batch.ID,
			RequestID: requestID,
			IDs:       batch.IDs,
			Priority:  priority,
			CreatedAt: created,
		}
		if err := s.queue.Enqueue(entry); err != nil {
			return "", errors.Wrapf(err, "failed to enqueue batch %s", batch.ID)
		}
	}

	s.Logger.Infof("accepted ingestion request %s - %d ids in %d batches, priority %s",
		requestID, len(ids), len(batches), priority)
	return requestID, nil
}

// Status returns the aggregate and per-batch status of an ingestion request.
func (s *Service) Status(requestID string) (*model.RequestStatusView, error) {
	return s.store.GetRequestStatus(requestID)
}

func (s *Service) validate(ids []int64, priority model.Priority) error {
	if len(ids) == 0 {
		return errors.Wrap(ErrInvalidRequest, "ids must not be empty")
	}
	if len(ids) > s.Environment.IngestMaxRecords {
		return errors.Wrapf(ErrInvalidRequest, "%d ids exceeds the limit of %d", len(ids), s.Environment.IngestMaxRecords)
	}
	for _, id := range ids {
		if id < 1 || id > s.Environment.IngestMaxIDValue {
			return errors.Wrapf(ErrInvalidRequest, "id %d outside the range 1 to %d", id, s.Environment.IngestMaxIDValue)
		}
	}
	if !priority.Valid() {
		return errors.Wrapf(ErrInvalidRequest, "unrecognized priority %q", priority)
	}
	return nil
}
