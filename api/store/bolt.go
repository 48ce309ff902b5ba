package store

import (
	"encoding/json"
	"os"
	"path"
	"time"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"

	"gitlab.uncharted.software/WM/wm-ingest-queue/api/model"
)

var (
	requestsBucket = []byte("requests")
	// batch ID -> owning request ID, so batch updates skip a request scan
	batchesBucket = []byte("batches")
)

// boltRecord is the stored form of a request and its batches. Batches keep
// their split order so status responses line up with the original ID list.
type boltRecord struct {
	Request *model.IngestionRequest `json:"request"`
	Batches []*model.Batch          `json:"batches"`
}

// BoltStore is a StatusStore backed by a bbolt file, for deployments that
// need request status to survive a restart.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore opens or creates the status database at dir/name.
func NewBoltStore(dir string, name string) (*BoltStore, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, errors.Wrap(err, "failed to create status store directory")
		}
	}

	db, err := bbolt.Open(path.Join(dir, name), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open status store")
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(requestsBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(batchesBucket)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create status store buckets")
	}
	return &BoltStore{db: db}, nil
}

// CreateRequest implements StatusStore.
func (s *BoltStore) CreateRequest(request *model.IngestionRequest, batches []*model.Batch) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		requests := tx.Bucket(requestsBucket)
		index := tx.Bucket(batchesBucket)

		if requests.Get([]byte(request.ID)) != nil {
			return errors.Wrapf(ErrDuplicateID, "ingestion request %s", request.ID)
		}
		for _, batch := range batches {
			if index.Get([]byte(batch.ID)) != nil {
				return errors.Wrapf(ErrDuplicateID, "batch %s", batch.ID)
			}
		}

		data, err := json.Marshal(&boltRecord{Request: request, Batches: batches})
		if err != nil {
			return errors.Wrap(err, "failed to encode ingestion request")
		}
		if err := requests.Put([]byte(request.ID), data); err != nil {
			return err
		}
		for _, batch := range batches {
			if err := index.Put([]byte(batch.ID), []byte(request.ID)); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateBatchStatus implements StatusStore.
func (s *BoltStore) UpdateBatchStatus(batchID string, next model.Status) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		requestID := tx.Bucket(batchesBucket).Get([]byte(batchID))
		if requestID == nil {
			return errors.Wrapf(ErrNotFound, "batch %s", batchID)
		}

		requests := tx.Bucket(requestsBucket)
		data := requests.Get(requestID)
		if data == nil {
			return errors.Errorf("batch %s indexed under missing request %s", batchID, requestID)
		}
		var record boltRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return errors.Wrapf(err, "failed to decode ingestion request %s", requestID)
		}

		var batch *model.Batch
		for _, candidate := range record.Batches {
			if candidate.ID == batchID {
				batch = candidate
				break
			}
		}
		if batch == nil {
			return errors.Errorf("batch %s missing from request %s", batchID, requestID)
		}
		if !model.ValidTransition(batch.Status, next) {
			return errors.Wrapf(ErrInvalidTransition, "batch %s cannot move from %s to %s", batchID, batch.Status, next)
		}
		batch.Status = next

		data, err := json.Marshal(&record)
		if err != nil {
			return errors.Wrapf(err, "failed to encode ingestion request %s", requestID)
		}
		return requests.Put(requestID, data)
	})
}

// GetRequestStatus implements StatusStore.
func (s *BoltStore) GetRequestStatus(requestID string) (*model.RequestStatusView, error) {
	var view *model.RequestStatusView
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(requestsBucket).Get([]byte(requestID))
		if data == nil {
			return errors.Wrapf(ErrNotFound, "ingestion request %s", requestID)
		}
		var record boltRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return errors.Wrapf(err, "failed to decode ingestion request %s", requestID)
		}
		view = statusView(requestID, record.Batches)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Close implements StatusStore.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
