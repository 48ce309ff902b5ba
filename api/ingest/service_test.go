package ingest

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gitlab.uncharted.software/WM/wm-ingest-queue/api/model"
	"gitlab.uncharted.software/WM/wm-ingest-queue/api/queue"
	"gitlab.uncharted.software/WM/wm-ingest-queue/api/store"
	"gitlab.uncharted.software/WM/wm-ingest-queue/config"
)

func newTestService() (*Service, *queue.PriorityQueue, *store.MemoryStore) {
	cfg := &config.Config{
		Logger: zap.NewNop().Sugar(),
		Environment: &config.Environment{
			IngestChunkSize:  3,
			IngestMaxRecords: 1000,
			IngestMaxIDValue: 1000000007,
		},
	}
	q := queue.NewPriorityQueue()
	s := store.NewMemoryStore()
	return NewService(cfg, q, s), q, s
}

func TestSubmitSplitsAndQueues(t *testing.T) {
	svc, q, _ := newTestService()

	ids := []int64{1, 2, 3, 4, 5, 6, 7, 8}
	requestID, err := svc.Submit(ids, model.PriorityMedium)
	require.NoError(t, err)
	assert.NotEmpty(t, requestID)

	// the request is immediately visible, fully pending
	view, err := svc.Status(requestID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusYetToStart, view.Status)
	require.Len(t, view.Batches, 3)
	assert.Equal(t, []int64{1, 2, 3}, view.Batches[0].IDs)
	assert.Equal(t, []int64{4, 5, 6}, view.Batches[1].IDs)
	assert.Equal(t, []int64{7, 8}, view.Batches[2].IDs)
	for _, batch := range view.Batches {
		assert.Equal(t, model.StatusYetToStart, batch.Status)
	}

	// one queue entry per batch, carrying the request's priority, and the
	// entries reproduce the submitted IDs in order
	assert.Equal(t, 3, q.Size())
	flattened := []int64{}
	for _, entry := range q.GetAll() {
		assert.Equal(t, requestID, entry.RequestID)
		assert.Equal(t, model.PriorityMedium, entry.Priority)
		flattened = append(flattened, entry.IDs...)
	}
	assert.Equal(t, ids, flattened)
}

func TestSubmitSmallRequest(t *testing.T) {
	svc, q, _ := newTestService()

	// boundary IDs are accepted and fit in a single batch
	requestID, err := svc.Submit([]int64{1, 1000000007}, model.PriorityHigh)
	require.NoError(t, err)

	view, err := svc.Status(requestID)
	require.NoError(t, err)
	require.Len(t, view.Batches, 1)
	assert.Equal(t, []int64{1, 1000000007}, view.Batches[0].IDs)
	assert.Equal(t, 1, q.Size())
}

func TestSubmitValidation(t *testing.T) {
	svc, q, _ := newTestService()

	tooMany := make([]int64, 1001)
	for i := range tooMany {
		tooMany[i] = int64(i + 1)
	}

	tests := []struct {
		name     string
		ids      []int64
		priority model.Priority
	}{
		{"no ids", []int64{}, model.PriorityMedium},
		{"nil ids", nil, model.PriorityHigh},
		{"too many ids", tooMany, model.PriorityMedium},
		{"zero id", []int64{1, 0, 3}, model.PriorityMedium},
		{"negative id", []int64{-5}, model.PriorityLow},
		{"id too large", []int64{1000000008}, model.PriorityMedium},
		{"unrecognized priority", []int64{1, 2}, model.Priority("URGENT")},
		{"missing priority", []int64{1, 2}, model.Priority("")},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			requestID, err := svc.Submit(test.ids, test.priority)
			assert.Empty(t, requestID)
			assert.True(t, errors.Is(err, ErrInvalidRequest))
		})
	}

	// rejected submissions leave no trace
	assert.Equal(t, 0, q.Size())
}

func TestStatusUnknownRequest(t *testing.T) {
	svc, _, _ := newTestService()

	view, err := svc.Status(uuid.NewString())
	assert.Nil(t, view)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestConcurrentSubmits(t *testing.T) {
	svc, q, _ := newTestService()

	requestIDs := make(chan string, 50)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			base := int64(i * 10)
			requestID, err := svc.Submit([]int64{base + 1, base + 2, base + 3, base + 4}, model.PriorityMedium)
			assert.NoError(t, err)
			requestIDs <- requestID
		}(i)
	}
	wg.Wait()
	close(requestIDs)

	seen := map[string]bool{}
	for requestID := range requestIDs {
		assert.False(t, seen[requestID], "request ID %s assigned twice", requestID)
		seen[requestID] = true

		view, err := svc.Status(requestID)
		require.NoError(t, err)
		assert.Len(t, view.Batches, 2)
	}
	assert.Len(t, seen, 50)
	assert.Equal(t, 100, q.Size())
}
