package store

import (
	"os"
	"path"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.uncharted.software/WM/wm-ingest-queue/api/model"
)

func newTestBoltStore(t *testing.T, name string) *BoltStore {
	s, err := NewBoltStore("test_data", name)
	require.NoError(t, err)
	t.Cleanup(func() {
		os.RemoveAll(path.Join("test_data", name))
	})
	return s
}

func TestBoltStoreRoundTrip(t *testing.T) {
	s := newTestBoltStore(t, "status1.db")
	defer s.Close()

	request, batches := testRequest("req-1", "batch-a", "batch-b")
	require.NoError(t, s.CreateRequest(request, batches))

	view, err := s.GetRequestStatus("req-1")
	require.NoError(t, err)
	assert.Equal(t, "req-1", view.RequestID)
	assert.Equal(t, model.StatusYetToStart, view.Status)
	require.Len(t, view.Batches, 2)
	assert.Equal(t, "batch-a", view.Batches[0].BatchID)
	assert.Equal(t, []int64{4, 5, 6}, view.Batches[1].IDs)

	_, err = s.GetRequestStatus("no-such-request")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestBoltStoreLifecycle(t *testing.T) {
	s := newTestBoltStore(t, "status2.db")
	defer s.Close()

	request, batches := testRequest("req-1", "batch-a", "batch-b")
	require.NoError(t, s.CreateRequest(request, batches))

	require.NoError(t, s.UpdateBatchStatus("batch-a", model.StatusTriggered))
	require.NoError(t, s.UpdateBatchStatus("batch-a", model.StatusCompleted))

	err := s.UpdateBatchStatus("batch-a", model.StatusTriggered)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	err = s.UpdateBatchStatus("no-such-batch", model.StatusTriggered)
	assert.True(t, errors.Is(err, ErrNotFound))

	view, err := s.GetRequestStatus("req-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusTriggered, view.Status)
	assert.Equal(t, model.StatusCompleted, view.Batches[0].Status)
	assert.Equal(t, model.StatusYetToStart, view.Batches[1].Status)
}

func TestBoltStoreSurvivesReopen(t *testing.T) {
	s := newTestBoltStore(t, "status3.db")

	request, batches := testRequest("req-1", "batch-a", "batch-b")
	require.NoError(t, s.CreateRequest(request, batches))
	require.NoError(t, s.UpdateBatchStatus("batch-a", model.StatusTriggered))
	require.NoError(t, s.Close())

	reopened, err := NewBoltStore("test_data", "status3.db")
	require.NoError(t, err)
	defer reopened.Close()

	// status written before the restart is still there
	view, err := reopened.GetRequestStatus("req-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusTriggered, view.Status)
	assert.Equal(t, model.StatusTriggered, view.Batches[0].Status)

	// and the lifecycle picks up where it left off
	require.NoError(t, reopened.UpdateBatchStatus("batch-a", model.StatusCompleted))
	require.NoError(t, reopened.UpdateBatchStatus("batch-b", model.StatusTriggered))
	require.NoError(t, reopened.UpdateBatchStatus("batch-b", model.StatusCompleted))

	view, err = reopened.GetRequestStatus("req-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, view.Status)
}
