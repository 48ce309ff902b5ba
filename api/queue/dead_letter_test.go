package queue

import (
	"os"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.uncharted.software/WM/wm-ingest-queue/api/model"
)

func failedBatch(batchID string) *FailedBatch {
	return &FailedBatch{
		BatchID:   batchID,
		RequestID: "request-" + batchID,
		IDs:       []int64{7, 8, 9},
		Priority:  model.PriorityHigh,
		Reason:    "downstream returned 500",
		FailedAt:  time.Now().UTC(),
	}
}

func TestDeadLetterAppendGetAll(t *testing.T) {
	t.Cleanup(func() {
		err := os.RemoveAll(path.Join("test_data", "dlq1"))
		assert.NoError(t, err)
	})

	dlq, err := NewDeadLetterQueue("test_data", "dlq1")
	require.NoError(t, err)

	assert.NoError(t, dlq.Append(failedBatch("b1")))
	assert.NoError(t, dlq.Append(failedBatch("b2")))
	assert.Equal(t, 2, dlq.Size())

	contents, err := dlq.GetAll()
	assert.NoError(t, err)
	require.Len(t, contents, 2)
	assert.Equal(t, "b1", contents[0].BatchID)
	assert.Equal(t, "b2", contents[1].BatchID)
	assert.Equal(t, []int64{7, 8, 9}, contents[0].IDs)
	assert.Equal(t, model.PriorityHigh, contents[0].Priority)

	// reading must not consume
	assert.Equal(t, 2, dlq.Size())
}

func TestDeadLetterDrain(t *testing.T) {
	t.Cleanup(func() {
		err := os.RemoveAll(path.Join("test_data", "dlq2"))
		assert.NoError(t, err)
	})

	dlq, err := NewDeadLetterQueue("test_data", "dlq2")
	require.NoError(t, err)

	assert.NoError(t, dlq.Append(failedBatch("b1")))
	assert.NoError(t, dlq.Append(failedBatch("b2")))
	assert.NoError(t, dlq.Append(failedBatch("b3")))

	drained, err := dlq.Drain()
	assert.NoError(t, err)
	require.Len(t, drained, 3)
	assert.Equal(t, "b1", drained[0].BatchID)
	assert.Equal(t, "b3", drained[2].BatchID)
	assert.Equal(t, 0, dlq.Size())
}

func TestDeadLetterClear(t *testing.T) {
	t.Cleanup(func() {
		err := os.RemoveAll(path.Join("test_data", "dlq3"))
		assert.NoError(t, err)
	})

	dlq, err := NewDeadLetterQueue("test_data", "dlq3")
	require.NoError(t, err)

	assert.NoError(t, dlq.Append(failedBatch("b1")))
	assert.NoError(t, dlq.Append(failedBatch("b2")))

	assert.NoError(t, dlq.Clear())
	assert.Equal(t, 0, dlq.Size())
}

func TestDeadLetterSurvivesReopen(t *testing.T) {
	t.Cleanup(func() {
		err := os.RemoveAll(path.Join("test_data", "dlq4"))
		assert.NoError(t, err)
	})

	dlq, err := NewDeadLetterQueue("test_data", "dlq4")
	require.NoError(t, err)
	assert.NoError(t, dlq.Append(failedBatch("persisted")))
	assert.NoError(t, dlq.Close())

	reopened, err := NewDeadLetterQueue("test_data", "dlq4")
	require.NoError(t, err)
	assert.Equal(t, 1, reopened.Size())

	contents, err := reopened.GetAll()
	assert.NoError(t, err)
	require.Len(t, contents, 1)
	assert.Equal(t, "persisted", contents[0].BatchID)
	assert.NoError(t, reopened.Close())
}
