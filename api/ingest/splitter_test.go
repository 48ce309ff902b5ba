package ingest

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestSplitIDs(t *testing.T) {
	batches, err := SplitIDs([]int64{1}, 1)
	assert.NoError(t, err)
	assert.Equal(t, [][]int64{{1}}, batches)

	batches, err = SplitIDs([]int64{1}, 10)
	assert.NoError(t, err)
	assert.Equal(t, [][]int64{{1}}, batches)

	batches, err = SplitIDs([]int64{1, 2}, 1)
	assert.NoError(t, err)
	assert.Equal(t, [][]int64{{1}, {2}}, batches)

	batches, err = SplitIDs([]int64{1, 2, 3, 4, 5}, 3)
	assert.NoError(t, err)
	assert.Equal(t, [][]int64{{1, 2, 3}, {4, 5}}, batches)

	batches, err = SplitIDs([]int64{1, 2, 3, 4, 5, 6}, 3)
	assert.NoError(t, err)
	assert.Equal(t, [][]int64{{1, 2, 3}, {4, 5, 6}}, batches)
}

func TestSplitIDsPreservesOrder(t *testing.T) {
	ids := []int64{9, 3, 7, 1, 8, 2, 6, 4}

	batches, err := SplitIDs(ids, 3)
	assert.NoError(t, err)
	assert.Len(t, batches, 3)

	flattened := make([]int64, 0, len(ids))
	for _, batch := range batches {
		assert.LessOrEqual(t, len(batch), 3)
		assert.GreaterOrEqual(t, len(batch), 1)
		flattened = append(flattened, batch...)
	}
	assert.Equal(t, ids, flattened)
}

func TestSplitIDsInvalidInput(t *testing.T) {
	_, err := SplitIDs(nil, 3)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRequest))

	_, err = SplitIDs([]int64{}, 3)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRequest))

	_, err = SplitIDs([]int64{1, 2, 3}, 0)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRequest))

	_, err = SplitIDs([]int64{1, 2, 3}, -1)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRequest))
}
