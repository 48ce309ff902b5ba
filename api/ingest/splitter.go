package ingest

import (
	"github.com/pkg/errors"
)

// SplitIDs splits the submitted record IDs into contiguous batches of at most
// chunkSize entries. Order is preserved and the concatenation of the returned
// groups equals the input; only the final group may hold fewer than chunkSize
// IDs. The groups alias the input slice rather than copying it.
func SplitIDs(ids []int64, chunkSize int) ([][]int64, error) {
	if len(ids) == 0 {
		return nil, errors.Wrap(ErrInvalidRequest, "ids must not be empty")
	}
	if chunkSize < 1 {
		return nil, errors.Wrapf(ErrInvalidRequest, "chunk size must be positive, got %d", chunkSize)
	}

	total := len(ids)
	batches := make([][]int64, 0, (total+chunkSize-1)/chunkSize)
	for start := 0; start < total; start += chunkSize {
		end := start + chunkSize
		if end > total {
			end = total
		}
		batches = append(batches, ids[start:end])
	}
	return batches, nil
}
