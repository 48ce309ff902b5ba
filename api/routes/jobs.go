package routes

import (
	"net/http"

	"github.com/pkg/errors"

	"gitlab.uncharted.software/WM/wm-ingest-queue/api/model"
	"gitlab.uncharted.software/WM/wm-ingest-queue/api/queue"
	"gitlab.uncharted.software/WM/wm-ingest-queue/config"
)

// QueuedBatch is one entry of the queue snapshot returned by JobsRequest.
type QueuedBatch struct {
	BatchID     string         `json:"batch_id"`
	IngestionID string         `json:"ingestion_id"`
	IDs         []int64        `json:"ids"`
	Priority    model.Priority `json:"priority"`
}

// JobsRequest returns the batches waiting in the queue in dispatch order.
func JobsRequest(cfg *config.Config, batchQueue queue.BatchQueue) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		entries := batchQueue.GetAll()
		jobs := make([]QueuedBatch, len(entries))
		for i, entry := range entries {
			jobs[i] = QueuedBatch{
				BatchID:     entry.BatchID,
				IngestionID: entry.RequestID,
				IDs:         entry.IDs,
				Priority:    entry.Priority,
			}
		}
		if err := handleJSON(w, http.StatusOK, jobs); err != nil {
			handleError(w, errors.New("failed to generate response"), http.StatusInternalServerError, cfg.Logger)
		}
	}
}
