package routes

import (
	"net/http"
	"time"

	"github.com/pkg/errors"

	"gitlab.uncharted.software/WM/wm-ingest-queue/api/model"
	"gitlab.uncharted.software/WM/wm-ingest-queue/api/queue"
	"gitlab.uncharted.software/WM/wm-ingest-queue/config"
)

// FailedBatchView is one entry of the dead letter listing.
type FailedBatchView struct {
	BatchID     string         `json:"batch_id"`
	IngestionID string         `json:"ingestion_id"`
	IDs         []int64        `json:"ids"`
	Priority    model.Priority `json:"priority"`
	Reason      string         `json:"reason"`
	FailedAt    time.Time      `json:"failed_at"`
}

// DeadLetterRequest lists the failed batches awaiting a retry or clear.
func DeadLetterRequest(cfg *config.Config, deadLetter *queue.DeadLetterQueue) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		failed, err := deadLetter.GetAll()
		if err != nil {
			handleError(w, errors.Wrap(err, "failed to read dead letter queue"), http.StatusInternalServerError, cfg.Logger)
			return
		}

		views := make([]FailedBatchView, len(failed))
		for i, batch := range failed {
			views[i] = FailedBatchView{
				BatchID:     batch.BatchID,
				IngestionID: batch.RequestID,
				IDs:         batch.IDs,
				Priority:    batch.Priority,
				Reason:      batch.Reason,
				FailedAt:    batch.FailedAt,
			}
		}
		if err := handleJSON(w, http.StatusOK, views); err != nil {
			handleError(w, errors.New("failed to generate response"), http.StatusInternalServerError, cfg.Logger)
		}
	}
}

// DeadLetterClearRequest drops every dead-lettered batch.
func DeadLetterClearRequest(cfg *config.Config, deadLetter *queue.DeadLetterQueue) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deadLetter.Clear(); err != nil {
			handleError(w, errors.Wrap(err, "failed to clear dead letter queue"), http.StatusInternalServerError, cfg.Logger)
		}
	}
}
