package routes

import (
	"net/http"

	"github.com/pkg/errors"

	"gitlab.uncharted.software/WM/wm-ingest-queue/api/ingest"
	"gitlab.uncharted.software/WM/wm-ingest-queue/api/queue"
	"gitlab.uncharted.software/WM/wm-ingest-queue/config"
)

// RetriedBatch maps a dead-lettered batch to the ingestion request created to
// redo it.
type RetriedBatch struct {
	BatchID     string `json:"batch_id"`
	IngestionID string `json:"ingestion_id"`
}

// RetryResponse lists the resubmissions made by a dead letter retry sweep.
type RetryResponse struct {
	Resubmitted []RetriedBatch `json:"resubmitted"`
}

// RetryFailedRequest drains the dead letter queue and resubmits each failed
// batch's record IDs as a fresh ingestion request at its original priority.
// The failed batch itself keeps its failed status; progress of the retry is
// tracked under the new ingestion ID.
func RetryFailedRequest(cfg *config.Config, deadLetter *queue.DeadLetterQueue, ingestService *ingest.Service) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		failed, err := deadLetter.Drain()
		if err != nil {
			// a partial drain hands back what it already removed - put it
			// back so the sweep can be retried
			restoreDrained(cfg, deadLetter, failed)
			handleError(w, errors.Wrap(err, "failed to drain dead letter queue"), http.StatusInternalServerError, cfg.Logger)
			return
		}

		resubmitted := make([]RetriedBatch, 0, len(failed))
		for i, batch := range failed {
			requestID, err := ingestService.Submit(batch.IDs, batch.Priority)
			if err != nil {
				// keep every batch that was not resubmitted, not just the
				// one that failed
				restoreDrained(cfg, deadLetter, failed[i:])
				handleError(w, errors.Wrapf(err, "failed to resubmit batch %s", batch.BatchID), http.StatusInternalServerError, cfg.Logger)
				return
			}
			cfg.Logger.Infof("resubmitted failed batch %s as ingestion request %s", batch.BatchID, requestID)
			resubmitted = append(resubmitted, RetriedBatch{BatchID: batch.BatchID, IngestionID: requestID})
		}

		if err := handleJSON(w, http.StatusOK, RetryResponse{Resubmitted: resubmitted}); err != nil {
			handleError(w, errors.New("failed to generate response"), http.StatusInternalServerError, cfg.Logger)
		}
	}
}

// restoreDrained returns drained batches to the dead letter queue after a
// failed sweep, so no failure record is lost.
func restoreDrained(cfg *config.Config, deadLetter *queue.DeadLetterQueue, batches []*queue.FailedBatch) {
	for _, batch := range batches {
		if err := deadLetter.Append(batch); err != nil {
			cfg.Logger.Errorf("failed to restore dead-lettered batch %s: %+v", batch.BatchID, err)
		}
	}
}
