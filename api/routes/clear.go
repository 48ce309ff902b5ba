package routes

import (
	"net/http"

	"github.com/pkg/errors"

	"gitlab.uncharted.software/WM/wm-ingest-queue/api/queue"
	"gitlab.uncharted.software/WM/wm-ingest-queue/config"
)

// ClearRequest drops every batch waiting in the queue. Status records are
// untouched, so cleared batches stay yet_to_start.
func ClearRequest(cfg *config.Config, batchQueue queue.BatchQueue) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := batchQueue.Clear(); err != nil {
			handleError(w, errors.Wrap(err, "failed to clear batch queue"), http.StatusInternalServerError, cfg.Logger)
		}
	}
}
