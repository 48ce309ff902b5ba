package routes

import (
	"net/http"

	"github.com/pkg/errors"

	"gitlab.uncharted.software/WM/wm-ingest-queue/api/queue"
	"gitlab.uncharted.software/WM/wm-ingest-queue/config"
)

// WaitingResponse provides the number of batches currently awaiting dispatch.
type WaitingResponse struct {
	Waiting int `json:"waiting"`
}

// Waiting creates a get request handler that returns the number of queued
// batches.
func Waiting(cfg *config.Config, batchQueue queue.BatchQueue) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := handleJSON(w, http.StatusOK, WaitingResponse{Waiting: batchQueue.Size()}); err != nil {
			handleError(w, errors.New("failed to generate response"), http.StatusInternalServerError, cfg.Logger)
		}
	}
}
