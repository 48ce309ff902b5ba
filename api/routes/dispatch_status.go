package routes

import (
	"net/http"

	"github.com/pkg/errors"

	"gitlab.uncharted.software/WM/wm-ingest-queue/api/dispatch"
	"gitlab.uncharted.software/WM/wm-ingest-queue/api/queue"
	"gitlab.uncharted.software/WM/wm-ingest-queue/config"
)

// DispatchStatusResponse provides the number of batches currently queued, and
// whether or not the dispatch workers are running.
type DispatchStatusResponse struct {
	Waiting   int  `json:"waiting"`
	IsRunning bool `json:"is_running"`
}

// DispatchStatusRequest creates a get request handler that returns status
// info for the batch queue and dispatch workers.
func DispatchStatusRequest(cfg *config.Config, batchQueue queue.BatchQueue, dispatcher *dispatch.BatchDispatcher) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		response := DispatchStatusResponse{
			Waiting:   batchQueue.Size(),
			IsRunning: dispatcher.Running(),
		}
		if err := handleJSON(w, http.StatusOK, response); err != nil {
			handleError(w, errors.New("failed to generate response"), http.StatusInternalServerError, cfg.Logger)
		}
	}
}
