package routes

import (
	"net/http"

	"gitlab.uncharted.software/WM/wm-ingest-queue/api/dispatch"
	"gitlab.uncharted.software/WM/wm-ingest-queue/config"
)

// StopRequest stops the dispatch workers. Batches can still be submitted, but
// the queue will not be serviced until the next start.
func StopRequest(cfg *config.Config, dispatcher *dispatch.BatchDispatcher) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		dispatcher.Stop()
	}
}
