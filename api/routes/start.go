package routes

import (
	"net/http"

	"gitlab.uncharted.software/WM/wm-ingest-queue/api/dispatch"
	"gitlab.uncharted.software/WM/wm-ingest-queue/config"
)

// StartRequest starts the dispatch workers. If they are already running the
// request does nothing.
func StartRequest(cfg *config.Config, dispatcher *dispatch.BatchDispatcher) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		dispatcher.Start()
	}
}
