package routes

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/pkg/errors"

	"gitlab.uncharted.software/WM/wm-ingest-queue/api/ingest"
	"gitlab.uncharted.software/WM/wm-ingest-queue/config"
)

// StatusRequest creates a get request handler that returns the aggregate and
// per-batch status of an ingestion request.
func StatusRequest(cfg *config.Config, ingestService *ingest.Service) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := chi.URLParam(r, "ingestionID")

		view, err := ingestService.Status(requestID)
		if err != nil {
			handleError(w, err, statusCode(err), cfg.Logger)
			return
		}

		if err := handleJSON(w, http.StatusOK, view); err != nil {
			handleError(w, errors.New("failed to generate response"), http.StatusInternalServerError, cfg.Logger)
		}
	}
}
