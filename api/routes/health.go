package routes

import (
	"net/http"

	"github.com/pkg/errors"

	"gitlab.uncharted.software/WM/wm-ingest-queue/config"
)

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status string `json:"status"`
}

// HealthCheck returns a static healthy response while the service is up.
func HealthCheck(cfg *config.Config) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := handleJSON(w, http.StatusOK, HealthResponse{Status: "healthy"}); err != nil {
			handleError(w, errors.New("failed to generate response"), http.StatusInternalServerError, cfg.Logger)
		}
	}
}
