package routes

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"

	"gitlab.uncharted.software/WM/wm-ingest-queue/api/ingest"
	"gitlab.uncharted.software/WM/wm-ingest-queue/api/model"
	"gitlab.uncharted.software/WM/wm-ingest-queue/config"
)

// IngestRequestBody defines the fields callers specify to submit record IDs
// for ingestion. Priority is optional and defaults to MEDIUM.
type IngestRequestBody struct {
	IDs      []int64        `json:"ids"`
	Priority model.Priority `json:"priority"`
}

// IngestResponse returns the generated ingestion ID callers poll for status.
type IngestResponse struct {
	IngestionID string `json:"ingestion_id"`
}

// IngestRequest accepts a list of record IDs, splits it into batches and
// schedules the batches for dispatch.
func IngestRequest(cfg *config.Config, ingestService *ingest.Service) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		// Read the body into a byte array
		body, err := io.ReadAll(r.Body)
		defer r.Body.Close()
		if err != nil {
			handleError(w, errors.Wrap(err, "failed to read ingest request body"), http.StatusBadRequest, cfg.Logger)
			return
		}

		// Decode and respond with a 400 on failure
		var ingestMsg IngestRequestBody
		err = json.Unmarshal(body, &ingestMsg)
		if err != nil {
			handleError(w, errors.Wrap(err, "failed to unmarshal ingest request body"), http.StatusBadRequest, cfg.Logger)
			return
		}
		if ingestMsg.Priority == "" {
			ingestMsg.Priority = model.PriorityMedium
		}

		requestID, err := ingestService.Submit(ingestMsg.IDs, ingestMsg.Priority)
		if err != nil {
			handleError(w, err, statusCode(err), cfg.Logger)
			return
		}

		if err := handleJSON(w, http.StatusCreated, IngestResponse{IngestionID: requestID}); err != nil {
			handleError(w, errors.New("failed to generate response"), http.StatusInternalServerError, cfg.Logger)
		}
	}
}
