package routes

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"gitlab.uncharted.software/WM/wm-ingest-queue/api/ingest"
	"gitlab.uncharted.software/WM/wm-ingest-queue/api/store"
)

func handleJSON(w http.ResponseWriter, status int, data interface{}) error {
	// marshal data
	bytes, err := json.Marshal(data)
	if err != nil {
		return err
	}
	// write response
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(bytes)
	if err != nil {
		return err
	}
	return nil
}

// handleError logs the full cause chain and responds to the client. Client
// errors carry their reason so callers can fix the request; server errors
// get a generic message.
func handleError(w http.ResponseWriter, err error, code int, logger *zap.SugaredLogger) {
	logger.Errorf("%+v", err)
	errMessage := "An error occured on the server while processing the request"
	if code < 500 {
		errMessage = err.Error()
	}
	http.Error(w, errMessage, code)
}

// statusCode maps service errors onto HTTP response codes.
func statusCode(err error) int {
	switch {
	case errors.Is(err, ingest.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
