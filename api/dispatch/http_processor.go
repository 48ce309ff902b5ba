package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// HTTPProcessor submits batches to an ingestion worker over REST. The worker
// is expected to accept the batch synchronously with a 2xx response.
type HTTPProcessor struct {
	addr       string
	httpClient *http.Client
}

// NewHTTPProcessor creates a processor that POSTs batches to the worker at
// addr.
func NewHTTPProcessor(addr string, timeout time.Duration) *HTTPProcessor {
	return &HTTPProcessor{
		addr:       addr,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type processRequest struct {
	BatchID string  `json:"batch_id"`
	IDs     []int64 `json:"ids"`
}

// Process implements Processor.
func (p *HTTPProcessor) Process(ctx context.Context, batchID string, ids []int64) error {
	payload, err := json.Marshal(&processRequest{BatchID: batchID, IDs: ids})
	if err != nil {
		return errors.Wrapf(err, "failed to encode batch %s", batchID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.addr+"/process", bytes.NewBuffer(payload))
	if err != nil {
		return errors.Wrapf(err, "failed to create submission for batch %s", batchID)
	}
	req.Header.Set("Content-type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "failed to submit batch %s", batchID)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("batch %s rejected with status %s", batchID, resp.Status)
	}
	return nil
}
