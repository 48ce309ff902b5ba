package model

import "time"

// IngestionRequest is one client submission. The request itself is immutable
// once created - progress is tracked on its batches and aggregated on read.
type IngestionRequest struct {
	ID        string    `json:"ingestion_id"`
	Priority  Priority  `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
	// BatchIDs lists the request's batches in split order.
	BatchIDs []string `json:"batch_ids"`
}

// Batch is a bounded chunk of record IDs carved from one ingestion request,
// the unit of scheduling and execution. Priority and CreatedAt are copied
// from the parent request so queue ordering needs no lookup.
type Batch struct {
	ID        string    `json:"batch_id"`
	RequestID string    `json:"ingestion_id"`
	IDs       []int64   `json:"ids"`
	Priority  Priority  `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
	Status    Status    `json:"status"`
}

// BatchStatusView is the per-batch slice of a status query response.
type BatchStatusView struct {
	BatchID string  `json:"batch_id"`
	IDs     []int64 `json:"ids"`
	Status  Status  `json:"status"`
}

// RequestStatusView is the full status query response: the aggregate request
// status plus per-batch detail in split order.
type RequestStatusView struct {
	RequestID string            `json:"ingestion_id"`
	Status    Status            `json:"status"`
	Batches   []BatchStatusView `json:"batches"`
}

// Aggregate derives the request-level status from its batch statuses:
// completed once every batch reached a terminal state, triggered as soon as
// any batch left yet_to_start, and yet_to_start otherwise.
func Aggregate(statuses []Status) Status {
	if len(statuses) == 0 {
		return StatusYetToStart
	}
	allTerminal := true
	anyStarted := false
	for _, s := range statuses {
		if !s.Terminal() {
			allTerminal = false
		}
		if s != StatusYetToStart {
			anyStarted = true
		}
	}
	if allTerminal {
		return StatusCompleted
	}
	if anyStarted {
		return StatusTriggered
	}
	return StatusYetToStart
}
