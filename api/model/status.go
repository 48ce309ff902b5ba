package model

// Priority orders ingestion requests for dispatch. High sorts first.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// Rank returns the numeric sort key for a priority - lower ranks dispatch
// first. Unrecognized priorities sink to the bottom of the queue.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	}
	return 4
}

// Valid reports whether the priority is a recognized value.
func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// Status is the lifecycle state of a batch, and by aggregation of an
// ingestion request. Batches move strictly forward:
// yet_to_start -> triggered -> completed or failed.
type Status string

const (
	StatusYetToStart Status = "yet_to_start"
	StatusTriggered  Status = "triggered"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether a batch in this status will never change again.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ValidTransition reports whether a batch may move from one status to the
// next. Skipping a state or leaving a terminal state is never allowed.
func ValidTransition(from, next Status) bool {
	switch from {
	case StatusYetToStart:
		return next == StatusTriggered
	case StatusTriggered:
		return next == StatusCompleted || next == StatusFailed
	}
	return false
}
