package events

import "time"

// EventKind names a step in a run's lifecycle.
type EventKind string

const (
	KindRunCreated       EventKind = "run.created"
	KindAttemptSucceeded EventKind = "run.attempt_succeeded"
	KindAttemptFailed    EventKind = "run.attempt_failed"
	KindRunSucceeded     EventKind = "run.succeeded"
	KindRunFailed        EventKind = "run.failed"
)

// RunEvent is the message published to Kafka as a run progresses.
// Attempt fields are set on attempt events, terminal fields on the
// final succeeded/failed event.
type RunEvent struct {
	EventID         string    `json:"event_id"`
	Kind            EventKind `json:"kind"`
	ProjectID       string    `json:"project_id"`
	TriggerID       string    `json:"trigger_id"`
	RunID           string    `json:"run_id"`
	AttemptID       string    `json:"attempt_id,omitempty"`
	AttemptNum      uint32    `json:"attempt_num,omitempty"`
	ResponseCode    *int      `json:"response_code,omitempty"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	LatestAttemptID string    `json:"latest_attempt_id,omitempty"`
	TotalDurationS  float64   `json:"total_duration_s,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}
