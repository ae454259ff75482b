package models

import (
	"time"
)

// RunStatus represents the lifecycle status of a run.
type RunStatus string

const (
	RunStatusAttempting RunStatus = "attempting"
	RunStatusSucceeded  RunStatus = "succeeded"
	RunStatusFailed     RunStatus = "failed"
)

// RunMode selects whether the caller waits for delivery to finish.
type RunMode string

const (
	RunModeSync  RunMode = "sync"
	RunModeAsync RunMode = "async"
)

// Run is one firing of a trigger: an attempt sequence against the
// trigger's action with the payload snapshotted at fire time.
type Run struct {
	ID              string    `json:"id"`
	TriggerID       string    `json:"trigger_id"`
	ProjectID       string    `json:"project_id"`
	Action          Action    `json:"action"`
	Payload         *Payload  `json:"payload,omitempty"`
	Mode            RunMode   `json:"mode"`
	Status          RunStatus `json:"status"`
	LatestAttemptID string    `json:"latest_attempt_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Clone returns a deep copy so a snapshot can outlive in-place status
// updates by the dispatcher.
func (r *Run) Clone() *Run {
	if r == nil {
		return nil
	}
	clone := *r
	clone.Action = *r.Action.Clone()
	if r.Payload != nil {
		clone.Payload = r.Payload.Clone()
	}
	return &clone
}

// AttemptStatus represents the outcome of a single delivery attempt.
type AttemptStatus string

const (
	AttemptStatusSucceeded AttemptStatus = "succeeded"
	AttemptStatusFailed    AttemptStatus = "failed"
)

// WebhookAttemptDetails captures what happened on the wire for one try.
type WebhookAttemptDetails struct {
	ResponseCode     *int    `json:"response_code,omitempty"`
	ResponseLatencyS float64 `json:"response_latency_s"`
	ErrorMessage     string  `json:"error_message,omitempty"`
}

// Succeeded follows HTTP semantics: any 2xx counts.
func (d *WebhookAttemptDetails) Succeeded() bool {
	return d.ResponseCode != nil && *d.ResponseCode >= 200 && *d.ResponseCode <= 299
}

// AttemptDetailsWithError builds a failed-attempt detail record.
func AttemptDetailsWithError(message string) WebhookAttemptDetails {
	return WebhookAttemptDetails{ErrorMessage: message}
}

// Attempt is one HTTP delivery try of a run.
type Attempt struct {
	ID         string                `json:"id"`
	RunID      string                `json:"run_id"`
	TriggerID  string                `json:"trigger_id"`
	ProjectID  string                `json:"project_id"`
	AttemptNum uint32                `json:"attempt_num"`
	Status     AttemptStatus         `json:"status"`
	Details    WebhookAttemptDetails `json:"details"`
	CreatedAt  time.Time             `json:"created_at"`
}
