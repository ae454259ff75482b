package models

import (
	"time"
)

// UpsertTriggerRequest creates or replaces a trigger definition. Name
// may come from the URL path instead of the body, so the controller
// validates it rather than the binding layer.
type UpsertTriggerRequest struct {
	Name        string    `json:"name,omitempty" example:"sales-report"`
	Description string    `json:"description,omitempty" example:"Pushes the nightly sales report"`
	Reference   string    `json:"reference,omitempty" example:"order-prod-2251"`
	Schedule    *Schedule `json:"schedule,omitempty"`
	Action      Action    `json:"action" binding:"required"`
	Payload     *Payload  `json:"payload,omitempty"`
} // @name UpsertTriggerRequest

// RunTriggerRequest fires a trigger manually.
type RunTriggerRequest struct {
	Mode RunMode `json:"mode,omitempty" binding:"omitempty,oneof=sync async" example:"async"`
} // @name RunTriggerRequest

// ListQuery carries cursor pagination parameters.
type ListQuery struct {
	Cursor string `form:"cursor" example:"trig_00420194..."`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100" example:"20"`
	Status string `form:"status" example:"scheduled,paused"`
} // @name ListQuery

// DefaultPageSize applies when a list request carries no limit.
const DefaultPageSize = 20

// EffectiveLimit clamps the requested page size into [1, 100].
func (q *ListQuery) EffectiveLimit() int {
	if q.Limit <= 0 {
		return DefaultPageSize
	}
	if q.Limit > 100 {
		return 100
	}
	return q.Limit
}

// CursorInfo describes how to fetch the next page.
type CursorInfo struct {
	NextCursor string `json:"next_cursor,omitempty" example:"trig_00420194..."`
	HasMore    bool   `json:"has_more" example:"true"`
} // @name CursorInfo

// TriggerResponse is the API projection of a trigger.
type TriggerResponse struct {
	ID          string        `json:"id" example:"trig_00420194f00ddeadbeef"`
	Name        string        `json:"name" example:"sales-report"`
	Description string        `json:"description,omitempty"`
	Reference   string        `json:"reference,omitempty"`
	Schedule    *Schedule     `json:"schedule,omitempty"`
	Action      Action        `json:"action"`
	Payload     *Payload      `json:"payload,omitempty"`
	Status      TriggerStatus `json:"status" example:"scheduled"`
	LastRanAt   *time.Time    `json:"last_ran_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at" example:"2025-11-05T10:00:00Z"`
	UpdatedAt   *time.Time    `json:"updated_at,omitempty"`
} // @name TriggerResponse

// NewTriggerResponse projects a stored trigger into its API shape.
func NewTriggerResponse(t *Trigger) TriggerResponse {
	return TriggerResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Reference:   t.Reference,
		Schedule:    t.Schedule,
		Action:      t.Action,
		Payload:     t.Payload,
		Status:      t.Status,
		LastRanAt:   t.LastRanAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// TriggerListResponse pages through a project's triggers.
type TriggerListResponse struct {
	Triggers []TriggerResponse `json:"triggers"`
	Cursor   CursorInfo        `json:"cursor"`
} // @name TriggerListResponse

// RunResponse is the API projection of a run.
type RunResponse struct {
	ID              string    `json:"id" example:"run_00420194f00ddeadbeef"`
	TriggerID       string    `json:"trigger_id" example:"trig_00420194f00ddeadbeef"`
	Status          RunStatus `json:"status" example:"succeeded"`
	Mode            RunMode   `json:"mode" example:"async"`
	LatestAttemptID string    `json:"latest_attempt_id,omitempty"`
	CreatedAt       time.Time `json:"created_at" example:"2025-11-05T10:00:00Z"`
} // @name RunResponse

// NewRunResponse projects a run into its API shape.
func NewRunResponse(r *Run) RunResponse {
	return RunResponse{
		ID:              r.ID,
		TriggerID:       r.TriggerID,
		Status:          r.Status,
		Mode:            r.Mode,
		LatestAttemptID: r.LatestAttemptID,
		CreatedAt:       r.CreatedAt,
	}
}

// RunListItem decorates a run with its most recent delivery attempt.
type RunListItem struct {
	RunResponse
	LatestAttempt *AttemptResponse `json:"latest_attempt,omitempty"`
} // @name RunListItem

// RunListResponse pages through a trigger's runs.
type RunListResponse struct {
	Runs   []RunListItem `json:"runs"`
	Cursor CursorInfo    `json:"cursor"`
} // @name RunListResponse

// AttemptResponse is the API projection of a delivery attempt.
type AttemptResponse struct {
	ID               string        `json:"id" example:"att_00420194f00ddeadbeef"`
	RunID            string        `json:"run_id" example:"run_00420194f00ddeadbeef"`
	AttemptNum       uint32        `json:"attempt_num" example:"1"`
	Status           AttemptStatus `json:"status" example:"succeeded"`
	ResponseCode     *int          `json:"response_code,omitempty" example:"200"`
	ResponseLatencyS float64       `json:"response_latency_s" example:"0.131"`
	ErrorMessage     string        `json:"error_message,omitempty"`
	CreatedAt        time.Time     `json:"created_at" example:"2025-11-05T10:00:00Z"`
} // @name AttemptResponse

// NewAttemptResponse projects an attempt into its API shape.
func NewAttemptResponse(a *Attempt) AttemptResponse {
	return AttemptResponse{
		ID:               a.ID,
		RunID:            a.RunID,
		AttemptNum:       a.AttemptNum,
		Status:           a.Status,
		ResponseCode:     a.Details.ResponseCode,
		ResponseLatencyS: a.Details.ResponseLatencyS,
		ErrorMessage:     a.Details.ErrorMessage,
		CreatedAt:        a.CreatedAt,
	}
}

// AttemptListResponse pages through a run's attempts.
type AttemptListResponse struct {
	Attempts []AttemptResponse `json:"attempts"`
	Cursor   CursorInfo        `json:"cursor"`
} // @name AttemptListResponse
