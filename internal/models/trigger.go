package models

import (
	"time"
)

// TriggerStatus represents the lifecycle status of a trigger.
type TriggerStatus string

const (
	TriggerStatusScheduled TriggerStatus = "scheduled"
	TriggerStatusOnDemand  TriggerStatus = "on_demand"
	TriggerStatusPaused    TriggerStatus = "paused"
	TriggerStatusCancelled TriggerStatus = "cancelled"
	TriggerStatusExpired   TriggerStatus = "expired"
)

// Alive reports whether the trigger still belongs in the active map.
func (s TriggerStatus) Alive() bool {
	return s == TriggerStatusScheduled || s == TriggerStatusPaused
}

// Cancellable reports whether a cancel operation is accepted from this status.
func (s TriggerStatus) Cancellable() bool {
	switch s {
	case TriggerStatusScheduled, TriggerStatusPaused, TriggerStatusOnDemand:
		return true
	}
	return false
}

// Retired reports whether the trigger reached a terminal status.
func (s TriggerStatus) Retired() bool {
	return s == TriggerStatusCancelled || s == TriggerStatusExpired
}

// AsOperation names the lifecycle operation that leads into this status,
// for error messages like `InvalidStatus("pause", "cancelled")`.
func (s TriggerStatus) AsOperation() string {
	switch s {
	case TriggerStatusScheduled:
		return "resume"
	case TriggerStatusExpired:
		return "expire"
	case TriggerStatusCancelled:
		return "cancel"
	case TriggerStatusPaused:
		return "pause"
	default:
		return "invalid"
	}
}

// ScheduleType discriminates the schedule variants.
type ScheduleType string

const (
	ScheduleTypeRecurring ScheduleType = "recurring"
	ScheduleTypeRunAt     ScheduleType = "run_at"
)

// Schedule describes when a trigger fires. Exactly one variant is
// populated, selected by Type.
type Schedule struct {
	Type ScheduleType `json:"type" binding:"required,oneof=recurring run_at" example:"recurring"`

	// Recurring fields.
	Cron      string  `json:"cron,omitempty" example:"0 */10 * * * *"`
	Timezone  string  `json:"timezone,omitempty" example:"Europe/London"`
	Limit     *uint64 `json:"limit,omitempty" example:"5"`
	Remaining *uint64 `json:"remaining,omitempty" example:"3"`

	// RunAt fields.
	Timepoints []time.Time `json:"timepoints,omitempty"`
} // @name Schedule

// DefaultTimezone applies when a recurring schedule names no timezone.
const DefaultTimezone = "Etc/UTC"

// EffectiveTimezone resolves the schedule's timezone name.
func (s *Schedule) EffectiveTimezone() string {
	if s.Timezone == "" {
		return DefaultTimezone
	}
	return s.Timezone
}

// Trigger is the stored trigger entity.
type Trigger struct {
	ID          string        `json:"id"`
	ProjectID   string        `json:"project_id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Reference   string        `json:"reference,omitempty"`
	Schedule    *Schedule     `json:"schedule,omitempty"`
	Action      Action        `json:"action"`
	Payload     *Payload      `json:"payload,omitempty"`
	Status      TriggerStatus `json:"status"`
	LastRanAt   *time.Time    `json:"last_ran_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   *time.Time    `json:"updated_at,omitempty"`
}

// Clone returns a deep copy so map callers can hand triggers out
// without sharing mutable state.
func (t *Trigger) Clone() *Trigger {
	out := *t
	if t.Schedule != nil {
		sched := *t.Schedule
		if t.Schedule.Limit != nil {
			limit := *t.Schedule.Limit
			sched.Limit = &limit
		}
		if t.Schedule.Remaining != nil {
			remaining := *t.Schedule.Remaining
			sched.Remaining = &remaining
		}
		sched.Timepoints = append([]time.Time(nil), t.Schedule.Timepoints...)
		out.Schedule = &sched
	}
	out.Action = *t.Action.Clone()
	if t.Payload != nil {
		out.Payload = t.Payload.Clone()
	}
	if t.LastRanAt != nil {
		ranAt := *t.LastRanAt
		out.LastRanAt = &ranAt
	}
	if t.UpdatedAt != nil {
		updatedAt := *t.UpdatedAt
		out.UpdatedAt = &updatedAt
	}
	return &out
}

// StatusForSchedule derives the birth status from schedule presence.
func StatusForSchedule(schedule *Schedule) TriggerStatus {
	if schedule != nil {
		return TriggerStatusScheduled
	}
	return TriggerStatusOnDemand
}
