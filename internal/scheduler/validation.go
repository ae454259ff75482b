package scheduler

import (
	"strings"
	"time"

	"github.com/adhocore/gronx"

	"github.com/cronbackhq/cronback/internal/models"
)

// MaxTimepoints bounds how many explicit fire instants one run_at
// schedule may carry.
const MaxTimepoints = 5000

// URLValidator guards webhook URLs at trigger-definition time. The
// dispatcher re-validates before every delivery attempt.
type URLValidator interface {
	ValidateURL(rawURL string) error
}

// validateSchedule checks the schedule variant rules. A nil schedule
// is valid and produces an on_demand trigger.
func validateSchedule(sched *models.Schedule) error {
	if sched == nil {
		return nil
	}

	switch sched.Type {
	case models.ScheduleTypeRecurring:
		if !gronx.New().IsValid(sched.Cron) {
			return NewValidationError("invalid cron expression: %q", sched.Cron)
		}
		if _, err := time.LoadLocation(sched.EffectiveTimezone()); err != nil {
			return NewValidationError("unrecognized_cron_timezone: %q", sched.EffectiveTimezone())
		}
		if sched.Limit != nil && *sched.Limit < 1 {
			return NewValidationError("limit must be at least 1")
		}
		if len(sched.Timepoints) > 0 {
			return NewValidationError("recurring schedules take no timepoints")
		}
	case models.ScheduleTypeRunAt:
		if len(sched.Timepoints) == 0 {
			return NewValidationError("run_at requires at least one timepoint")
		}
		if len(sched.Timepoints) > MaxTimepoints {
			return NewValidationError("run_at takes at most %d timepoints", MaxTimepoints)
		}
		// Timepoints collide at second precision since ticks have
		// second granularity.
		seen := make(map[int64]struct{}, len(sched.Timepoints))
		for _, tp := range sched.Timepoints {
			key := tp.Truncate(time.Second).Unix()
			if _, dup := seen[key]; dup {
				return NewValidationError("duplicate_run_at_value: %s", tp.UTC().Format(time.RFC3339))
			}
			seen[key] = struct{}{}
		}
		if sched.Cron != "" {
			return NewValidationError("run_at schedules take no cron expression")
		}
	default:
		return NewValidationError("unknown schedule type: %q", sched.Type)
	}
	return nil
}

// normalizeSchedule resets the remaining budget for a fresh definition
// and drops fields that belong to the other variant.
func normalizeSchedule(sched *models.Schedule) {
	if sched == nil {
		return
	}
	switch sched.Type {
	case models.ScheduleTypeRecurring:
		if sched.Limit != nil {
			remaining := *sched.Limit
			sched.Remaining = &remaining
		} else {
			sched.Remaining = nil
		}
		sched.Timepoints = nil
	case models.ScheduleTypeRunAt:
		remaining := uint64(len(sched.Timepoints))
		sched.Remaining = &remaining
		sched.Limit = nil
		sched.Cron = ""
		sched.Timezone = ""
	}
}

// validateAction applies webhook defaults in place and checks the
// result, including a public-URL check on the endpoint.
func validateAction(action *models.Action, urlValidator URLValidator) error {
	if action.Type != models.ActionTypeWebhook {
		return NewValidationError("unsupported action type: %q", action.Type)
	}
	if action.Webhook == nil {
		return NewValidationError("webhook action requires a webhook definition")
	}

	webhook := action.Webhook
	if webhook.HTTPMethod == "" {
		webhook.HTTPMethod = models.DefaultWebhookMethod
	}
	if !webhook.HTTPMethod.Valid() {
		return NewValidationError("unsupported http method: %q", webhook.HTTPMethod)
	}
	if webhook.TimeoutS == 0 {
		webhook.TimeoutS = models.DefaultWebhookTimeoutS
	}
	if webhook.TimeoutS < models.MinWebhookTimeoutS || webhook.TimeoutS > models.MaxWebhookTimeoutS {
		return NewValidationError("Timeout must be between 1.0 and 30.0 seconds")
	}
	if err := urlValidator.ValidateURL(webhook.URL); err != nil {
		return NewValidationError("invalid webhook url: %s", err)
	}

	if retry := webhook.Retry; retry != nil {
		switch retry.Type {
		case models.RetryTypeSimple, models.RetryTypeExponentialBackoff:
		default:
			return NewValidationError("unknown retry type: %q", retry.Type)
		}
		if retry.MaxNumAttempts < 1 {
			return NewValidationError("retry max_num_attempts must be at least 1")
		}
		if retry.DelayS < 0 || retry.MaxDelayS < 0 {
			return NewValidationError("retry delays must not be negative")
		}
	}
	return nil
}

// validatePayload enforces the header and body size caps.
func validatePayload(payload *models.Payload) error {
	if payload == nil {
		return nil
	}
	if len(payload.Headers) > models.MaxPayloadHeaders {
		return NewValidationError("payload takes at most %d headers", models.MaxPayloadHeaders)
	}
	if len(payload.Body) > models.MaxPayloadBodySize {
		return NewValidationError("payload body exceeds %d bytes", models.MaxPayloadBodySize)
	}
	return nil
}

// parseStatusFilter turns the comma-separated status query parameter
// into model statuses.
func parseStatusFilter(raw string) ([]models.TriggerStatus, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	statuses := make([]models.TriggerStatus, 0, len(parts))
	for _, part := range parts {
		status := models.TriggerStatus(strings.TrimSpace(part))
		switch status {
		case models.TriggerStatusScheduled, models.TriggerStatusOnDemand,
			models.TriggerStatusPaused, models.TriggerStatusCancelled,
			models.TriggerStatusExpired:
			statuses = append(statuses, status)
		default:
			return nil, NewValidationError("unknown trigger status: %q", status)
		}
	}
	return statuses, nil
}
