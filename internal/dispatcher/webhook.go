package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cronbackhq/cronback/internal/ids"
	"github.com/cronbackhq/cronback/internal/logging"
	"github.com/cronbackhq/cronback/internal/metrics"
	"github.com/cronbackhq/cronback/internal/models"
	platformEvents "github.com/cronbackhq/cronback/platform/events"
	"github.com/cronbackhq/cronback/pkg/clock"
)

// Headers attached to every webhook delivery. User payload headers
// take precedence when names collide.
const (
	HeaderRunID           = "X-Cronback-Run-Id"
	HeaderProjectID       = "X-Cronback-Project-Id"
	HeaderDeliveryAttempt = "X-Cronback-Delivery-Attempt"
)

// WebhookJob executes the attempt sequence of one run: it delivers the
// webhook, persists every attempt, and settles the run's terminal
// status. Store failures are logged and never interrupt the sequence.
type WebhookJob struct {
	run          *models.Run
	runStore     RunStore
	attemptStore AttemptStore
	publisher    EventPublisher
	validator    *URLValidator
	metrics      *metrics.Engine
	clock        clock.Clock
	logger       logging.Logger
	sleep        func(time.Duration)
}

// Execute runs the attempt sequence to completion and returns the run
// in its terminal status.
func (j *WebhookJob) Execute(ctx context.Context) *models.Run {
	webhook := j.run.Action.Webhook
	plan := NewRetryPlan(webhook.Retry)

	j.logger.Info("Executing webhook action",
		zap.String("run_id", j.run.ID))

	for {
		delay, ok := plan.Next()
		if !ok {
			break
		}
		if j.run.Status == models.RunStatusSucceeded {
			// No need for further attempts.
			break
		}

		if !delay.FirstAttempt() {
			j.logger.Info(fmt.Sprintf(
				"Previous attempt has failed. Next attempt %d/%d will run after %.1fs",
				delay.AttemptNum, delay.AttemptsLimit(), delay.Duration.Seconds()),
				zap.String("run_id", j.run.ID),
				zap.String("project_id", j.run.ProjectID),
				zap.String("trigger_id", j.run.TriggerID))
		}
		j.sleep(delay.Duration)

		j.logger.Info(fmt.Sprintf(
			"Executing attempt %d/%d on this run",
			delay.AttemptNum, delay.AttemptsLimit()),
			zap.String("run_id", j.run.ID),
			zap.String("project_id", j.run.ProjectID),
			zap.String("trigger_id", j.run.TriggerID))
		j.metrics.Attempts.Inc()

		attemptStart := j.clock.Now()
		attemptID := ids.NewAttemptID(j.run.ProjectID)

		details := j.dispatch(ctx, attemptID, delay.AttemptNum, webhook)

		status := models.AttemptStatusFailed
		if details.Succeeded() {
			status = models.AttemptStatusSucceeded
		}
		attempt := &models.Attempt{
			ID:         attemptID,
			RunID:      j.run.ID,
			TriggerID:  j.run.TriggerID,
			ProjectID:  j.run.ProjectID,
			AttemptNum: delay.AttemptNum,
			Status:     status,
			Details:    details,
			CreatedAt:  attemptStart,
		}

		if err := j.attemptStore.LogAttempt(ctx, attempt); err != nil {
			j.logger.Error("Failed to log attempt to database",
				zap.String("attempt_id", attemptID),
				zap.Error(err))
		}

		j.run.LatestAttemptID = attempt.ID
		// Record the status if successful to avoid an extra DB write.
		if details.Succeeded() {
			j.run.Status = models.RunStatusSucceeded
			j.publishAttemptEvent(ctx, platformEvents.KindAttemptSucceeded, attempt)
		} else {
			j.publishAttemptEvent(ctx, platformEvents.KindAttemptFailed, attempt)
		}

		if err := j.runStore.UpdateRun(ctx, j.run); err != nil {
			j.logger.Error("Failed to persist run status",
				zap.String("run_id", j.run.ID),
				zap.Error(err))
		}
	}

	// Exhausted all retries, or we succeeded.
	if j.run.Status != models.RunStatusSucceeded {
		j.run.Status = models.RunStatusFailed
		if err := j.runStore.UpdateRun(ctx, j.run); err != nil {
			j.logger.Error("Failed to persist run status",
				zap.String("run_id", j.run.ID),
				zap.Error(err))
		}
	}
	return j.run
}

// dispatch performs a single HTTP delivery and reports what happened
// on the wire. The URL is re-validated on every attempt because DNS
// may have changed since the trigger was defined.
func (j *WebhookJob) dispatch(
	ctx context.Context,
	attemptID string,
	attemptNum uint32,
	webhook *models.Webhook,
) models.WebhookAttemptDetails {
	if err := j.validator.ValidateURL(webhook.URL); err != nil {
		// API validation should have caught this already.
		j.logger.Warn("Webhook validation failure",
			zap.String("project_id", j.run.ProjectID),
			zap.String("trigger_id", j.run.TriggerID),
			zap.String("run_id", j.run.ID),
			zap.Error(err))
		return models.AttemptDetailsWithError(
			fmt.Sprintf("Webhook validation failure: %s", err))
	}

	// Redirects are never followed so a vetted public URL cannot bounce
	// the request into a private network.
	client := &http.Client{
		Timeout: webhook.Timeout(),
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	var body io.Reader
	if j.run.Payload != nil {
		body = strings.NewReader(j.run.Payload.Body)
	}

	req, err := http.NewRequestWithContext(ctx, string(webhook.HTTPMethod), webhook.URL, body)
	if err != nil {
		return models.AttemptDetailsWithError("Request failed")
	}

	req.Header.Set(HeaderRunID, j.run.ID)
	req.Header.Set(HeaderProjectID, j.run.ProjectID)
	req.Header.Set(HeaderDeliveryAttempt, strconv.FormatUint(uint64(attemptNum), 10))

	if j.run.Payload != nil {
		// User headers take precedence over the cronback headers.
		for name, value := range j.run.Payload.Headers {
			req.Header.Set(name, value)
		}
		req.Header.Set("Content-Type", j.run.Payload.EffectiveContentType())
	}

	requestStart := time.Now()
	resp, err := client.Do(req)
	latency := time.Since(requestStart)

	if err != nil {
		j.logger.Debug(fmt.Sprintf("Request for attempt '%s' failed", attemptID),
			zap.Error(err))
		return models.AttemptDetailsWithError(classifyRequestError(err))
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	code := resp.StatusCode
	return models.WebhookAttemptDetails{
		ResponseCode:     &code,
		ResponseLatencyS: latency.Seconds(),
	}
}

func (j *WebhookJob) publishAttemptEvent(
	ctx context.Context,
	kind platformEvents.EventKind,
	attempt *models.Attempt,
) {
	if j.publisher == nil {
		return
	}
	event := platformEvents.RunEvent{
		EventID:      uuid.NewString(),
		Kind:         kind,
		ProjectID:    attempt.ProjectID,
		TriggerID:    attempt.TriggerID,
		RunID:        attempt.RunID,
		AttemptID:    attempt.ID,
		AttemptNum:   attempt.AttemptNum,
		ResponseCode: attempt.Details.ResponseCode,
		ErrorMessage: attempt.Details.ErrorMessage,
		OccurredAt:   j.clock.Now(),
	}
	if err := j.publisher.Publish(ctx, event); err != nil {
		j.logger.Warn("Failed to publish run event",
			zap.String("run_id", attempt.RunID),
			zap.String("kind", string(kind)),
			zap.Error(err))
	}
}

// classifyRequestError maps transport failures onto the short messages
// stored on the attempt record.
func classifyRequestError(err error) string {
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return "Connection Failed"
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return "Request timeout"
	}
	return "Request failed"
}
