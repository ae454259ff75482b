package dispatcher

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cronbackhq/cronback/internal/logging"
	"github.com/cronbackhq/cronback/internal/metrics"
	"github.com/cronbackhq/cronback/internal/models"
	platformEvents "github.com/cronbackhq/cronback/platform/events"
	"github.com/cronbackhq/cronback/pkg/clock"
)

// Manager owns run execution: it persists new runs, drives their
// webhook deliveries, and resumes unfinished runs on startup.
type Manager struct {
	runStore     RunStore
	attemptStore AttemptStore
	publisher    EventPublisher
	validator    *URLValidator
	metrics      *metrics.Engine
	clock        clock.Clock
	logger       logging.Logger
}

// NewManager creates a dispatch manager. The publisher may be nil, in
// which case run lifecycle events are not emitted.
func NewManager(
	runStore RunStore,
	attemptStore AttemptStore,
	publisher EventPublisher,
	validator *URLValidator,
	metricsEngine *metrics.Engine,
	clk clock.Clock,
	logger logging.Logger,
) *Manager {
	return &Manager{
		runStore:     runStore,
		attemptStore: attemptStore,
		publisher:    publisher,
		validator:    validator,
		metrics:      metricsEngine,
		clock:        clk,
		logger:       logger,
	}
}

// Run persists the run and executes its delivery. Async returns the
// stored run immediately while delivery proceeds in the background;
// Sync blocks until the run reaches a terminal status.
func (m *Manager) Run(ctx context.Context, run *models.Run, mode models.RunMode) (*models.Run, error) {
	if err := m.runStore.StoreRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to store run: %w", err)
	}
	m.publishRunCreated(ctx, run)

	job := m.newJob(run)
	switch mode {
	case models.RunModeAsync:
		pending := run.Clone()
		go m.execute(context.Background(), job)
		return pending, nil
	case models.RunModeSync:
		return m.execute(ctx, job), nil
	default:
		return nil, fmt.Errorf("unknown run mode: %q", mode)
	}
}

// RecoverPendingRuns resumes runs a previous process left in the
// Attempting status. The recovered sequence starts its attempt
// numbering over at 1.
func (m *Manager) RecoverPendingRuns(ctx context.Context) error {
	pending, err := m.runStore.ListRunsByStatus(ctx, models.RunStatusAttempting)
	if err != nil {
		return fmt.Errorf("failed to list pending runs: %w", err)
	}

	m.logger.Info("Loaded pending runs from the database",
		zap.Int("count", len(pending)))

	for _, run := range pending {
		job := m.newJob(run)
		go m.execute(context.Background(), job)
	}
	return nil
}

func (m *Manager) newJob(run *models.Run) *WebhookJob {
	return &WebhookJob{
		run:          run,
		runStore:     m.runStore,
		attemptStore: m.attemptStore,
		publisher:    m.publisher,
		validator:    m.validator,
		metrics:      m.metrics,
		clock:        m.clock,
		logger:       m.logger,
		sleep:        time.Sleep,
	}
}

// execute brackets a job with the inflight gauge and emits the
// terminal lifecycle event once the run settles.
func (m *Manager) execute(ctx context.Context, job *WebhookJob) *models.Run {
	m.metrics.InflightRuns.Inc()
	run := job.Execute(ctx)
	m.metrics.InflightRuns.Dec()

	totalDuration := m.clock.Now().Sub(run.CreatedAt)
	if totalDuration < 0 {
		totalDuration = 0
	}

	switch run.Status {
	case models.RunStatusSucceeded:
		m.publishTerminalEvent(ctx, platformEvents.KindRunSucceeded, run, totalDuration)
	case models.RunStatusFailed:
		m.publishTerminalEvent(ctx, platformEvents.KindRunFailed, run, totalDuration)
	}
	return run
}

func (m *Manager) publishRunCreated(ctx context.Context, run *models.Run) {
	if m.publisher == nil {
		return
	}
	event := platformEvents.RunEvent{
		EventID:    uuid.NewString(),
		Kind:       platformEvents.KindRunCreated,
		ProjectID:  run.ProjectID,
		TriggerID:  run.TriggerID,
		RunID:      run.ID,
		OccurredAt: m.clock.Now(),
	}
	if err := m.publisher.Publish(ctx, event); err != nil {
		m.logger.Warn("Failed to publish run event",
			zap.String("run_id", run.ID),
			zap.String("kind", string(platformEvents.KindRunCreated)),
			zap.Error(err))
	}
}

func (m *Manager) publishTerminalEvent(
	ctx context.Context,
	kind platformEvents.EventKind,
	run *models.Run,
	totalDuration time.Duration,
) {
	if m.publisher == nil {
		return
	}
	event := platformEvents.RunEvent{
		EventID:         uuid.NewString(),
		Kind:            kind,
		ProjectID:       run.ProjectID,
		TriggerID:       run.TriggerID,
		RunID:           run.ID,
		LatestAttemptID: run.LatestAttemptID,
		TotalDurationS:  totalDuration.Seconds(),
		OccurredAt:      m.clock.Now(),
	}
	if err := m.publisher.Publish(ctx, event); err != nil {
		m.logger.Warn("Failed to publish run event",
			zap.String("run_id", run.ID),
			zap.String("kind", string(kind)),
			zap.Error(err))
	}
}
