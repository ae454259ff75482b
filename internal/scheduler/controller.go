package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/cronbackhq/cronback/internal/ids"
	"github.com/cronbackhq/cronback/internal/logging"
	"github.com/cronbackhq/cronback/internal/metrics"
	"github.com/cronbackhq/cronback/internal/models"
	"github.com/cronbackhq/cronback/internal/storage"
	"github.com/cronbackhq/cronback/pkg/clock"
)

const (
	// shutdownGrace bounds how long Shutdown waits for the spinner.
	shutdownGrace = 10 * time.Second

	// installRetryDelay spaces the single retry after losing a
	// concurrent-create race.
	installRetryDelay = 250 * time.Millisecond
)

// ControllerConfig tunes the scheduling core.
type ControllerConfig struct {
	Spinner            SpinnerConfig
	CheckpointInterval time.Duration
	// DangerousFastForward skips runs missed while the service was
	// down instead of replaying them on startup.
	DangerousFastForward bool
}

// Controller is the façade every trigger lifecycle operation goes
// through. It owns the active map, the spinner, and the periodic
// checkpoint that flushes in-memory changes back to the store.
type Controller struct {
	cfg          ControllerConfig
	store        TriggerStore
	runs         RunReader
	dispatcher   RunDispatcher
	urlValidator URLValidator
	triggers     *ActiveTriggerMap
	spinner      *Spinner
	names        *NameCache
	checkpoints  *cron.Cron
	clock        clock.Clock
	logger       logging.Logger
	sleep        func(time.Duration)
}

// NewController wires the scheduling core together. Start must be
// called before the controller serves traffic.
func NewController(
	cfg ControllerConfig,
	store TriggerStore,
	runs RunReader,
	dispatcher RunDispatcher,
	urlValidator URLValidator,
	engineMetrics *metrics.Engine,
	logger logging.Logger,
	clk clock.Clock,
) (*Controller, error) {
	if cfg.CheckpointInterval <= 0 {
		cfg.CheckpointInterval = DefaultCheckpointInterval
	}

	names, err := NewNameCache(nameCacheSize)
	if err != nil {
		return nil, err
	}

	triggers := NewActiveTriggerMap()
	return &Controller{
		cfg:          cfg,
		store:        store,
		runs:         runs,
		dispatcher:   dispatcher,
		urlValidator: urlValidator,
		triggers:     triggers,
		spinner:      NewSpinner(cfg.Spinner, triggers, dispatcher, engineMetrics, logger, clk),
		names:        names,
		checkpoints:  cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		clock:        clk,
		logger:       logger,
		sleep:        time.Sleep,
	}, nil
}

// Start loads alive triggers into the map, launches the spinner, and
// begins the checkpoint schedule.
func (c *Controller) Start(ctx context.Context) error {
	if err := c.loadTriggersFromDatabase(ctx); err != nil {
		return err
	}

	c.spinner.Start()
	c.startCheckpoints()

	c.logger.Info("Controller started",
		zap.Duration("checkpoint_interval", c.cfg.CheckpointInterval),
		zap.Bool("dangerous_fast_forward", c.cfg.DangerousFastForward))
	return nil
}

func (c *Controller) loadTriggersFromDatabase(ctx context.Context) error {
	if c.cfg.DangerousFastForward {
		c.logger.Warn("Dangerous fast-forward enabled; runs missed while the service was down will be skipped")
	}

	alive, err := c.store.ListAliveTriggers(ctx)
	if err != nil {
		return fmt.Errorf("failed to load alive triggers: %w", err)
	}

	now := c.clock.Now()
	for _, trigger := range alive {
		if err := c.triggers.AddOrUpdate(trigger, c.cfg.DangerousFastForward, now); err != nil {
			c.logger.Error("Failed to restore trigger into the active map",
				zap.String("trigger_id", trigger.ID),
				zap.Error(err))
		}
	}
	c.logger.Info("Loaded alive triggers from the database", zap.Int("count", len(alive)))
	return nil
}

// Shutdown stops the checkpoint runner and the spinner, flushes one
// final checkpoint, and clears the map.
func (c *Controller) Shutdown(ctx context.Context) error {
	c.stopCheckpoints()

	stopErr := c.spinner.Stop(shutdownGrace)
	if stopErr != nil {
		c.logger.Error("Spinner did not stop cleanly", zap.Error(stopErr))
	}

	c.Checkpoint(ctx)
	c.triggers.Clear()
	c.logger.Info("Controller stopped")
	return stopErr
}

// UpsertTrigger validates and persists a trigger definition. With
// mustNotExist an existing name is a typed conflict; otherwise the
// existing trigger is replaced wholesale.
func (c *Controller) UpsertTrigger(ctx context.Context, projectID string, req *models.UpsertTriggerRequest, mustNotExist bool) (*models.Trigger, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, NewValidationError("name is required")
	}
	if err := validateSchedule(req.Schedule); err != nil {
		return nil, err
	}
	if err := validateAction(&req.Action, c.urlValidator); err != nil {
		return nil, err
	}
	if err := validatePayload(req.Payload); err != nil {
		return nil, err
	}
	normalizeSchedule(req.Schedule)

	existingID, err := c.resolveTriggerID(ctx, projectID, req.Name)
	if err != nil && !errors.Is(err, storage.ErrTriggerNotFound) {
		return nil, fmt.Errorf("failed to resolve trigger name: %w", err)
	}

	if existingID != "" {
		if mustNotExist {
			return nil, NewAlreadyExistsError("trigger with name %q already exists", req.Name)
		}
		return c.replaceTrigger(ctx, projectID, existingID, req)
	}

	created, err := c.installTrigger(ctx, projectID, req)
	if errors.Is(err, storage.ErrDuplicateRecord) {
		// Lost a concurrent-create race. Give the winning insert a
		// moment to land, then resolve again and treat it as existing.
		c.logger.Info("Concurrent trigger create detected; retrying once",
			zap.String("project_id", projectID),
			zap.String("name", req.Name))
		c.sleep(installRetryDelay)

		existingID, err = c.resolveTriggerID(ctx, projectID, req.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve trigger name after duplicate: %w", err)
		}
		if mustNotExist {
			return nil, NewAlreadyExistsError("trigger with name %q already exists", req.Name)
		}
		return c.replaceTrigger(ctx, projectID, existingID, req)
	}
	return created, err
}

func (c *Controller) installTrigger(ctx context.Context, projectID string, req *models.UpsertTriggerRequest) (*models.Trigger, error) {
	trigger := &models.Trigger{
		ID:          ids.NewTriggerID(projectID),
		ProjectID:   projectID,
		Name:        req.Name,
		Description: req.Description,
		Reference:   req.Reference,
		Schedule:    req.Schedule,
		Action:      req.Action,
		Payload:     req.Payload,
		Status:      models.StatusForSchedule(req.Schedule),
		CreatedAt:   c.clock.Now(),
	}

	if err := c.store.InstallTrigger(ctx, trigger); err != nil {
		if errors.Is(err, storage.ErrDuplicateRecord) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to install trigger: %w", err)
	}

	stored, err := c.store.GetTrigger(ctx, projectID, trigger.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read back trigger: %w", err)
	}

	if stored.Status == models.TriggerStatusScheduled {
		if err := c.triggers.AddOrUpdate(stored, false, c.clock.Now()); err != nil {
			return nil, fmt.Errorf("failed to activate trigger: %w", err)
		}
	}
	c.names.Put(projectID, stored.Name, stored.ID)

	c.logger.Info("Trigger installed",
		zap.String("trigger_id", stored.ID),
		zap.String("project_id", projectID),
		zap.String("status", string(stored.Status)))
	return stored, nil
}

func (c *Controller) replaceTrigger(ctx context.Context, projectID, triggerID string, req *models.UpsertTriggerRequest) (*models.Trigger, error) {
	existing, err := c.store.GetTrigger(ctx, projectID, triggerID)
	if err != nil {
		return nil, c.asTriggerNotFound(projectID, req.Name, err)
	}

	updated := existing.Clone()
	updated.Name = req.Name
	updated.Description = req.Description
	updated.Reference = req.Reference
	updated.Schedule = req.Schedule
	updated.Action = req.Action
	updated.Payload = req.Payload
	updated.Status = models.StatusForSchedule(req.Schedule)

	if err := c.store.UpdateTrigger(ctx, updated); err != nil {
		return nil, c.asTriggerNotFound(projectID, req.Name, err)
	}

	// Re-fetch so callers and the map see the store-assigned updated_at.
	stored, err := c.store.GetTrigger(ctx, projectID, triggerID)
	if err != nil {
		return nil, c.asTriggerNotFound(projectID, req.Name, err)
	}

	if stored.Status == models.TriggerStatusScheduled {
		if err := c.triggers.AddOrUpdate(stored, true, c.clock.Now()); err != nil {
			return nil, fmt.Errorf("failed to activate trigger: %w", err)
		}
	} else {
		c.triggers.Remove(stored.ID)
	}
	c.names.Put(projectID, stored.Name, stored.ID)

	c.logger.Info("Trigger replaced",
		zap.String("trigger_id", stored.ID),
		zap.String("project_id", projectID),
		zap.String("status", string(stored.Status)))
	return stored, nil
}

// GetTrigger returns the freshest view of a trigger: the active map
// when it holds the trigger, the store otherwise.
func (c *Controller) GetTrigger(ctx context.Context, projectID, name string) (*models.Trigger, error) {
	triggerID, err := c.resolveTriggerID(ctx, projectID, name)
	if err != nil {
		return nil, c.asTriggerNotFound(projectID, name, err)
	}

	if trigger, ok := c.triggers.Get(triggerID); ok {
		if trigger.ProjectID != projectID {
			return nil, NewNotFoundError("trigger %q not found", name)
		}
		return trigger, nil
	}

	trigger, err := c.store.GetTrigger(ctx, projectID, triggerID)
	if err != nil {
		return nil, c.asTriggerNotFound(projectID, name, err)
	}
	return trigger, nil
}

// ListTriggers pages a project's triggers newest-first, overlaying
// rows the active map holds a fresher copy of.
func (c *Controller) ListTriggers(ctx context.Context, projectID string, query *models.ListQuery) ([]*models.Trigger, bool, error) {
	statuses, err := parseStatusFilter(query.Status)
	if err != nil {
		return nil, false, err
	}

	page, hasMore, err := c.store.ListTriggersByProject(ctx, projectID, query.Cursor, query.EffectiveLimit(), statuses)
	if err != nil {
		return nil, false, fmt.Errorf("failed to list triggers: %w", err)
	}

	for i, trigger := range page {
		if fresh, ok := c.triggers.Get(trigger.ID); ok && fresh.ProjectID == projectID {
			page[i] = fresh
		}
	}
	return page, hasMore, nil
}

// RunTrigger fires a trigger immediately, regardless of its schedule.
// Only cancelled triggers refuse a manual run.
func (c *Controller) RunTrigger(ctx context.Context, projectID, name string, mode models.RunMode) (*models.Run, error) {
	if mode == "" {
		mode = models.RunModeAsync
	}

	trigger, err := c.GetTrigger(ctx, projectID, name)
	if err != nil {
		return nil, err
	}
	if trigger.Status == models.TriggerStatusCancelled {
		return nil, NewInvalidStatusError("run", trigger.Status)
	}

	run, err := c.dispatcher.Run(ctx, newRunFromTrigger(trigger, mode, c.clock.Now()), mode)
	if err != nil {
		return nil, fmt.Errorf("failed to dispatch run: %w", err)
	}
	return run, nil
}

// PauseTrigger withholds future runs while the schedule keeps
// advancing.
func (c *Controller) PauseTrigger(ctx context.Context, projectID, name string) error {
	return c.setAliveStatus(ctx, projectID, name, "pause", c.triggers.Pause)
}

// ResumeTrigger reverses a pause.
func (c *Controller) ResumeTrigger(ctx context.Context, projectID, name string) error {
	return c.setAliveStatus(ctx, projectID, name, "resume", c.triggers.Resume)
}

func (c *Controller) setAliveStatus(ctx context.Context, projectID, name, operation string, apply func(string) error) error {
	triggerID, err := c.resolveTriggerID(ctx, projectID, name)
	if err != nil {
		return c.asTriggerNotFound(projectID, name, err)
	}

	status, err := c.store.GetTriggerStatus(ctx, projectID, name)
	if err != nil {
		return c.asTriggerNotFound(projectID, name, err)
	}
	if !status.Alive() {
		return NewInvalidStatusError(operation, status)
	}
	return apply(triggerID)
}

// CancelTrigger retires a trigger permanently. Scheduled and paused
// triggers cancel through the map so the checkpoint persists them;
// on_demand triggers write straight through.
func (c *Controller) CancelTrigger(ctx context.Context, projectID, name string) error {
	trigger, err := c.GetTrigger(ctx, projectID, name)
	if err != nil {
		return err
	}
	if !trigger.Status.Cancellable() {
		return NewInvalidStatusError("cancel", trigger.Status)
	}

	if trigger.Status == models.TriggerStatusOnDemand {
		return c.cancelInStore(ctx, projectID, trigger.ID)
	}

	if err := c.triggers.Cancel(trigger.ID); err != nil {
		var notFoundErr NotFoundError
		if errors.As(err, &notFoundErr) {
			return c.cancelInStore(ctx, projectID, trigger.ID)
		}
		return err
	}
	return nil
}

func (c *Controller) cancelInStore(ctx context.Context, projectID, triggerID string) error {
	trigger, err := c.store.GetTrigger(ctx, projectID, triggerID)
	if err != nil {
		if errors.Is(err, storage.ErrTriggerNotFound) {
			return NewNotFoundError("trigger %q not found", triggerID)
		}
		return fmt.Errorf("failed to cancel trigger: %w", err)
	}

	trigger.Status = models.TriggerStatusCancelled
	if err := c.store.UpdateTrigger(ctx, trigger); err != nil {
		return fmt.Errorf("failed to cancel trigger: %w", err)
	}
	return nil
}

// DeleteTrigger removes a trigger everywhere: map, store, name cache.
func (c *Controller) DeleteTrigger(ctx context.Context, projectID, name string) error {
	triggerID, err := c.resolveTriggerID(ctx, projectID, name)
	if err != nil {
		return c.asTriggerNotFound(projectID, name, err)
	}

	c.triggers.Remove(triggerID)
	if err := c.store.DeleteTrigger(ctx, projectID, triggerID); err != nil {
		return c.asTriggerNotFound(projectID, name, err)
	}
	c.names.Evict(projectID, name)

	c.logger.Info("Trigger deleted",
		zap.String("trigger_id", triggerID),
		zap.String("project_id", projectID))
	return nil
}

// DeleteProjectTriggers wipes a project. The map empties first so a
// concurrent checkpoint cannot resurrect deleted rows.
func (c *Controller) DeleteProjectTriggers(ctx context.Context, projectID string) error {
	removed := c.triggers.RemoveProject(projectID)
	if err := c.store.DeleteProjectTriggers(ctx, projectID); err != nil {
		return fmt.Errorf("failed to delete project triggers: %w", err)
	}
	c.names.EvictProject(projectID)

	c.logger.Info("Project triggers deleted",
		zap.String("project_id", projectID),
		zap.Int("removed_from_map", removed))
	return nil
}

// GetRun fetches one run scoped to the caller's project.
func (c *Controller) GetRun(ctx context.Context, projectID, runID string) (*models.Run, error) {
	run, err := c.runs.GetRun(ctx, projectID, runID)
	if err != nil {
		if errors.Is(err, storage.ErrRunNotFound) {
			return nil, NewNotFoundError("run %q not found", runID)
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns pages a trigger's runs newest-first, each joined with its
// latest attempt.
func (c *Controller) ListRuns(ctx context.Context, projectID, triggerName string, query *models.ListQuery) ([]storage.RunWithLatestAttempt, bool, error) {
	triggerID, err := c.resolveTriggerID(ctx, projectID, triggerName)
	if err != nil {
		return nil, false, c.asTriggerNotFound(projectID, triggerName, err)
	}

	runs, hasMore, err := c.runs.ListRunsByTrigger(ctx, projectID, triggerID, query.Cursor, query.EffectiveLimit())
	if err != nil {
		return nil, false, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, hasMore, nil
}

// ListAttempts pages the delivery attempts of one run.
func (c *Controller) ListAttempts(ctx context.Context, projectID, runID string, query *models.ListQuery) ([]*models.Attempt, bool, error) {
	if _, err := c.GetRun(ctx, projectID, runID); err != nil {
		return nil, false, err
	}

	attempts, hasMore, err := c.runs.ListAttemptsForRun(ctx, projectID, runID, query.Cursor, query.EffectiveLimit())
	if err != nil {
		return nil, false, fmt.Errorf("failed to list attempts: %w", err)
	}
	return attempts, hasMore, nil
}

// resolveTriggerID maps a project-scoped name to its id through the
// LRU cache.
func (c *Controller) resolveTriggerID(ctx context.Context, projectID, name string) (string, error) {
	if id, ok := c.names.Get(projectID, name); ok {
		return id, nil
	}
	id, err := c.store.FindTriggerIDForName(ctx, projectID, name)
	if err != nil {
		return "", err
	}
	c.names.Put(projectID, name, id)
	return id, nil
}

// asTriggerNotFound converts a store miss into the API-facing typed
// error, evicting any stale cache entry on the way.
func (c *Controller) asTriggerNotFound(projectID, name string, err error) error {
	if errors.Is(err, storage.ErrTriggerNotFound) {
		c.names.Evict(projectID, name)
		return NewNotFoundError("trigger %q not found", name)
	}
	return err
}
