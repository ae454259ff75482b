package scheduler

import (
	"context"

	"github.com/cronbackhq/cronback/internal/models"
	"github.com/cronbackhq/cronback/internal/storage"
)

// TriggerStore defines DB operations required by the scheduling core.
type TriggerStore interface {
	InstallTrigger(ctx context.Context, trigger *models.Trigger) error
	UpdateTrigger(ctx context.Context, trigger *models.Trigger) error
	GetTrigger(ctx context.Context, projectID, triggerID string) (*models.Trigger, error)
	GetTriggerByName(ctx context.Context, projectID, name string) (*models.Trigger, error)
	FindTriggerIDForName(ctx context.Context, projectID, name string) (string, error)
	GetTriggerStatus(ctx context.Context, projectID, name string) (models.TriggerStatus, error)
	ListAliveTriggers(ctx context.Context) ([]*models.Trigger, error)
	ListTriggersByProject(ctx context.Context, projectID, cursor string, limit int, statuses []models.TriggerStatus) ([]*models.Trigger, bool, error)
	DeleteTrigger(ctx context.Context, projectID, triggerID string) error
	DeleteProjectTriggers(ctx context.Context, projectID string) error
}

// RunReader defines the read-side run queries the controller serves.
type RunReader interface {
	GetRun(ctx context.Context, projectID, runID string) (*models.Run, error)
	ListRunsByTrigger(ctx context.Context, projectID, triggerID, cursor string, limit int) ([]storage.RunWithLatestAttempt, bool, error)
	ListAttemptsForRun(ctx context.Context, projectID, runID, cursor string, limit int) ([]*models.Attempt, bool, error)
}

// RunDispatcher abstracts the dispatch manager for the spinner and the
// controller.
type RunDispatcher interface {
	Run(ctx context.Context, run *models.Run, mode models.RunMode) (*models.Run, error)
}
