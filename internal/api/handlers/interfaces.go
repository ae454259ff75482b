package handlers

import (
	"context"

	"github.com/cronbackhq/cronback/internal/models"
	"github.com/cronbackhq/cronback/internal/storage"
)

// TriggerController defines the trigger lifecycle operations the API
// exposes. Satisfied by *scheduler.Controller.
type TriggerController interface {
	UpsertTrigger(ctx context.Context, projectID string, req *models.UpsertTriggerRequest, mustNotExist bool) (*models.Trigger, error)
	GetTrigger(ctx context.Context, projectID, name string) (*models.Trigger, error)
	ListTriggers(ctx context.Context, projectID string, query *models.ListQuery) ([]*models.Trigger, bool, error)
	RunTrigger(ctx context.Context, projectID, name string, mode models.RunMode) (*models.Run, error)
	PauseTrigger(ctx context.Context, projectID, name string) error
	ResumeTrigger(ctx context.Context, projectID, name string) error
	CancelTrigger(ctx context.Context, projectID, name string) error
	DeleteTrigger(ctx context.Context, projectID, name string) error
	ListRuns(ctx context.Context, projectID, triggerName string, query *models.ListQuery) ([]storage.RunWithLatestAttempt, bool, error)
}

// RunQueries defines the run and attempt read side served by the API.
type RunQueries interface {
	GetRun(ctx context.Context, projectID, runID string) (*models.Run, error)
	ListAttempts(ctx context.Context, projectID, runID string, query *models.ListQuery) ([]*models.Attempt, bool, error)
}
