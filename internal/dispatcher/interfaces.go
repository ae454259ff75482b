package dispatcher

import (
	"context"

	"github.com/cronbackhq/cronback/internal/models"
	platformEvents "github.com/cronbackhq/cronback/platform/events"
)

// RunStore defines run persistence required by the dispatch manager.
type RunStore interface {
	StoreRun(ctx context.Context, run *models.Run) error
	UpdateRun(ctx context.Context, run *models.Run) error
	ListRunsByStatus(ctx context.Context, status models.RunStatus) ([]*models.Run, error)
}

// AttemptStore defines attempt persistence required by webhook delivery.
type AttemptStore interface {
	LogAttempt(ctx context.Context, attempt *models.Attempt) error
}

// EventPublisher abstracts the Kafka publisher for testability.
type EventPublisher interface {
	Publish(ctx context.Context, event platformEvents.RunEvent) error
}
