package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/cronbackhq/cronback/internal/storage"
)

// DefaultCheckpointInterval is how often pending map changes are
// flushed to the database.
const DefaultCheckpointInterval = 10 * time.Second

// startCheckpoints schedules the periodic flush on the cron runner.
// SkipIfStillRunning keeps a slow flush from overlapping the next one.
func (c *Controller) startCheckpoints() {
	c.checkpoints.Schedule(cron.Every(c.cfg.CheckpointInterval), cron.FuncJob(func() {
		c.Checkpoint(context.Background())
	}))
	c.checkpoints.Start()
}

// stopCheckpoints halts the runner and waits for an in-flight flush.
func (c *Controller) stopCheckpoints() {
	<-c.checkpoints.Stop().Done()
}

// Checkpoint flushes pending map changes to the store: retired
// triggers leave the map, everything else flagged gets a full-row
// write. Failures re-flag so the next checkpoint retries them.
func (c *Controller) Checkpoint(ctx context.Context) {
	retired := c.triggers.PopRetiredForFlush()
	flagged := c.triggers.TriggersAwaitingFlush()
	if len(retired) == 0 && len(flagged) == 0 {
		return
	}

	flushed := 0
	for _, trigger := range retired {
		if err := c.store.UpdateTrigger(ctx, trigger); err != nil {
			if errors.Is(err, storage.ErrTriggerNotFound) {
				// Deleted underneath us; nothing left to persist.
				continue
			}
			c.logger.Error("Failed to checkpoint retired trigger; it will be retried on next checkpoint",
				zap.String("trigger_id", trigger.ID),
				zap.Error(err))
			c.triggers.PushTrigger(trigger, c.clock.Now())
			continue
		}
		flushed++
	}

	for _, trigger := range flagged {
		if err := c.store.UpdateTrigger(ctx, trigger); err != nil {
			if errors.Is(err, storage.ErrTriggerNotFound) {
				continue
			}
			c.logger.Error("Failed to checkpoint trigger; it will be retried on next checkpoint",
				zap.String("trigger_id", trigger.ID),
				zap.Error(err))
			c.triggers.MarkAwaitingFlush(trigger.ID)
			continue
		}
		flushed++
	}

	c.logger.Debug("Checkpoint complete",
		zap.Int("flushed", flushed),
		zap.Int("retired", len(retired)))
}
