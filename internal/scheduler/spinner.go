package scheduler

import (
	"container/heap"
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cronbackhq/cronback/internal/ids"
	"github.com/cronbackhq/cronback/internal/logging"
	"github.com/cronbackhq/cronback/internal/metrics"
	"github.com/cronbackhq/cronback/internal/models"
	"github.com/cronbackhq/cronback/pkg/clock"
)

// Spinner defaults.
const (
	DefaultSpinnerYieldMax    = 100 * time.Millisecond
	DefaultMaxTriggersPerTick = 100

	dispatchLagWarnThreshold = 10 * time.Second
	completionBuffer         = 1024
)

// SpinnerConfig tunes the tick loop.
type SpinnerConfig struct {
	// YieldMax caps how long a tick may take before the next begins;
	// whatever the tick's work leaves over is slept away.
	YieldMax time.Duration
	// MaxTriggersPerTick bounds dispatch submissions per tick so one
	// overdue burst cannot starve the loop.
	MaxTriggersPerTick int
}

func (c SpinnerConfig) withDefaults() SpinnerConfig {
	if c.YieldMax <= 0 {
		c.YieldMax = DefaultSpinnerYieldMax
	}
	if c.MaxTriggersPerTick <= 0 {
		c.MaxTriggersPerTick = DefaultMaxTriggersPerTick
	}
	return c
}

// completion reports the outcome of one async dispatch submission back
// to the tick loop.
type completion struct {
	triggerID string
	ranAt     time.Time
	err       error
}

// Spinner owns the tick loop: it pops due triggers off a temporal
// min-heap, submits their runs to the dispatcher, and advances their
// iterators. A single goroutine runs the loop; trigger state lives in
// the shared active map.
type Spinner struct {
	cfg        SpinnerConfig
	triggers   *ActiveTriggerMap
	dispatcher RunDispatcher
	metrics    *metrics.Engine
	clock      clock.Clock
	logger     logging.Logger

	heap        *temporalHeap
	completions chan completion
	shutdown    chan struct{}
	done        chan struct{}
	stopOnce    sync.Once
	sleep       func(time.Duration)
}

// NewSpinner wires the tick loop to the active map and the dispatcher.
func NewSpinner(
	cfg SpinnerConfig,
	triggers *ActiveTriggerMap,
	dispatcher RunDispatcher,
	engineMetrics *metrics.Engine,
	logger logging.Logger,
	clk clock.Clock,
) *Spinner {
	return &Spinner{
		cfg:         cfg.withDefaults(),
		triggers:    triggers,
		dispatcher:  dispatcher,
		metrics:     engineMetrics,
		clock:       clk,
		logger:      logger,
		heap:        &temporalHeap{},
		completions: make(chan completion, completionBuffer),
		shutdown:    make(chan struct{}),
		done:        make(chan struct{}),
		sleep:       time.Sleep,
	}
}

// Start primes the heap from the active map and launches the loop.
func (s *Spinner) Start() {
	s.rebuildHeap()
	s.logger.Info("Spinner started",
		zap.Duration("yield_max", s.cfg.YieldMax),
		zap.Int("max_triggers_per_tick", s.cfg.MaxTriggersPerTick))
	go s.run()
}

// Stop signals the loop and waits up to timeout for it to exit.
func (s *Spinner) Stop(timeout time.Duration) error {
	s.stopOnce.Do(func() { close(s.shutdown) })
	select {
	case <-s.done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("spinner did not stop within %s", timeout)
	}
}

func (s *Spinner) run() {
	defer close(s.done)
	for {
		select {
		case <-s.shutdown:
			s.logger.Info("Spinner shutting down")
			return
		default:
		}

		started := time.Now()
		s.tick()
		s.yield(time.Since(started))
	}
}

// tick performs one pass: harvest finished submissions, dispatch due
// triggers up to the per-tick budget, then rebuild the heap if the map
// changed underneath it.
func (s *Spinner) tick() {
	s.harvestCompletions()

	now := s.clock.Now()
	popped := 0
	for s.heap.Len() > 0 && !s.heap.peek().NextTick.After(now) {
		if popped >= s.cfg.MaxTriggersPerTick {
			s.logger.Warn("Tick dispatch budget exhausted; deferring due triggers to the next tick",
				zap.Int("max_triggers_per_tick", s.cfg.MaxTriggersPerTick),
				zap.Int("queued_triggers", s.heap.Len()))
			break
		}
		entry := heap.Pop(s.heap).(TemporalState)
		popped++
		s.processDue(entry, now)
	}

	if s.triggers.Dirty() {
		s.rebuildHeap()
	}
}

// processDue re-checks the live status of a popped entry; heap entries
// go stale whenever the map changes between rebuilds.
func (s *Spinner) processDue(entry TemporalState, now time.Time) {
	status, ok := s.triggers.Status(entry.TriggerID)
	if !ok || status.Retired() {
		return
	}

	switch status {
	case models.TriggerStatusScheduled:
		lag := now.Sub(entry.NextTick)
		s.metrics.DispatchLag.Observe(lag.Seconds())
		if lag > dispatchLagWarnThreshold {
			s.logger.Warn("Trigger dispatched well after its scheduled tick; consider raising max_triggers_per_tick or lowering spinner_yield_max_ms",
				zap.String("trigger_id", entry.TriggerID),
				zap.Duration("lag", lag),
				zap.Int("max_triggers_per_tick", s.cfg.MaxTriggersPerTick),
				zap.Duration("spinner_yield_max", s.cfg.YieldMax))
		}
		s.submitDispatch(entry.TriggerID, now)
		if next, ok := s.triggers.Advance(entry.TriggerID); ok {
			heap.Push(s.heap, TemporalState{TriggerID: entry.TriggerID, NextTick: next})
		}
	case models.TriggerStatusPaused:
		s.logger.Debug("Skipping tick of paused trigger",
			zap.String("trigger_id", entry.TriggerID),
			zap.Time("tick", entry.NextTick))
		next, ok := s.triggers.Skip(entry.TriggerID)
		s.triggers.UpdateLastRanAt(entry.TriggerID, entry.NextTick)
		if ok {
			heap.Push(s.heap, TemporalState{TriggerID: entry.TriggerID, NextTick: next})
		}
	}
}

// submitDispatch snapshots the trigger into a run and hands it to the
// dispatcher off-loop. The tick loop never waits on storage or
// delivery; the submission outcome comes back through the completion
// channel.
func (s *Spinner) submitDispatch(triggerID string, ranAt time.Time) {
	trigger, ok := s.triggers.Get(triggerID)
	if !ok {
		return
	}
	run := newRunFromTrigger(trigger, models.RunModeAsync, ranAt)

	go func() {
		_, err := s.dispatcher.Run(context.Background(), run, models.RunModeAsync)
		select {
		case s.completions <- completion{triggerID: triggerID, ranAt: ranAt, err: err}:
		default:
			s.logger.Warn("Completion channel full; dropping dispatch completion",
				zap.String("trigger_id", triggerID))
		}
	}()
}

// harvestCompletions drains everything buffered without blocking. A
// successful submission moves the trigger's last_ran_at to the instant
// it fired.
func (s *Spinner) harvestCompletions() {
	for {
		select {
		case c := <-s.completions:
			if c.err != nil {
				s.logger.Warn("Dispatch submission failed",
					zap.String("trigger_id", c.triggerID),
					zap.Error(c.err))
				continue
			}
			s.triggers.UpdateLastRanAt(c.triggerID, c.ranAt)
		default:
			return
		}
	}
}

func (s *Spinner) rebuildHeap() {
	s.heap.entries = s.triggers.BuildTemporalStates()
	heap.Init(s.heap)
	s.metrics.ActiveTriggers.Set(float64(s.triggers.Len()))
}

// yield sleeps away whatever the tick left of the yield budget.
func (s *Spinner) yield(elapsed time.Duration) {
	remaining := s.cfg.YieldMax - elapsed
	if remaining < 0 {
		remaining = 0
	}
	s.metrics.YieldDuration.Observe(float64(remaining.Milliseconds()))
	if remaining > 0 {
		s.sleep(remaining)
	}
}

// newRunFromTrigger snapshots the trigger's action and payload into a
// fresh attempting run.
func newRunFromTrigger(trigger *models.Trigger, mode models.RunMode, now time.Time) *models.Run {
	run := &models.Run{
		ID:        ids.NewRunID(trigger.ProjectID),
		TriggerID: trigger.ID,
		ProjectID: trigger.ProjectID,
		Action:    *trigger.Action.Clone(),
		Mode:      mode,
		Status:    models.RunStatusAttempting,
		CreatedAt: now,
	}
	if trigger.Payload != nil {
		run.Payload = trigger.Payload.Clone()
	}
	return run
}

// temporalHeap is a min-heap of fire instants, soonest first.
type temporalHeap struct {
	entries []TemporalState
}

func (h *temporalHeap) Len() int { return len(h.entries) }

func (h *temporalHeap) Less(i, j int) bool {
	return h.entries[i].NextTick.Before(h.entries[j].NextTick)
}

func (h *temporalHeap) Swap(i, j int) {
	h.entries[i], h.entries[j] = h.entries[j], h.entries[i]
}

func (h *temporalHeap) Push(x any) {
	h.entries = append(h.entries, x.(TemporalState))
}

func (h *temporalHeap) Pop() any {
	old := h.entries
	n := len(old)
	entry := old[n-1]
	h.entries = old[:n-1]
	return entry
}

func (h *temporalHeap) peek() TemporalState {
	return h.entries[0]
}
