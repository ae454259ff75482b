package scheduler

import (
	"sync"
	"time"

	"github.com/cronbackhq/cronback/internal/models"
	"github.com/cronbackhq/cronback/internal/schedule"
)

// ActiveTrigger pairs an alive trigger with the iterator that produces
// its future ticks.
type ActiveTrigger struct {
	trigger  *models.Trigger
	iterator *schedule.Iterator
}

func (a *ActiveTrigger) peek() (time.Time, bool) {
	if a.iterator == nil {
		return time.Time{}, false
	}
	return a.iterator.Peek()
}

// TemporalState is one spinner heap entry: the next instant a trigger
// fires.
type TemporalState struct {
	TriggerID string
	NextTick  time.Time
}

// ActiveTriggerMap is the in-memory source of truth for alive triggers.
// The spinner reads ticks from it, the controller mutates it, and a
// periodic checkpoint drains its pending changes back to the database.
// No I/O happens while the lock is held.
type ActiveTriggerMap struct {
	mu              sync.RWMutex
	state           map[string]*ActiveTrigger
	awaitingDBFlush map[string]struct{}
	dirty           bool
}

// NewActiveTriggerMap creates an empty map.
func NewActiveTriggerMap() *ActiveTriggerMap {
	return &ActiveTriggerMap{
		state:           make(map[string]*ActiveTrigger),
		awaitingDBFlush: make(map[string]struct{}),
	}
}

// AddOrUpdate inserts or replaces a trigger. The map keeps its own
// clone. fastForward drops last_ran_at as the iterator anchor so ticks
// missed before now are skipped rather than replayed.
func (m *ActiveTriggerMap) AddOrUpdate(trigger *models.Trigger, fastForward bool, now time.Time) error {
	clone := trigger.Clone()

	var iterator *schedule.Iterator
	if clone.Schedule != nil {
		lastRanAt := clone.LastRanAt
		if fastForward {
			lastRanAt = nil
		}
		it, err := schedule.New(clone.Schedule, lastRanAt, now)
		if err != nil {
			return err
		}
		iterator = it
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state[clone.ID] = &ActiveTrigger{trigger: clone, iterator: iterator}
	m.dirty = true
	return nil
}

// BuildTemporalStates walks the map and returns one heap entry per
// alive trigger that still has a future tick. Alive entries with
// nothing left to fire transition to expired in place and await the
// next checkpoint. Resets the dirty flag.
func (m *ActiveTriggerMap) BuildTemporalStates() []TemporalState {
	m.mu.Lock()
	defer m.mu.Unlock()

	states := make([]TemporalState, 0, len(m.state))
	for id, active := range m.state {
		if !active.trigger.Status.Alive() {
			continue
		}
		tick, ok := active.peek()
		if !ok {
			active.trigger.Status = models.TriggerStatusExpired
			m.awaitingDBFlush[id] = struct{}{}
			continue
		}
		states = append(states, TemporalState{TriggerID: id, NextTick: tick})
	}
	m.dirty = false
	return states
}

// Advance consumes the current tick of an alive trigger and returns
// the following one. Consuming the last tick of a bounded schedule
// expires the trigger. Absent or retired triggers are a no-op.
func (m *ActiveTriggerMap) Advance(id string) (time.Time, bool) {
	return m.consume(id, func(it *schedule.Iterator) (time.Time, bool) {
		return it.Next()
	})
}

// Skip consumes the current tick without charging the remaining budget
// of a recurring schedule. Paused triggers use it so their clock keeps
// moving while runs are withheld.
func (m *ActiveTriggerMap) Skip(id string) (time.Time, bool) {
	return m.consume(id, func(it *schedule.Iterator) (time.Time, bool) {
		return it.Skip()
	})
}

func (m *ActiveTriggerMap) consume(id string, step func(*schedule.Iterator) (time.Time, bool)) (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	active, ok := m.state[id]
	if !ok || !active.trigger.Status.Alive() || active.iterator == nil {
		return time.Time{}, false
	}

	if _, ok := step(active.iterator); !ok {
		m.expireLocked(id, active)
		return time.Time{}, false
	}
	m.syncRemainingLocked(id, active)

	next, ok := active.peek()
	if !ok {
		m.expireLocked(id, active)
		return time.Time{}, false
	}
	return next, true
}

func (m *ActiveTriggerMap) expireLocked(id string, active *ActiveTrigger) {
	active.trigger.Status = models.TriggerStatusExpired
	m.awaitingDBFlush[id] = struct{}{}
	m.dirty = true
}

// syncRemainingLocked copies the iterator's outstanding budget into the
// stored trigger so checkpoints persist it.
func (m *ActiveTriggerMap) syncRemainingLocked(id string, active *ActiveTrigger) {
	if active.trigger.Schedule == nil || active.iterator == nil {
		return
	}
	remaining := active.iterator.Remaining()
	if equalUint64Ptr(active.trigger.Schedule.Remaining, remaining) {
		return
	}
	active.trigger.Schedule.Remaining = remaining
	m.awaitingDBFlush[id] = struct{}{}
}

// Pause marks the trigger paused. Retired triggers reject the change.
func (m *ActiveTriggerMap) Pause(id string) error {
	return m.UpdateStatus(id, models.TriggerStatusPaused, retiredStatuses)
}

// Resume marks the trigger scheduled again. Retired triggers reject
// the change.
func (m *ActiveTriggerMap) Resume(id string) error {
	return m.UpdateStatus(id, models.TriggerStatusScheduled, retiredStatuses)
}

// Cancel marks the trigger cancelled. The caller gates on cancellable
// statuses, so no status is rejected here.
func (m *ActiveTriggerMap) Cancel(id string) error {
	return m.UpdateStatus(id, models.TriggerStatusCancelled, nil)
}

var retiredStatuses = []models.TriggerStatus{
	models.TriggerStatusCancelled,
	models.TriggerStatusExpired,
}

// UpdateStatus transitions a trigger, flagging it for flush only when
// the value actually changed. Transitions out of a rejected status
// fail with InvalidStatusError.
func (m *ActiveTriggerMap) UpdateStatus(id string, status models.TriggerStatus, rejected []models.TriggerStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	active, ok := m.state[id]
	if !ok {
		return NewNotFoundError("trigger %q is not active", id)
	}
	current := active.trigger.Status
	for _, r := range rejected {
		if current == r {
			return NewInvalidStatusError(status.AsOperation(), current)
		}
	}
	if current == status {
		return nil
	}

	active.trigger.Status = status
	m.awaitingDBFlush[id] = struct{}{}
	if status.Retired() {
		m.dirty = true
	}
	return nil
}

// UpdateLastRanAt records a completed run. Async completions can land
// out of order, so the value only ever moves forward.
func (m *ActiveTriggerMap) UpdateLastRanAt(id string, ranAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	active, ok := m.state[id]
	if !ok {
		return
	}
	if active.trigger.LastRanAt != nil && !ranAt.After(*active.trigger.LastRanAt) {
		return
	}
	at := ranAt.UTC()
	active.trigger.LastRanAt = &at
	m.awaitingDBFlush[id] = struct{}{}
}

// Get returns a clone of the live trigger.
func (m *ActiveTriggerMap) Get(id string) (*models.Trigger, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	active, ok := m.state[id]
	if !ok {
		return nil, false
	}
	return active.trigger.Clone(), true
}

// Status returns the live status without cloning.
func (m *ActiveTriggerMap) Status(id string) (models.TriggerStatus, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	active, ok := m.state[id]
	if !ok {
		return "", false
	}
	return active.trigger.Status, true
}

// Contains reports whether the trigger is in the map.
func (m *ActiveTriggerMap) Contains(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.state[id]
	return ok
}

// Remove drops a trigger and its flush flag.
func (m *ActiveTriggerMap) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.state[id]; !ok {
		return
	}
	delete(m.state, id)
	delete(m.awaitingDBFlush, id)
	m.dirty = true
}

// RemoveProject drops every trigger a project owns and reports how
// many were removed.
func (m *ActiveTriggerMap) RemoveProject(projectID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, active := range m.state {
		if active.trigger.ProjectID != projectID {
			continue
		}
		delete(m.state, id)
		delete(m.awaitingDBFlush, id)
		removed++
	}
	if removed > 0 {
		m.dirty = true
	}
	return removed
}

// Clear empties the map. Shutdown calls it after the final checkpoint.
func (m *ActiveTriggerMap) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = make(map[string]*ActiveTrigger)
	m.awaitingDBFlush = make(map[string]struct{})
	m.dirty = true
}

// Len reports the number of triggers in the map, retired stragglers
// included.
func (m *ActiveTriggerMap) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.state)
}

// Dirty reports whether the spinner must rebuild its heap.
func (m *ActiveTriggerMap) Dirty() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dirty
}

// PopRetiredForFlush removes cancelled and expired triggers from the
// map and hands them to the checkpoint. A failed flush pushes them
// back via PushTrigger. Callers must pop before snapshotting flagged
// triggers so a retired trigger is not written twice.
func (m *ActiveTriggerMap) PopRetiredForFlush() []*models.Trigger {
	m.mu.Lock()
	defer m.mu.Unlock()

	var retired []*models.Trigger
	for id, active := range m.state {
		if !active.trigger.Status.Retired() {
			continue
		}
		retired = append(retired, active.trigger)
		delete(m.state, id)
		delete(m.awaitingDBFlush, id)
		m.dirty = true
	}
	return retired
}

// PushTrigger restores a trigger whose flush failed. The iterator is
// rebuilt best-effort; an alive trigger that cannot rebuild will be
// expired on the next heap rebuild.
func (m *ActiveTriggerMap) PushTrigger(trigger *models.Trigger, now time.Time) {
	active := &ActiveTrigger{trigger: trigger}
	if trigger.Status.Alive() && trigger.Schedule != nil {
		if it, err := schedule.New(trigger.Schedule, trigger.LastRanAt, now); err == nil {
			active.iterator = it
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state[trigger.ID] = active
	m.awaitingDBFlush[trigger.ID] = struct{}{}
	m.dirty = true
}

// TriggersAwaitingFlush snapshots clones of every flagged trigger and
// resets the flag set in the same critical section, so changes landing
// after the snapshot are flagged for the next checkpoint.
func (m *ActiveTriggerMap) TriggersAwaitingFlush() []*models.Trigger {
	m.mu.Lock()
	defer m.mu.Unlock()

	flagged := make([]*models.Trigger, 0, len(m.awaitingDBFlush))
	for id := range m.awaitingDBFlush {
		active, ok := m.state[id]
		if !ok {
			continue
		}
		flagged = append(flagged, active.trigger.Clone())
	}
	m.awaitingDBFlush = make(map[string]struct{})
	return flagged
}

// MarkAwaitingFlush re-flags a trigger after its checkpoint write
// failed.
func (m *ActiveTriggerMap) MarkAwaitingFlush(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.state[id]; ok {
		m.awaitingDBFlush[id] = struct{}{}
	}
}

func equalUint64Ptr(a, b *uint64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
