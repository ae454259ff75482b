package fakes

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cronbackhq/cronback/internal/models"
	"github.com/cronbackhq/cronback/internal/storage"
)

// FakeTriggerStore is an in-memory implementation of the trigger store
// with the same uniqueness and tenancy rules as the MySQL client.
type FakeTriggerStore struct {
	mu       sync.Mutex
	triggers map[string]*models.Trigger // by trigger ID

	// Error injection, returned once set.
	InstallErr error
	UpdateErr  error
	DeleteErr  error
}

func NewFakeTriggerStore() *FakeTriggerStore {
	return &FakeTriggerStore{triggers: make(map[string]*models.Trigger)}
}

func (f *FakeTriggerStore) InstallTrigger(_ context.Context, trigger *models.Trigger) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.InstallErr != nil {
		return f.InstallErr
	}
	for _, t := range f.triggers {
		if t.ProjectID == trigger.ProjectID && t.Name == trigger.Name {
			return storage.ErrDuplicateRecord
		}
	}
	stored := trigger.Clone()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	f.triggers[stored.ID] = stored
	return nil
}

func (f *FakeTriggerStore) UpdateTrigger(_ context.Context, trigger *models.Trigger) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	existing, ok := f.triggers[trigger.ID]
	if !ok || existing.ProjectID != trigger.ProjectID {
		return storage.ErrTriggerNotFound
	}
	stored := trigger.Clone()
	stored.CreatedAt = existing.CreatedAt
	now := time.Now().UTC()
	stored.UpdatedAt = &now
	f.triggers[stored.ID] = stored
	return nil
}

func (f *FakeTriggerStore) GetTrigger(_ context.Context, projectID, triggerID string) (*models.Trigger, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.triggers[triggerID]
	if !ok || t.ProjectID != projectID {
		return nil, storage.ErrTriggerNotFound
	}
	return t.Clone(), nil
}

func (f *FakeTriggerStore) GetTriggerByName(_ context.Context, projectID, name string) (*models.Trigger, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.triggers {
		if t.ProjectID == projectID && t.Name == name {
			return t.Clone(), nil
		}
	}
	return nil, storage.ErrTriggerNotFound
}

func (f *FakeTriggerStore) FindTriggerIDForName(_ context.Context, projectID, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.triggers {
		if t.ProjectID == projectID && t.Name == name {
			return t.ID, nil
		}
	}
	return "", storage.ErrTriggerNotFound
}

func (f *FakeTriggerStore) GetTriggerStatus(_ context.Context, projectID, name string) (models.TriggerStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.triggers {
		if t.ProjectID == projectID && t.Name == name {
			return t.Status, nil
		}
	}
	return "", storage.ErrTriggerNotFound
}

func (f *FakeTriggerStore) ListAliveTriggers(_ context.Context) ([]*models.Trigger, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Trigger, 0)
	for _, t := range f.triggers {
		if t.Status.Alive() {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *FakeTriggerStore) ListTriggersByProject(
	_ context.Context,
	projectID string,
	cursor string,
	limit int,
	statuses []models.TriggerStatus,
) ([]*models.Trigger, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	matches := make([]*models.Trigger, 0)
	for _, t := range f.triggers {
		if t.ProjectID != projectID {
			continue
		}
		if cursor != "" && t.ID >= cursor {
			continue
		}
		if len(statuses) > 0 && !containsStatus(statuses, t.Status) {
			continue
		}
		matches = append(matches, t.Clone())
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID > matches[j].ID })

	hasMore := len(matches) > limit
	if hasMore {
		matches = matches[:limit]
	}
	return matches, hasMore, nil
}

func (f *FakeTriggerStore) DeleteTrigger(_ context.Context, projectID, triggerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	t, ok := f.triggers[triggerID]
	if !ok || t.ProjectID != projectID {
		return storage.ErrTriggerNotFound
	}
	delete(f.triggers, triggerID)
	return nil
}

func (f *FakeTriggerStore) DeleteProjectTriggers(_ context.Context, projectID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	for id, t := range f.triggers {
		if t.ProjectID == projectID {
			delete(f.triggers, id)
		}
	}
	return nil
}

// Count reports how many triggers the store holds.
func (f *FakeTriggerStore) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.triggers)
}

func containsStatus(statuses []models.TriggerStatus, status models.TriggerStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
