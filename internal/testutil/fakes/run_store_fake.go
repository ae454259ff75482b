package fakes

import (
	"context"
	"sort"
	"sync"

	"github.com/cronbackhq/cronback/internal/models"
	"github.com/cronbackhq/cronback/internal/storage"
)

// FakeRunStore is an in-memory run store. Linking an attempt store lets
// run listings resolve their latest attempt like the MySQL join does.
type FakeRunStore struct {
	mu   sync.Mutex
	runs map[string]*models.Run

	// Attempts, when set, backs the latest-attempt join.
	Attempts *FakeAttemptStore

	StoreErr  error
	UpdateErr error
}

func NewFakeRunStore() *FakeRunStore {
	return &FakeRunStore{runs: make(map[string]*models.Run)}
}

func (f *FakeRunStore) StoreRun(_ context.Context, run *models.Run) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.StoreErr != nil {
		return f.StoreErr
	}
	f.runs[run.ID] = run.Clone()
	return nil
}

// UpdateRun mirrors the MySQL client: only status and latest attempt
// change after a run is stored.
func (f *FakeRunStore) UpdateRun(_ context.Context, run *models.Run) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	existing, ok := f.runs[run.ID]
	if !ok || existing.ProjectID != run.ProjectID {
		return storage.ErrRunNotFound
	}
	existing.Status = run.Status
	existing.LatestAttemptID = run.LatestAttemptID
	return nil
}

func (f *FakeRunStore) GetRun(_ context.Context, projectID, runID string) (*models.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	run, ok := f.runs[runID]
	if !ok || run.ProjectID != projectID {
		return nil, storage.ErrRunNotFound
	}
	return run.Clone(), nil
}

func (f *FakeRunStore) ListRunsByStatus(_ context.Context, status models.RunStatus) ([]*models.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Run, 0)
	for _, run := range f.runs {
		if run.Status == status {
			out = append(out, run.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *FakeRunStore) ListRunsByTrigger(
	ctx context.Context,
	projectID string,
	triggerID string,
	cursor string,
	limit int,
) ([]storage.RunWithLatestAttempt, bool, error) {
	f.mu.Lock()
	matches := make([]*models.Run, 0)
	for _, run := range f.runs {
		if run.ProjectID != projectID || run.TriggerID != triggerID {
			continue
		}
		if cursor != "" && run.ID >= cursor {
			continue
		}
		matches = append(matches, run.Clone())
	}
	f.mu.Unlock()
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID > matches[j].ID })

	hasMore := len(matches) > limit
	if hasMore {
		matches = matches[:limit]
	}

	out := make([]storage.RunWithLatestAttempt, 0, len(matches))
	for _, run := range matches {
		entry := storage.RunWithLatestAttempt{Run: *run}
		if f.Attempts != nil && run.LatestAttemptID != "" {
			entry.LatestAttempt = f.Attempts.Get(run.LatestAttemptID)
		}
		out = append(out, entry)
	}
	return out, hasMore, nil
}

// Get returns the stored run or nil, for assertions.
func (f *FakeRunStore) Get(runID string) *models.Run {
	f.mu.Lock()
	defer f.mu.Unlock()
	run, ok := f.runs[runID]
	if !ok {
		return nil
	}
	return run.Clone()
}
