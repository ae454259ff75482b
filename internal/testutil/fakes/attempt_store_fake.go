package fakes

import (
	"context"
	"sort"
	"sync"

	"github.com/cronbackhq/cronback/internal/models"
)

// FakeAttemptStore is an in-memory attempt log.
type FakeAttemptStore struct {
	mu       sync.Mutex
	attempts map[string]*models.Attempt

	LogErr error
}

func NewFakeAttemptStore() *FakeAttemptStore {
	return &FakeAttemptStore{attempts: make(map[string]*models.Attempt)}
}

func (f *FakeAttemptStore) LogAttempt(_ context.Context, attempt *models.Attempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.LogErr != nil {
		return f.LogErr
	}
	stored := *attempt
	f.attempts[stored.ID] = &stored
	return nil
}

func (f *FakeAttemptStore) ListAttemptsForRun(
	_ context.Context,
	projectID string,
	runID string,
	cursor string,
	limit int,
) ([]*models.Attempt, bool, error) {
	f.mu.Lock()
	matches := make([]*models.Attempt, 0)
	for _, a := range f.attempts {
		if a.ProjectID != projectID || a.RunID != runID {
			continue
		}
		if cursor != "" && a.ID >= cursor {
			continue
		}
		copied := *a
		matches = append(matches, &copied)
	}
	f.mu.Unlock()
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID > matches[j].ID })

	hasMore := len(matches) > limit
	if hasMore {
		matches = matches[:limit]
	}
	return matches, hasMore, nil
}

// Get returns the stored attempt or nil, for assertions.
func (f *FakeAttemptStore) Get(attemptID string) *models.Attempt {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.attempts[attemptID]
	if !ok {
		return nil
	}
	copied := *a
	return &copied
}

// ForRun returns a run's attempts in ascending attempt order, for
// assertions.
func (f *FakeAttemptStore) ForRun(runID string) []*models.Attempt {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Attempt, 0)
	for _, a := range f.attempts {
		if a.RunID == runID {
			copied := *a
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AttemptNum < out[j].AttemptNum })
	return out
}

// Count reports how many attempts are stored.
func (f *FakeAttemptStore) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.attempts)
}
