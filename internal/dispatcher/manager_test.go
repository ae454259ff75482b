package dispatcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cronbackhq/cronback/internal/logging"
	"github.com/cronbackhq/cronback/internal/metrics"
	"github.com/cronbackhq/cronback/internal/models"
	"github.com/cronbackhq/cronback/internal/testutil/fakes"
	platformEvents "github.com/cronbackhq/cronback/platform/events"
	"github.com/cronbackhq/cronback/pkg/clock"
)

type managerFixture struct {
	runStore     *fakes.FakeRunStore
	attemptStore *fakes.FakeAttemptStore
	publisher    *fakes.FakePublisher
	metrics      *metrics.Engine
}

func newTestManager() (*Manager, *managerFixture) {
	fixture := &managerFixture{
		runStore:     fakes.NewFakeRunStore(),
		attemptStore: fakes.NewFakeAttemptStore(),
		publisher:    &fakes.FakePublisher{},
		metrics:      metrics.MustNewEngine(prometheus.NewRegistry()),
	}
	manager := NewManager(
		fixture.runStore,
		fixture.attemptStore,
		fixture.publisher,
		NewURLValidator(true),
		fixture.metrics,
		clock.NewFixed(fixedDispatchTime()),
		&logging.NoOpLogger{},
	)
	return manager, fixture
}

func TestManager_Run_WhenSyncMode_ThenReturnsTerminalRun(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	manager, fixture := newTestManager()
	run := newTestRun(server.URL, nil)

	// Act
	result, err := manager.Run(context.Background(), run, models.RunModeSync)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusSucceeded, result.Status)
	assert.NotEmpty(t, result.LatestAttemptID)

	stored := fixture.runStore.Get(run.ID)
	require.NotNil(t, stored)
	assert.Equal(t, models.RunStatusSucceeded, stored.Status)

	assert.Equal(t,
		[]platformEvents.EventKind{
			platformEvents.KindRunCreated,
			platformEvents.KindAttemptSucceeded,
			platformEvents.KindRunSucceeded,
		},
		fixture.publisher.Kinds())
	assert.Equal(t, float64(0), promtestutil.ToFloat64(fixture.metrics.InflightRuns))
}

func TestManager_Run_WhenAsyncMode_ThenReturnsPendingRunImmediately(t *testing.T) {
	// Arrange
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	manager, fixture := newTestManager()
	run := newTestRun(server.URL, nil)

	// Act
	result, err := manager.Run(context.Background(), run, models.RunModeAsync)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusAttempting, result.Status)

	close(release)
	assert.Eventually(t, func() bool {
		stored := fixture.runStore.Get(run.ID)
		return stored != nil && stored.Status == models.RunStatusSucceeded
	}, 2*time.Second, 10*time.Millisecond)
}

func TestManager_Run_WhenStoreFails_ThenReturnsError(t *testing.T) {
	// Arrange
	manager, fixture := newTestManager()
	fixture.runStore.StoreErr = assert.AnError
	run := newTestRun("http://127.0.0.1:1/hook", nil)

	// Act
	result, err := manager.Run(context.Background(), run, models.RunModeSync)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Empty(t, fixture.publisher.Kinds())
}

func TestManager_Run_WhenUnknownMode_ThenReturnsError(t *testing.T) {
	// Arrange
	manager, _ := newTestManager()
	run := newTestRun("http://127.0.0.1:1/hook", nil)

	// Act
	result, err := manager.Run(context.Background(), run, models.RunMode("bogus"))

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown run mode")
	assert.Nil(t, result)
}

func TestManager_Run_WhenDeliveryFails_ThenTerminalEventIsRunFailed(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	manager, fixture := newTestManager()
	run := newTestRun(server.URL, nil)

	// Act
	result, err := manager.Run(context.Background(), run, models.RunModeSync)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusFailed, result.Status)

	kinds := fixture.publisher.Kinds()
	require.NotEmpty(t, kinds)
	assert.Equal(t, platformEvents.KindRunFailed, kinds[len(kinds)-1])

	events := fixture.publisher.Snapshot()
	terminal := events[len(events)-1]
	assert.Equal(t, result.LatestAttemptID, terminal.LatestAttemptID)
}

func TestManager_RecoverPendingRuns_WhenAttemptingRunsExist_ThenResumesThem(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	manager, fixture := newTestManager()
	orphan := newTestRun(server.URL, nil)
	require.NoError(t, fixture.runStore.StoreRun(context.Background(), orphan))

	// Act
	err := manager.RecoverPendingRuns(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		stored := fixture.runStore.Get(orphan.ID)
		return stored != nil && stored.Status == models.RunStatusSucceeded
	}, 2*time.Second, 10*time.Millisecond)

	// The recovered sequence numbers its attempts from 1.
	attempts := fixture.attemptStore.ForRun(orphan.ID)
	require.NotEmpty(t, attempts)
	assert.Equal(t, uint32(1), attempts[0].AttemptNum)
}

func TestManager_RecoverPendingRuns_WhenNoPendingRuns_ThenNoWork(t *testing.T) {
	// Arrange
	manager, fixture := newTestManager()

	// Act
	err := manager.RecoverPendingRuns(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Empty(t, fixture.publisher.Kinds())
	assert.Equal(t, 0, fixture.attemptStore.Count())
}
