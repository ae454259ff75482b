package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cronbackhq/cronback/internal/ids"
	"github.com/cronbackhq/cronback/internal/logging"
	"github.com/cronbackhq/cronback/internal/metrics"
	"github.com/cronbackhq/cronback/internal/models"
	"github.com/cronbackhq/cronback/pkg/clock"
)

// fakeDispatcher records submitted runs. Controller tests reuse it.
type fakeDispatcher struct {
	mu    sync.Mutex
	runs  []*models.Run
	calls int
	Err   error
}

func (f *fakeDispatcher) Run(ctx context.Context, run *models.Run, mode models.RunMode) (*models.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.Err != nil {
		return nil, f.Err
	}
	f.runs = append(f.runs, run.Clone())
	return run.Clone(), nil
}

func (f *fakeDispatcher) Runs() []*models.Run {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*models.Run(nil), f.runs...)
}

func (f *fakeDispatcher) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.runs)
}

func (f *fakeDispatcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestSpinner(cfg SpinnerConfig, triggers *ActiveTriggerMap, dispatcher RunDispatcher, clk clock.Clock) (*Spinner, *metrics.Engine) {
	engineMetrics := metrics.MustNewEngine(prometheus.NewRegistry())
	s := NewSpinner(cfg, triggers, dispatcher, engineMetrics, &logging.NoOpLogger{}, clk)
	return s, engineMetrics
}

func TestSpinner_WhenTriggerDue_ThenRunSubmittedAndLastRanAtCatchesUp(t *testing.T) {
	// Arrange
	triggers := NewActiveTriggerMap()
	require.NoError(t, triggers.AddOrUpdate(newMapTrigger("trig_due", everyMinuteSchedule()), true, mapBaseTime()))

	clk := clock.NewStepping(mapBaseTime())
	dispatcher := &fakeDispatcher{}
	s, _ := newTestSpinner(SpinnerConfig{}, triggers, dispatcher, clk)
	s.rebuildHeap()

	// Act: move past the 03:01:00 tick and spin once.
	firedAt := time.Date(2025, 1, 2, 3, 1, 1, 0, time.UTC)
	clk.Set(firedAt)
	s.tick()

	// Assert
	require.Equal(t, 1, dispatcher.Count())
	run := dispatcher.Runs()[0]
	assert.Equal(t, "trig_due", run.TriggerID)
	assert.Equal(t, models.RunModeAsync, run.Mode)
	assert.Equal(t, models.RunStatusAttempting, run.Status)
	assert.True(t, ids.HasPrefix(run.ID, ids.RunPrefix))

	// The submission completes asynchronously; later ticks harvest it.
	require.Eventually(t, func() bool {
		s.tick()
		got, ok := triggers.Get("trig_due")
		return ok && got.LastRanAt != nil
	}, 2*time.Second, 10*time.Millisecond)
	got, _ := triggers.Get("trig_due")
	assert.Equal(t, firedAt, *got.LastRanAt)
}

func TestSpinner_WhenTriggerNotDue_ThenNothingDispatches(t *testing.T) {
	// Arrange
	triggers := NewActiveTriggerMap()
	require.NoError(t, triggers.AddOrUpdate(newMapTrigger("trig_wait", everyMinuteSchedule()), true, mapBaseTime()))

	dispatcher := &fakeDispatcher{}
	s, _ := newTestSpinner(SpinnerConfig{}, triggers, dispatcher, clock.NewFixed(mapBaseTime()))
	s.rebuildHeap()

	// Act
	s.tick()

	// Assert
	assert.Equal(t, 0, dispatcher.Count())
}

func TestSpinner_WhenTickConsumed_ThenNextTickReinserted(t *testing.T) {
	// Arrange
	triggers := NewActiveTriggerMap()
	require.NoError(t, triggers.AddOrUpdate(newMapTrigger("trig_seq", everyMinuteSchedule()), true, mapBaseTime()))

	clk := clock.NewStepping(mapBaseTime())
	dispatcher := &fakeDispatcher{}
	s, _ := newTestSpinner(SpinnerConfig{}, triggers, dispatcher, clk)
	s.rebuildHeap()

	// Act: two consecutive minute boundaries.
	clk.Set(time.Date(2025, 1, 2, 3, 1, 1, 0, time.UTC))
	s.tick()
	clk.Set(time.Date(2025, 1, 2, 3, 2, 1, 0, time.UTC))
	s.tick()

	// Assert
	assert.Equal(t, 2, dispatcher.Count())
}

func TestSpinner_WhenPausedTriggerDue_ThenTickSkippedWithoutDispatch(t *testing.T) {
	// Arrange
	triggers := NewActiveTriggerMap()
	require.NoError(t, triggers.AddOrUpdate(newMapTrigger("trig_paused", limitedMinuteSchedule(3)), true, mapBaseTime()))
	require.NoError(t, triggers.Pause("trig_paused"))

	clk := clock.NewStepping(mapBaseTime())
	dispatcher := &fakeDispatcher{}
	s, _ := newTestSpinner(SpinnerConfig{}, triggers, dispatcher, clk)
	s.rebuildHeap()

	// Act
	clk.Set(time.Date(2025, 1, 2, 3, 1, 1, 0, time.UTC))
	s.tick()

	// Assert: no run, but the trigger's clock moved.
	assert.Equal(t, 0, dispatcher.Count())
	got, ok := triggers.Get("trig_paused")
	require.True(t, ok)
	require.NotNil(t, got.LastRanAt)
	assert.Equal(t, time.Date(2025, 1, 2, 3, 1, 0, 0, time.UTC), *got.LastRanAt)
	require.NotNil(t, got.Schedule.Remaining)
	assert.Equal(t, uint64(3), *got.Schedule.Remaining, "paused ticks must not consume the run budget")
}

func TestSpinner_WhenTriggerCancelledBetweenRebuilds_ThenStaleEntryDropped(t *testing.T) {
	// Arrange
	triggers := NewActiveTriggerMap()
	require.NoError(t, triggers.AddOrUpdate(newMapTrigger("trig_stale", everyMinuteSchedule()), true, mapBaseTime()))

	clk := clock.NewStepping(mapBaseTime())
	dispatcher := &fakeDispatcher{}
	s, _ := newTestSpinner(SpinnerConfig{}, triggers, dispatcher, clk)
	s.rebuildHeap()
	require.NoError(t, triggers.Cancel("trig_stale"))

	// Act
	clk.Set(time.Date(2025, 1, 2, 3, 1, 1, 0, time.UTC))
	s.tick()

	// Assert
	assert.Equal(t, 0, dispatcher.Count())
	assert.Equal(t, 0, s.heap.Len())
}

func TestSpinner_WhenMoreDueThanBudget_ThenRestDeferredToNextTick(t *testing.T) {
	// Arrange
	triggers := NewActiveTriggerMap()
	for _, id := range []string{"trig_1", "trig_2", "trig_3"} {
		require.NoError(t, triggers.AddOrUpdate(newMapTrigger(id, everyMinuteSchedule()), true, mapBaseTime()))
	}

	clk := clock.NewStepping(time.Date(2025, 1, 2, 3, 1, 1, 0, time.UTC))
	dispatcher := &fakeDispatcher{}
	s, _ := newTestSpinner(SpinnerConfig{MaxTriggersPerTick: 2}, triggers, dispatcher, clk)
	s.rebuildHeap()

	// Act
	s.tick()
	deferredAfterFirst := dispatcher.Count()
	s.tick()

	// Assert
	assert.Equal(t, 2, deferredAfterFirst)
	assert.Equal(t, 3, dispatcher.Count())
}

func TestSpinner_WhenSubmissionFails_ThenLastRanAtStaysUnset(t *testing.T) {
	// Arrange
	triggers := NewActiveTriggerMap()
	require.NoError(t, triggers.AddOrUpdate(newMapTrigger("trig_err", everyMinuteSchedule()), true, mapBaseTime()))

	clk := clock.NewStepping(time.Date(2025, 1, 2, 3, 1, 1, 0, time.UTC))
	dispatcher := &fakeDispatcher{Err: errors.New("store unavailable")}
	s, _ := newTestSpinner(SpinnerConfig{}, triggers, dispatcher, clk)
	s.rebuildHeap()

	// Act
	s.tick()
	require.Eventually(t, func() bool { return dispatcher.Calls() == 1 }, 2*time.Second, 10*time.Millisecond)
	s.tick()

	// Assert
	got, ok := triggers.Get("trig_err")
	require.True(t, ok)
	assert.Nil(t, got.LastRanAt)
}

func TestSpinner_WhenLastTimepointFires_ThenTriggerExpiresAndGaugeTracksMap(t *testing.T) {
	// Arrange
	triggers := NewActiveTriggerMap()
	sched := runAtSchedule(time.Date(2025, 1, 2, 3, 1, 0, 0, time.UTC))
	require.NoError(t, triggers.AddOrUpdate(newMapTrigger("trig_once", sched), true, mapBaseTime()))

	clk := clock.NewStepping(time.Date(2025, 1, 2, 3, 1, 1, 0, time.UTC))
	dispatcher := &fakeDispatcher{}
	s, engineMetrics := newTestSpinner(SpinnerConfig{}, triggers, dispatcher, clk)
	s.rebuildHeap()

	// Act
	s.tick()

	// Assert
	assert.Equal(t, 1, dispatcher.Count())
	got, ok := triggers.Get("trig_once")
	require.True(t, ok)
	assert.Equal(t, models.TriggerStatusExpired, got.Status)
	assert.Equal(t, 0, s.heap.Len())
	// The expired trigger stays in the map until the next checkpoint.
	assert.Equal(t, float64(1), promtestutil.ToFloat64(engineMetrics.ActiveTriggers))
}

func TestSpinner_WhenYieldBudgetRemains_ThenLoopSleepsTheRemainder(t *testing.T) {
	// Arrange
	s, _ := newTestSpinner(SpinnerConfig{}, NewActiveTriggerMap(), &fakeDispatcher{}, clock.NewFixed(mapBaseTime()))
	var slept []time.Duration
	s.sleep = func(d time.Duration) { slept = append(slept, d) }

	// Act
	s.yield(30 * time.Millisecond)
	s.yield(250 * time.Millisecond)

	// Assert: only the first tick had budget left.
	require.Len(t, slept, 1)
	assert.Equal(t, 70*time.Millisecond, slept[0])
}

func TestSpinner_WhenStopped_ThenLoopExitsWithinTimeout(t *testing.T) {
	// Arrange
	s, _ := newTestSpinner(SpinnerConfig{YieldMax: 5 * time.Millisecond}, NewActiveTriggerMap(), &fakeDispatcher{}, clock.RealClock{})
	s.Start()

	// Act
	err := s.Stop(2 * time.Second)

	// Assert
	assert.NoError(t, err)
	// Stop is idempotent.
	assert.NoError(t, s.Stop(time.Second))
}
