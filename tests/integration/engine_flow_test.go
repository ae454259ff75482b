//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/cronbackhq/cronback/internal/api/handlers"
	"github.com/cronbackhq/cronback/internal/api/middleware"
	"github.com/cronbackhq/cronback/internal/dispatcher"
	"github.com/cronbackhq/cronback/internal/logging"
	"github.com/cronbackhq/cronback/internal/metrics"
	"github.com/cronbackhq/cronback/internal/models"
	"github.com/cronbackhq/cronback/internal/scheduler"
	"github.com/cronbackhq/cronback/internal/testutil/fakes"
	"github.com/cronbackhq/cronback/pkg/clock"
	platformEvents "github.com/cronbackhq/cronback/platform/events"
)

const integrationProject = "prj_00420191a2b3c4d5e6f708192a3b4c5d6e7f"

// runReader joins the run and attempt fakes into the read surface the
// controller consumes.
type runReader struct {
	*fakes.FakeRunStore
	*fakes.FakeAttemptStore
}

// engineFixture wires the full engine (controller, spinner, dispatch
// manager) behind the HTTP API the way the server does, swapping only
// MySQL and Kafka for in-memory fakes.
type engineFixture struct {
	router     *gin.Engine
	controller *scheduler.Controller
	publisher  *fakes.FakePublisher
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	triggerStore := fakes.NewFakeTriggerStore()
	attempts := fakes.NewFakeAttemptStore()
	runs := fakes.NewFakeRunStore()
	runs.Attempts = attempts
	publisher := &fakes.FakePublisher{}

	logger := logging.NewNoOpLogger()
	validator := dispatcher.NewURLValidator(true)
	engineMetrics := metrics.MustNewEngine(prometheus.NewRegistry())
	manager := dispatcher.NewManager(
		runs, attempts, publisher, validator, engineMetrics, clock.RealClock{}, logger)

	ctrl, err := scheduler.NewController(
		scheduler.ControllerConfig{},
		triggerStore,
		runReader{runs, attempts},
		manager,
		validator,
		engineMetrics,
		logger,
		clock.RealClock{},
	)
	require.NoError(t, err)
	require.NoError(t, ctrl.Start(context.Background()))
	t.Cleanup(func() { _ = ctrl.Shutdown(context.Background()) })

	triggerHandler := handlers.NewTriggerHandler(logger, ctrl)
	runHandler := handlers.NewRunHandler(logger, ctrl)

	router := gin.New()
	v1 := router.Group("/api/v1", middleware.ProjectID())
	triggers := v1.Group("/triggers")
	triggers.POST("", triggerHandler.CreateTrigger)
	triggers.GET("/:name", triggerHandler.GetTrigger)
	triggers.POST("/:name/run", triggerHandler.RunTrigger)
	triggers.GET("/:name/runs", triggerHandler.ListRuns)
	runGroup := v1.Group("/runs")
	runGroup.GET("/:id", runHandler.GetRun)
	runGroup.GET("/:id/attempts", runHandler.ListAttempts)

	return &engineFixture{router: router, controller: ctrl, publisher: publisher}
}

func (f *engineFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.ProjectIDHeader, integrationProject)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestEngineFlow_SyncRunDeliversWebhook(t *testing.T) {
	var (
		mu         sync.Mutex
		hits       int
		gotBody    string
		gotHeaders http.Header
	)
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		mu.Lock()
		hits++
		gotBody = string(raw)
		gotHeaders = r.Header.Clone()
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer target.Close()

	f := newEngineFixture(t)

	create := f.do(t, http.MethodPost, "/api/v1/triggers", map[string]any{
		"name": "sales-report",
		"action": map[string]any{
			"type":    "webhook",
			"webhook": map[string]any{"url": target.URL, "timeout_s": 2},
		},
		"payload": map[string]any{
			"content_type": "application/json",
			"headers":      map[string]string{"X-Team": "revenue"},
			"body":         `{"report":"nightly"}`,
		},
	})
	require.Equal(t, http.StatusCreated, create.Code)

	run := f.do(t, http.MethodPost, "/api/v1/triggers/sales-report/run", map[string]any{"mode": "sync"})
	require.Equal(t, http.StatusOK, run.Code)

	var runEnvelope struct {
		Data models.RunResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(run.Body.Bytes(), &runEnvelope))
	require.Equal(t, models.RunStatusSucceeded, runEnvelope.Data.Status)
	require.Equal(t, models.RunModeSync, runEnvelope.Data.Mode)
	require.NotEmpty(t, runEnvelope.Data.LatestAttemptID)

	mu.Lock()
	require.Equal(t, 1, hits)
	require.JSONEq(t, `{"report":"nightly"}`, gotBody)
	require.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
	require.Equal(t, "revenue", gotHeaders.Get("X-Team"))
	require.Equal(t, runEnvelope.Data.ID, gotHeaders.Get("X-Cronback-Run-Id"))
	require.Equal(t, integrationProject, gotHeaders.Get("X-Cronback-Project-Id"))
	require.Equal(t, "1", gotHeaders.Get("X-Cronback-Delivery-Attempt"))
	mu.Unlock()

	fetched := f.do(t, http.MethodGet, "/api/v1/runs/"+runEnvelope.Data.ID, nil)
	require.Equal(t, http.StatusOK, fetched.Code)

	listed := f.do(t, http.MethodGet, "/api/v1/triggers/sales-report/runs", nil)
	require.Equal(t, http.StatusOK, listed.Code)
	var listEnvelope struct {
		Data models.RunListResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(listed.Body.Bytes(), &listEnvelope))
	require.Len(t, listEnvelope.Data.Runs, 1)
	require.NotNil(t, listEnvelope.Data.Runs[0].LatestAttempt)
	require.Equal(t, http.StatusOK, *listEnvelope.Data.Runs[0].LatestAttempt.ResponseCode)

	require.Equal(t,
		[]platformEvents.EventKind{
			platformEvents.KindRunCreated,
			platformEvents.KindAttemptSucceeded,
			platformEvents.KindRunSucceeded,
		},
		f.publisher.Kinds())
}

func TestEngineFlow_RetriesUntilWebhookRecovers(t *testing.T) {
	var mu sync.Mutex
	hits := 0
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		n := hits
		mu.Unlock()
		if n < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer target.Close()

	f := newEngineFixture(t)

	create := f.do(t, http.MethodPost, "/api/v1/triggers", map[string]any{
		"name": "flaky-target",
		"action": map[string]any{
			"type": "webhook",
			"webhook": map[string]any{
				"url":       target.URL,
				"timeout_s": 2,
				"retry": map[string]any{
					"type":             "simple",
					"max_num_attempts": 5,
					"delay_s":          0.01,
				},
			},
		},
	})
	require.Equal(t, http.StatusCreated, create.Code)

	run := f.do(t, http.MethodPost, "/api/v1/triggers/flaky-target/run", map[string]any{"mode": "sync"})
	require.Equal(t, http.StatusOK, run.Code)

	var runEnvelope struct {
		Data models.RunResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(run.Body.Bytes(), &runEnvelope))
	require.Equal(t, models.RunStatusSucceeded, runEnvelope.Data.Status)

	attempts := f.do(t, http.MethodGet, "/api/v1/runs/"+runEnvelope.Data.ID+"/attempts", nil)
	require.Equal(t, http.StatusOK, attempts.Code)

	var attemptEnvelope struct {
		Data models.AttemptListResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(attempts.Body.Bytes(), &attemptEnvelope))
	require.Len(t, attemptEnvelope.Data.Attempts, 3)

	// Attempts page newest first.
	final := attemptEnvelope.Data.Attempts[0]
	require.Equal(t, uint32(3), final.AttemptNum)
	require.Equal(t, models.AttemptStatusSucceeded, final.Status)

	first := attemptEnvelope.Data.Attempts[2]
	require.Equal(t, uint32(1), first.AttemptNum)
	require.Equal(t, models.AttemptStatusFailed, first.Status)
	require.Equal(t, http.StatusServiceUnavailable, *first.ResponseCode)
}

func TestEngineFlow_ScheduledTimepointFiresAndExpires(t *testing.T) {
	var mu sync.Mutex
	hits := 0
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer target.Close()

	f := newEngineFixture(t)

	fireAt := time.Now().UTC().Add(150 * time.Millisecond)
	create := f.do(t, http.MethodPost, "/api/v1/triggers", map[string]any{
		"name": "one-shot",
		"schedule": map[string]any{
			"type":       "run_at",
			"timepoints": []string{fireAt.Format(time.RFC3339Nano)},
		},
		"action": map[string]any{
			"type":    "webhook",
			"webhook": map[string]any{"url": target.URL, "timeout_s": 2},
		},
	})
	require.Equal(t, http.StatusCreated, create.Code)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return hits >= 1
	}, 5*time.Second, 25*time.Millisecond, "spinner never dispatched the timepoint")

	// Once the only timepoint has fired the trigger retires from the
	// active map; a checkpoint persists its terminal state.
	require.Eventually(t, func() bool {
		f.controller.Checkpoint(context.Background())

		resp := f.do(t, http.MethodGet, "/api/v1/triggers/one-shot", nil)
		if resp.Code != http.StatusOK {
			return false
		}
		var envelope struct {
			Data models.TriggerResponse `json:"data"`
		}
		if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
			return false
		}
		return envelope.Data.Status == models.TriggerStatusExpired &&
			envelope.Data.LastRanAt != nil
	}, 5*time.Second, 50*time.Millisecond, "trigger never checkpointed as expired")
}
