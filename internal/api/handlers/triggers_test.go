package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/cronbackhq/cronback/internal/api/middleware"
	"github.com/cronbackhq/cronback/internal/logging"
	"github.com/cronbackhq/cronback/internal/models"
	"github.com/cronbackhq/cronback/internal/scheduler"
	"github.com/cronbackhq/cronback/internal/storage"
)

const handlerTestProject = "prj_00420191a2b3c4d5e6f708192a3b4c5d6e7f"

// fakeController cans controller responses and captures the arguments
// the handlers pass through.
type fakeController struct {
	upsertResp   *models.Trigger
	upsertErr    error
	gotUpsertReq *models.UpsertTriggerRequest
	gotMustNot   bool
	gotProjectID string

	getResp *models.Trigger
	getErr  error

	listResp    []*models.Trigger
	listHasMore bool
	listErr     error

	runResp *models.Run
	runErr  error
	gotMode models.RunMode

	pauseErr  error
	resumeErr error
	cancelErr error
	deleteErr error

	listRunsResp    []storage.RunWithLatestAttempt
	listRunsHasMore bool
	listRunsErr     error

	getRunResp *models.Run
	getRunErr  error

	attemptsResp    []*models.Attempt
	attemptsHasMore bool
	attemptsErr     error
}

func (f *fakeController) UpsertTrigger(ctx context.Context, projectID string, req *models.UpsertTriggerRequest, mustNotExist bool) (*models.Trigger, error) {
	f.gotProjectID = projectID
	f.gotUpsertReq = req
	f.gotMustNot = mustNotExist
	return f.upsertResp, f.upsertErr
}

func (f *fakeController) GetTrigger(ctx context.Context, projectID, name string) (*models.Trigger, error) {
	return f.getResp, f.getErr
}

func (f *fakeController) ListTriggers(ctx context.Context, projectID string, query *models.ListQuery) ([]*models.Trigger, bool, error) {
	return f.listResp, f.listHasMore, f.listErr
}

func (f *fakeController) RunTrigger(ctx context.Context, projectID, name string, mode models.RunMode) (*models.Run, error) {
	f.gotMode = mode
	return f.runResp, f.runErr
}

func (f *fakeController) PauseTrigger(ctx context.Context, projectID, name string) error {
	return f.pauseErr
}

func (f *fakeController) ResumeTrigger(ctx context.Context, projectID, name string) error {
	return f.resumeErr
}

func (f *fakeController) CancelTrigger(ctx context.Context, projectID, name string) error {
	return f.cancelErr
}

func (f *fakeController) DeleteTrigger(ctx context.Context, projectID, name string) error {
	return f.deleteErr
}

func (f *fakeController) ListRuns(ctx context.Context, projectID, triggerName string, query *models.ListQuery) ([]storage.RunWithLatestAttempt, bool, error) {
	return f.listRunsResp, f.listRunsHasMore, f.listRunsErr
}

func (f *fakeController) GetRun(ctx context.Context, projectID, runID string) (*models.Run, error) {
	return f.getRunResp, f.getRunErr
}

func (f *fakeController) ListAttempts(ctx context.Context, projectID, runID string, query *models.ListQuery) ([]*models.Attempt, bool, error) {
	return f.attemptsResp, f.attemptsHasMore, f.attemptsErr
}

func newTriggerRouter(ctrl *fakeController) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewTriggerHandler(logging.NewNoOpLogger(), ctrl)
	r := gin.New()
	v1 := r.Group("/api/v1", middleware.ProjectID())
	v1.POST("/triggers", h.CreateTrigger)
	v1.PUT("/triggers/:name", h.UpsertTrigger)
	v1.GET("/triggers", h.ListTriggers)
	v1.GET("/triggers/:name", h.GetTrigger)
	v1.DELETE("/triggers/:name", h.DeleteTrigger)
	v1.POST("/triggers/:name/run", h.RunTrigger)
	v1.POST("/triggers/:name/pause", h.PauseTrigger)
	v1.POST("/triggers/:name/resume", h.ResumeTrigger)
	v1.POST("/triggers/:name/cancel", h.CancelTrigger)
	v1.GET("/triggers/:name/runs", h.ListRuns)
	return r
}

func doRequest(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.ProjectIDHeader, handlerTestProject)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func storedTrigger(name string, status models.TriggerStatus) *models.Trigger {
	return &models.Trigger{
		ID:        "trig_00420191a2b3c4d5e6f708192a3b4c5d6e7f",
		ProjectID: handlerTestProject,
		Name:      name,
		Action: models.Action{
			Type:    models.ActionTypeWebhook,
			Webhook: &models.Webhook{URL: "https://example.com/hook", HTTPMethod: http.MethodPost},
		},
		Status:    status,
		CreatedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestCreateTrigger_BadJSON(t *testing.T) {
	r := newTriggerRouter(&fakeController{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/triggers", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.ProjectIDHeader, handlerTestProject)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateTrigger_MissingProjectHeader(t *testing.T) {
	r := newTriggerRouter(&fakeController{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/triggers", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateTrigger_Success(t *testing.T) {
	ctrl := &fakeController{upsertResp: storedTrigger("nightly", models.TriggerStatusScheduled)}
	r := newTriggerRouter(ctrl)

	body := map[string]any{
		"name":   "nightly",
		"action": map[string]any{"type": "webhook", "webhook": map[string]any{"url": "https://example.com/hook"}},
	}
	w := doRequest(r, http.MethodPost, "/api/v1/triggers", body)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, ctrl.gotMustNot)
	assert.Equal(t, handlerTestProject, ctrl.gotProjectID)
	assert.Contains(t, w.Body.String(), `"name":"nightly"`)
	assert.Contains(t, w.Body.String(), `"status":"scheduled"`)
}

func TestCreateTrigger_NameTaken(t *testing.T) {
	ctrl := &fakeController{upsertErr: scheduler.NewAlreadyExistsError("trigger with name %q already exists", "nightly")}
	r := newTriggerRouter(ctrl)

	body := map[string]any{
		"name":   "nightly",
		"action": map[string]any{"type": "webhook", "webhook": map[string]any{"url": "https://example.com/hook"}},
	}
	w := doRequest(r, http.MethodPost, "/api/v1/triggers", body)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already exists")
}

func TestCreateTrigger_ValidationError(t *testing.T) {
	ctrl := &fakeController{upsertErr: scheduler.NewValidationError("invalid cron expression: %q", "* * bad")}
	r := newTriggerRouter(ctrl)

	body := map[string]any{
		"name":   "nightly",
		"action": map[string]any{"type": "webhook", "webhook": map[string]any{"url": "https://example.com/hook"}},
	}
	w := doRequest(r, http.MethodPost, "/api/v1/triggers", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation failed")
	assert.Contains(t, w.Body.String(), "invalid cron expression")
}

func TestUpsertTrigger_PathNameWins(t *testing.T) {
	ctrl := &fakeController{upsertResp: storedTrigger("nightly", models.TriggerStatusScheduled)}
	r := newTriggerRouter(ctrl)

	body := map[string]any{
		"action": map[string]any{"type": "webhook", "webhook": map[string]any{"url": "https://example.com/hook"}},
	}
	w := doRequest(r, http.MethodPut, "/api/v1/triggers/nightly", body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, ctrl.gotMustNot)
	assert.Equal(t, "nightly", ctrl.gotUpsertReq.Name)
}

func TestUpsertTrigger_BodyNameMismatch(t *testing.T) {
	ctrl := &fakeController{}
	r := newTriggerRouter(ctrl)

	body := map[string]any{
		"name":   "other",
		"action": map[string]any{"type": "webhook", "webhook": map[string]any{"url": "https://example.com/hook"}},
	}
	w := doRequest(r, http.MethodPut, "/api/v1/triggers/nightly", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, ctrl.gotUpsertReq)
}

func TestListTriggers_CursorAssembled(t *testing.T) {
	first := storedTrigger("one", models.TriggerStatusScheduled)
	second := storedTrigger("two", models.TriggerStatusScheduled)
	second.ID = "trig_0042aaaa0191a2b3c4d5e6f708192a3b4c5d"
	ctrl := &fakeController{listResp: []*models.Trigger{first, second}, listHasMore: true}
	r := newTriggerRouter(ctrl)

	w := doRequest(r, http.MethodGet, "/api/v1/triggers?limit=2", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"has_more":true`)
	assert.Contains(t, w.Body.String(), `"next_cursor":"`+second.ID+`"`)
}

func TestListTriggers_LimitOutOfRange(t *testing.T) {
	r := newTriggerRouter(&fakeController{})

	w := doRequest(r, http.MethodGet, "/api/v1/triggers?limit=101", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTrigger_Success(t *testing.T) {
	ctrl := &fakeController{getResp: storedTrigger("nightly", models.TriggerStatusScheduled)}
	r := newTriggerRouter(ctrl)

	w := doRequest(r, http.MethodGet, "/api/v1/triggers/nightly", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"nightly"`)
}

func TestGetTrigger_NotFound(t *testing.T) {
	ctrl := &fakeController{getErr: scheduler.NewNotFoundError("trigger %q not found", "ghost")}
	r := newTriggerRouter(ctrl)

	w := doRequest(r, http.MethodGet, "/api/v1/triggers/ghost", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteTrigger_Success(t *testing.T) {
	r := newTriggerRouter(&fakeController{})

	w := doRequest(r, http.MethodDelete, "/api/v1/triggers/nightly", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestDeleteTrigger_NotFound(t *testing.T) {
	ctrl := &fakeController{deleteErr: scheduler.NewNotFoundError("trigger %q not found", "ghost")}
	r := newTriggerRouter(ctrl)

	w := doRequest(r, http.MethodDelete, "/api/v1/triggers/ghost", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRunTrigger_NoBodyDefaultsToAsync(t *testing.T) {
	run := &models.Run{
		ID:        "run_00420191a2b3c4d5e6f708192a3b4c5d6e7f",
		TriggerID: "trig_00420191a2b3c4d5e6f708192a3b4c5d6e7f",
		Mode:      models.RunModeAsync,
		Status:    models.RunStatusAttempting,
		CreatedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	ctrl := &fakeController{runResp: run}
	r := newTriggerRouter(ctrl)

	w := doRequest(r, http.MethodPost, "/api/v1/triggers/nightly/run", nil)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, models.RunMode(""), ctrl.gotMode)
	assert.Contains(t, w.Body.String(), `"status":"attempting"`)
}

func TestRunTrigger_SyncReturnsFinishedRun(t *testing.T) {
	run := &models.Run{
		ID:        "run_00420191a2b3c4d5e6f708192a3b4c5d6e7f",
		TriggerID: "trig_00420191a2b3c4d5e6f708192a3b4c5d6e7f",
		Mode:      models.RunModeSync,
		Status:    models.RunStatusSucceeded,
		CreatedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	ctrl := &fakeController{runResp: run}
	r := newTriggerRouter(ctrl)

	w := doRequest(r, http.MethodPost, "/api/v1/triggers/nightly/run", map[string]any{"mode": "sync"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.RunModeSync, ctrl.gotMode)
	assert.Contains(t, w.Body.String(), `"status":"succeeded"`)
}

func TestRunTrigger_CancelledTrigger(t *testing.T) {
	ctrl := &fakeController{runErr: scheduler.NewInvalidStatusError("run", models.TriggerStatusCancelled)}
	r := newTriggerRouter(ctrl)

	w := doRequest(r, http.MethodPost, "/api/v1/triggers/nightly/run", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "cannot run trigger in status")
}

func TestPauseTrigger_ReturnsRefreshedTrigger(t *testing.T) {
	ctrl := &fakeController{getResp: storedTrigger("nightly", models.TriggerStatusPaused)}
	r := newTriggerRouter(ctrl)

	w := doRequest(r, http.MethodPost, "/api/v1/triggers/nightly/pause", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"paused"`)
}

func TestResumeTrigger_OnDemandRejected(t *testing.T) {
	ctrl := &fakeController{resumeErr: scheduler.NewInvalidStatusError("resume", models.TriggerStatusOnDemand)}
	r := newTriggerRouter(ctrl)

	w := doRequest(r, http.MethodPost, "/api/v1/triggers/nightly/resume", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `cannot resume trigger in status \"on_demand\"`)
}

func TestCancelTrigger_ReturnsRefreshedTrigger(t *testing.T) {
	ctrl := &fakeController{getResp: storedTrigger("nightly", models.TriggerStatusCancelled)}
	r := newTriggerRouter(ctrl)

	w := doRequest(r, http.MethodPost, "/api/v1/triggers/nightly/cancel", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"cancelled"`)
}

func TestListRuns_IncludesLatestAttempt(t *testing.T) {
	responseCode := 200
	entry := storage.RunWithLatestAttempt{
		Run: models.Run{
			ID:        "run_00420191a2b3c4d5e6f708192a3b4c5d6e7f",
			TriggerID: "trig_00420191a2b3c4d5e6f708192a3b4c5d6e7f",
			Mode:      models.RunModeAsync,
			Status:    models.RunStatusSucceeded,
			CreatedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		LatestAttempt: &models.Attempt{
			ID:         "att_00420191a2b3c4d5e6f708192a3b4c5d6e7f",
			RunID:      "run_00420191a2b3c4d5e6f708192a3b4c5d6e7f",
			AttemptNum: 1,
			Status:     models.AttemptStatusSucceeded,
			Details:    models.WebhookAttemptDetails{ResponseCode: &responseCode, ResponseLatencyS: 0.131},
			CreatedAt:  time.Date(2025, 3, 1, 10, 0, 1, 0, time.UTC),
		},
	}
	ctrl := &fakeController{listRunsResp: []storage.RunWithLatestAttempt{entry}}
	r := newTriggerRouter(ctrl)

	w := doRequest(r, http.MethodGet, "/api/v1/triggers/nightly/runs", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"latest_attempt"`)
	assert.Contains(t, w.Body.String(), `"attempt_num":1`)
	assert.Contains(t, w.Body.String(), `"has_more":false`)
}

func TestListRuns_UnknownTrigger(t *testing.T) {
	ctrl := &fakeController{listRunsErr: scheduler.NewNotFoundError("trigger %q not found", "ghost")}
	r := newTriggerRouter(ctrl)

	w := doRequest(r, http.MethodGet, "/api/v1/triggers/ghost/runs", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleControllerError_StoreFailure(t *testing.T) {
	ctrl := &fakeController{getErr: errors.New("connection refused")}
	r := newTriggerRouter(ctrl)

	w := doRequest(r, http.MethodGet, "/api/v1/triggers/nightly", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
	assert.NotContains(t, w.Body.String(), "connection refused")
}
