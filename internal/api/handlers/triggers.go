package handlers

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cronbackhq/cronback/internal/api/middleware"
	"github.com/cronbackhq/cronback/internal/api/response"
	"github.com/cronbackhq/cronback/internal/logging"
	"github.com/cronbackhq/cronback/internal/models"
	"github.com/cronbackhq/cronback/internal/scheduler"
)

// TriggerHandler handles trigger lifecycle requests.
type TriggerHandler struct {
	logger     logging.Logger
	controller TriggerController
}

// NewTriggerHandler creates a new trigger handler.
func NewTriggerHandler(logger logging.Logger, controller TriggerController) *TriggerHandler {
	return &TriggerHandler{
		logger:     logger.With(zap.String("handler", "trigger")),
		controller: controller,
	}
}

// CreateTrigger godoc
// @Summary Create a new trigger
// @Description Creates a trigger. Fails with a conflict when the name is already taken in the project.
// @Tags Triggers
// @Accept json
// @Produce json
// @Param X-Cronback-Project-Id header string true "Project identifier"
// @Param trigger body models.UpsertTriggerRequest true "Trigger definition"
// @Success 201 {object} models.TriggerResponse
// @Failure 400 {object} response.ErrorResponse "Invalid request"
// @Failure 409 {object} response.ErrorResponse "Name already taken"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /api/v1/triggers [post]
func (h *TriggerHandler) CreateTrigger(c *gin.Context) {
	var req models.UpsertTriggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create trigger request",
			zap.Error(err),
			zap.String("request_id", response.GetRequestID(c)),
		)
		response.BadRequest(c, "invalid request body", err.Error())
		return
	}

	projectID := middleware.GetProjectID(c)
	trigger, err := h.controller.UpsertTrigger(c.Request.Context(), projectID, &req, true)
	if h.handleControllerError(c, err, "create trigger") {
		return
	}

	h.logger.Info("trigger created",
		zap.String("trigger_id", trigger.ID),
		zap.String("name", trigger.Name),
		zap.String("status", string(trigger.Status)),
		zap.String("request_id", response.GetRequestID(c)),
	)

	resp := models.NewTriggerResponse(trigger)
	response.Created(c, resp, "trigger created")
}

// UpsertTrigger godoc
// @Summary Create or replace a trigger
// @Description Installs the trigger under the path name, replacing any existing definition wholesale.
// @Tags Triggers
// @Accept json
// @Produce json
// @Param X-Cronback-Project-Id header string true "Project identifier"
// @Param name path string true "Trigger name"
// @Param trigger body models.UpsertTriggerRequest true "Trigger definition"
// @Success 200 {object} models.TriggerResponse
// @Failure 400 {object} response.ErrorResponse "Invalid request"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /api/v1/triggers/{name} [put]
func (h *TriggerHandler) UpsertTrigger(c *gin.Context) {
	name := c.Param("name")

	var req models.UpsertTriggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid upsert trigger request",
			zap.Error(err),
			zap.String("name", name),
			zap.String("request_id", response.GetRequestID(c)),
		)
		response.BadRequest(c, "invalid request body", err.Error())
		return
	}
	if req.Name != "" && req.Name != name {
		response.BadRequest(c, "trigger name in body does not match path", nil)
		return
	}
	req.Name = name

	projectID := middleware.GetProjectID(c)
	trigger, err := h.controller.UpsertTrigger(c.Request.Context(), projectID, &req, false)
	if h.handleControllerError(c, err, "upsert trigger") {
		return
	}

	h.logger.Info("trigger upserted",
		zap.String("trigger_id", trigger.ID),
		zap.String("name", trigger.Name),
		zap.String("status", string(trigger.Status)),
		zap.String("request_id", response.GetRequestID(c)),
	)

	resp := models.NewTriggerResponse(trigger)
	response.OK(c, resp)
}

// ListTriggers godoc
// @Summary List triggers
// @Description Pages through the project's triggers with cursor pagination and an optional status filter.
// @Tags Triggers
// @Produce json
// @Param X-Cronback-Project-Id header string true "Project identifier"
// @Param cursor query string false "Resume after this trigger ID"
// @Param limit query int false "Items per page" default(20) minimum(1) maximum(100)
// @Param status query string false "Comma-separated status filter" example(scheduled,paused)
// @Success 200 {object} models.TriggerListResponse
// @Failure 400 {object} response.ErrorResponse "Invalid query parameters"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /api/v1/triggers [get]
func (h *TriggerHandler) ListTriggers(c *gin.Context) {
	var query models.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.logger.Warn("invalid list triggers query",
			zap.Error(err),
			zap.String("request_id", response.GetRequestID(c)),
		)
		response.BadRequest(c, "invalid query parameters", err.Error())
		return
	}

	projectID := middleware.GetProjectID(c)
	triggers, hasMore, err := h.controller.ListTriggers(c.Request.Context(), projectID, &query)
	if h.handleControllerError(c, err, "list triggers") {
		return
	}

	result := models.TriggerListResponse{
		Triggers: make([]models.TriggerResponse, 0, len(triggers)),
		Cursor:   models.CursorInfo{HasMore: hasMore},
	}
	for _, t := range triggers {
		result.Triggers = append(result.Triggers, models.NewTriggerResponse(t))
	}
	if hasMore && len(triggers) > 0 {
		result.Cursor.NextCursor = triggers[len(triggers)-1].ID
	}

	response.OK(c, result)
}

// GetTrigger godoc
// @Summary Get trigger details
// @Description Retrieves a trigger by name, including unflushed in-memory state such as last_ran_at.
// @Tags Triggers
// @Produce json
// @Param X-Cronback-Project-Id header string true "Project identifier"
// @Param name path string true "Trigger name"
// @Success 200 {object} models.TriggerResponse
// @Failure 404 {object} response.ErrorResponse "Trigger not found"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /api/v1/triggers/{name} [get]
func (h *TriggerHandler) GetTrigger(c *gin.Context) {
	projectID := middleware.GetProjectID(c)
	trigger, err := h.controller.GetTrigger(c.Request.Context(), projectID, c.Param("name"))
	if h.handleControllerError(c, err, "get trigger") {
		return
	}

	resp := models.NewTriggerResponse(trigger)
	response.OK(c, resp)
}

// DeleteTrigger godoc
// @Summary Delete a trigger
// @Description Deletes a trigger. Its runs and attempts are kept for querying.
// @Tags Triggers
// @Produce json
// @Param X-Cronback-Project-Id header string true "Project identifier"
// @Param name path string true "Trigger name"
// @Success 204 "Trigger deleted"
// @Failure 404 {object} response.ErrorResponse "Trigger not found"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /api/v1/triggers/{name} [delete]
func (h *TriggerHandler) DeleteTrigger(c *gin.Context) {
	name := c.Param("name")
	projectID := middleware.GetProjectID(c)

	if h.handleControllerError(c, h.controller.DeleteTrigger(c.Request.Context(), projectID, name), "delete trigger") {
		return
	}

	h.logger.Info("trigger deleted",
		zap.String("name", name),
		zap.String("request_id", response.GetRequestID(c)),
	)

	response.NoContent(c)
}

// RunTrigger godoc
// @Summary Run a trigger immediately
// @Description Fires the trigger now, independent of its schedule. Sync mode waits for delivery to finish.
// @Tags Triggers
// @Accept json
// @Produce json
// @Param X-Cronback-Project-Id header string true "Project identifier"
// @Param name path string true "Trigger name"
// @Param run body models.RunTriggerRequest false "Run mode, defaults to async"
// @Success 200 {object} models.RunResponse "Sync run finished"
// @Success 202 {object} models.RunResponse "Async run accepted"
// @Failure 400 {object} response.ErrorResponse "Trigger status forbids running"
// @Failure 404 {object} response.ErrorResponse "Trigger not found"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /api/v1/triggers/{name}/run [post]
func (h *TriggerHandler) RunTrigger(c *gin.Context) {
	name := c.Param("name")

	var req models.RunTriggerRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Warn("invalid run trigger request",
				zap.Error(err),
				zap.String("name", name),
				zap.String("request_id", response.GetRequestID(c)),
			)
			response.BadRequest(c, "invalid request body", err.Error())
			return
		}
	}

	projectID := middleware.GetProjectID(c)
	run, err := h.controller.RunTrigger(c.Request.Context(), projectID, name, req.Mode)
	if h.handleControllerError(c, err, "run trigger") {
		return
	}

	h.logger.Info("trigger ran",
		zap.String("name", name),
		zap.String("run_id", run.ID),
		zap.String("mode", string(run.Mode)),
		zap.String("request_id", response.GetRequestID(c)),
	)

	resp := models.NewRunResponse(run)
	if run.Mode == models.RunModeSync {
		response.OK(c, resp)
		return
	}
	response.Accepted(c, resp, "run accepted")
}

// PauseTrigger godoc
// @Summary Pause a trigger
// @Description Stops future firings until the trigger is resumed. Only scheduled triggers can pause.
// @Tags Triggers
// @Produce json
// @Param X-Cronback-Project-Id header string true "Project identifier"
// @Param name path string true "Trigger name"
// @Success 200 {object} models.TriggerResponse
// @Failure 400 {object} response.ErrorResponse "Trigger status forbids pausing"
// @Failure 404 {object} response.ErrorResponse "Trigger not found"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /api/v1/triggers/{name}/pause [post]
func (h *TriggerHandler) PauseTrigger(c *gin.Context) {
	h.setTriggerStatus(c, "pause", h.controller.PauseTrigger)
}

// ResumeTrigger godoc
// @Summary Resume a paused trigger
// @Description Re-arms the schedule of a paused trigger.
// @Tags Triggers
// @Produce json
// @Param X-Cronback-Project-Id header string true "Project identifier"
// @Param name path string true "Trigger name"
// @Success 200 {object} models.TriggerResponse
// @Failure 400 {object} response.ErrorResponse "Trigger status forbids resuming"
// @Failure 404 {object} response.ErrorResponse "Trigger not found"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /api/v1/triggers/{name}/resume [post]
func (h *TriggerHandler) ResumeTrigger(c *gin.Context) {
	h.setTriggerStatus(c, "resume", h.controller.ResumeTrigger)
}

// CancelTrigger godoc
// @Summary Cancel a trigger
// @Description Permanently stops the trigger. A cancelled trigger keeps its history but never fires again.
// @Tags Triggers
// @Produce json
// @Param X-Cronback-Project-Id header string true "Project identifier"
// @Param name path string true "Trigger name"
// @Success 200 {object} models.TriggerResponse
// @Failure 400 {object} response.ErrorResponse "Trigger status forbids cancelling"
// @Failure 404 {object} response.ErrorResponse "Trigger not found"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /api/v1/triggers/{name}/cancel [post]
func (h *TriggerHandler) CancelTrigger(c *gin.Context) {
	h.setTriggerStatus(c, "cancel", h.controller.CancelTrigger)
}

// setTriggerStatus applies a status transition and responds with the
// refreshed trigger.
func (h *TriggerHandler) setTriggerStatus(c *gin.Context, operation string, apply func(ctx context.Context, projectID, name string) error) {
	name := c.Param("name")
	projectID := middleware.GetProjectID(c)

	if h.handleControllerError(c, apply(c.Request.Context(), projectID, name), operation+" trigger") {
		return
	}

	trigger, err := h.controller.GetTrigger(c.Request.Context(), projectID, name)
	if h.handleControllerError(c, err, operation+" trigger") {
		return
	}

	h.logger.Info("trigger status changed",
		zap.String("trigger_id", trigger.ID),
		zap.String("name", name),
		zap.String("operation", operation),
		zap.String("status", string(trigger.Status)),
		zap.String("request_id", response.GetRequestID(c)),
	)

	resp := models.NewTriggerResponse(trigger)
	response.OK(c, resp)
}

// ListRuns godoc
// @Summary List a trigger's runs
// @Description Pages through the trigger's runs, newest first, each with its most recent delivery attempt.
// @Tags Runs
// @Produce json
// @Param X-Cronback-Project-Id header string true "Project identifier"
// @Param name path string true "Trigger name"
// @Param cursor query string false "Resume after this run ID"
// @Param limit query int false "Items per page" default(20) minimum(1) maximum(100)
// @Success 200 {object} models.RunListResponse
// @Failure 400 {object} response.ErrorResponse "Invalid query parameters"
// @Failure 404 {object} response.ErrorResponse "Trigger not found"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /api/v1/triggers/{name}/runs [get]
func (h *TriggerHandler) ListRuns(c *gin.Context) {
	var query models.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.logger.Warn("invalid list runs query",
			zap.Error(err),
			zap.String("request_id", response.GetRequestID(c)),
		)
		response.BadRequest(c, "invalid query parameters", err.Error())
		return
	}

	projectID := middleware.GetProjectID(c)
	entries, hasMore, err := h.controller.ListRuns(c.Request.Context(), projectID, c.Param("name"), &query)
	if h.handleControllerError(c, err, "list runs") {
		return
	}

	result := models.RunListResponse{
		Runs:   make([]models.RunListItem, 0, len(entries)),
		Cursor: models.CursorInfo{HasMore: hasMore},
	}
	for i := range entries {
		item := models.RunListItem{RunResponse: models.NewRunResponse(&entries[i].Run)}
		if entries[i].LatestAttempt != nil {
			attempt := models.NewAttemptResponse(entries[i].LatestAttempt)
			item.LatestAttempt = &attempt
		}
		result.Runs = append(result.Runs, item)
	}
	if hasMore && len(entries) > 0 {
		result.Cursor.NextCursor = entries[len(entries)-1].Run.ID
	}

	response.OK(c, result)
}

func (h *TriggerHandler) handleControllerError(c *gin.Context, err error, operation string) bool {
	return handleControllerError(c, h.logger, err, operation)
}

// handleControllerError maps controller errors onto HTTP statuses. It
// reports whether a response was written.
func handleControllerError(c *gin.Context, logger logging.Logger, err error, operation string) bool {
	if err == nil {
		return false
	}

	var validationErr scheduler.ValidationError
	var statusErr scheduler.InvalidStatusError
	var notFoundErr scheduler.NotFoundError
	var existsErr scheduler.AlreadyExistsError
	switch {
	case errors.As(err, &validationErr):
		response.BadRequest(c, "validation failed", validationErr.Error())
	case errors.As(err, &statusErr):
		response.BadRequest(c, statusErr.Error(), nil)
	case errors.As(err, &notFoundErr):
		response.NotFound(c, notFoundErr.Error())
	case errors.As(err, &existsErr):
		response.Conflict(c, existsErr.Error())
	default:
		logger.Error(operation+" failed",
			zap.Error(err),
			zap.String("request_id", response.GetRequestID(c)),
		)
		response.InternalServerError(c, "internal server error")
	}
	return true
}
