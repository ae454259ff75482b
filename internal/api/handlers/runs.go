package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cronbackhq/cronback/internal/api/middleware"
	"github.com/cronbackhq/cronback/internal/api/response"
	"github.com/cronbackhq/cronback/internal/logging"
	"github.com/cronbackhq/cronback/internal/models"
)

// RunHandler handles run and attempt query requests.
type RunHandler struct {
	logger  logging.Logger
	queries RunQueries
}

// NewRunHandler creates a new run handler.
func NewRunHandler(logger logging.Logger, queries RunQueries) *RunHandler {
	return &RunHandler{
		logger:  logger.With(zap.String("handler", "run")),
		queries: queries,
	}
}

// GetRun godoc
// @Summary Get run details
// @Description Retrieves a single run by ID, including its current status and latest attempt pointer.
// @Tags Runs
// @Produce json
// @Param X-Cronback-Project-Id header string true "Project identifier"
// @Param id path string true "Run ID"
// @Success 200 {object} models.RunResponse
// @Failure 404 {object} response.ErrorResponse "Run not found"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /api/v1/runs/{id} [get]
func (h *RunHandler) GetRun(c *gin.Context) {
	projectID := middleware.GetProjectID(c)
	run, err := h.queries.GetRun(c.Request.Context(), projectID, c.Param("id"))
	if handleControllerError(c, h.logger, err, "get run") {
		return
	}

	resp := models.NewRunResponse(run)
	response.OK(c, resp)
}

// ListAttempts godoc
// @Summary List a run's delivery attempts
// @Description Pages through every webhook delivery attempt made for the run, newest first.
// @Tags Runs
// @Produce json
// @Param X-Cronback-Project-Id header string true "Project identifier"
// @Param id path string true "Run ID"
// @Param cursor query string false "Resume after this attempt ID"
// @Param limit query int false "Items per page" default(20) minimum(1) maximum(100)
// @Success 200 {object} models.AttemptListResponse
// @Failure 400 {object} response.ErrorResponse "Invalid query parameters"
// @Failure 404 {object} response.ErrorResponse "Run not found"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /api/v1/runs/{id}/attempts [get]
func (h *RunHandler) ListAttempts(c *gin.Context) {
	var query models.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.logger.Warn("invalid list attempts query",
			zap.Error(err),
			zap.String("request_id", response.GetRequestID(c)),
		)
		response.BadRequest(c, "invalid query parameters", err.Error())
		return
	}

	projectID := middleware.GetProjectID(c)
	attempts, hasMore, err := h.queries.ListAttempts(c.Request.Context(), projectID, c.Param("id"), &query)
	if handleControllerError(c, h.logger, err, "list attempts") {
		return
	}

	result := models.AttemptListResponse{
		Attempts: make([]models.AttemptResponse, 0, len(attempts)),
		Cursor:   models.CursorInfo{HasMore: hasMore},
	}
	for _, attempt := range attempts {
		result.Attempts = append(result.Attempts, models.NewAttemptResponse(attempt))
	}
	if hasMore && len(attempts) > 0 {
		result.Cursor.NextCursor = attempts[len(attempts)-1].ID
	}

	response.OK(c, result)
}
