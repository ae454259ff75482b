package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cronbackhq/cronback/internal/api/response"
	"github.com/cronbackhq/cronback/internal/logging"
	"github.com/cronbackhq/cronback/pkg/clock"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	logger    logging.Logger
	clock     clock.Clock
	startedAt time.Time
}

// NewHealthHandler creates a new health check handler anchored at the
// process start.
func NewHealthHandler(logger logging.Logger, clk clock.Clock) *HealthHandler {
	return &HealthHandler{
		logger:    logger,
		clock:     clk,
		startedAt: clk.Now(),
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string  `json:"status" example:"ok"`
	Service string  `json:"service" example:"cronback"`
	Version string  `json:"version" example:"1.0.0"`
	UptimeS float64 `json:"uptime_s" example:"3600"`
} // @name HealthResponse

// Health godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API service
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	response.OK(c, HealthResponse{
		Status:  "ok",
		Service: "cronback",
		Version: "1.0.0",
		UptimeS: h.clock.Now().Sub(h.startedAt).Seconds(),
	})
}
