package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cronbackhq/cronback/internal/logging"
	"github.com/cronbackhq/cronback/pkg/clock"
)

func TestNewHealthHandler_WhenCreated_ThenReturnsHandler(t *testing.T) {
	// Arrange
	logger := logging.NewNoOpLogger()

	// Act
	handler := NewHealthHandler(logger, clock.RealClock{})

	// Assert
	if handler == nil {
		t.Fatal("expected handler to be non-nil")
	}
	if handler.logger == nil {
		t.Fatal("expected logger to be non-nil")
	}
}

func TestHealth_WhenCalled_ThenReturns200WithHealthStatus(t *testing.T) {
	// Arrange
	gin.SetMode(gin.TestMode)
	start := time.Date(2025, 11, 5, 10, 0, 0, 0, time.UTC)
	clk := clock.NewStepping(start)

	router := gin.New()
	handler := NewHealthHandler(logging.NewNoOpLogger(), clk)
	router.GET("/health", handler.Health)

	clk.Advance(90 * time.Second)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	// Act
	router.ServeHTTP(w, req)

	// Assert
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var responseWrapper struct {
		Data HealthResponse `json:"data"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &responseWrapper)
	if err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	response := responseWrapper.Data
	if response.Status != "ok" {
		t.Errorf("expected status 'ok', got '%s'", response.Status)
	}
	if response.Service != "cronback" {
		t.Errorf("expected service 'cronback', got '%s'", response.Service)
	}
	if response.Version != "1.0.0" {
		t.Errorf("expected version '1.0.0', got '%s'", response.Version)
	}
	if response.UptimeS != 90 {
		t.Errorf("expected uptime 90s, got %v", response.UptimeS)
	}
}
