package api

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/cronbackhq/cronback/internal/api/handlers"
	"github.com/cronbackhq/cronback/internal/api/middleware"
	"github.com/cronbackhq/cronback/internal/dispatcher"
	"github.com/cronbackhq/cronback/internal/logging"
	"github.com/cronbackhq/cronback/internal/metrics"
	"github.com/cronbackhq/cronback/internal/scheduler"
	"github.com/cronbackhq/cronback/internal/storage"
	"github.com/cronbackhq/cronback/pkg/clock"
	"github.com/cronbackhq/cronback/pkg/config"
	platformEvents "github.com/cronbackhq/cronback/platform/events"
)

// Server hosts the scheduling engine and the HTTP API in one process.
// The controller's active map only serves reads correctly when the API
// shares its memory, so the two are never split across binaries.
type Server struct {
	config   config.App
	logger   logging.Logger
	router   *gin.Engine
	db       *sql.DB
	registry *prometheus.Registry

	controller *scheduler.Controller
	manager    *dispatcher.Manager
	publisher  *platformEvents.Publisher
}

// NewServer wires the storage, dispatch, and scheduling dependencies
// together and configures the router.
func NewServer() *Server {
	cfg := config.FromEnv()

	logger, err := logging.NewLogger(cfg.Environment, cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	// Set Gin mode based on environment
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	db := connectDatabase(cfg, logger)
	if err := storage.Migrate(db); err != nil {
		logger.Fatal("failed to run database migrations", zap.Error(err))
	}
	store := storage.NewMySQLClient(db)

	registry := prometheus.NewRegistry()
	engineMetrics := metrics.MustNewEngine(registry)

	server := &Server{
		config:   cfg,
		logger:   logger,
		db:       db,
		registry: registry,
	}

	// Leave the interface nil when publishing is disabled so the
	// dispatcher can tell the difference.
	var publisher dispatcher.EventPublisher
	if cfg.RunEventsTopic != "" {
		kafkaPublisher := platformEvents.NewPublisher(cfg.BrokerList(), cfg.RunEventsTopic, server.getZapLogger())
		server.publisher = kafkaPublisher
		publisher = kafkaPublisher
	} else {
		logger.Warn("RUN_EVENTS_TOPIC is empty; run lifecycle events will not be published")
	}

	validator := dispatcher.NewURLValidator(cfg.SkipPublicIPValidation)
	server.manager = dispatcher.NewManager(store, store, publisher, validator, engineMetrics, clock.RealClock{}, logger)

	controller, err := scheduler.NewController(
		scheduler.ControllerConfig{
			Spinner: scheduler.SpinnerConfig{
				YieldMax:           cfg.SpinnerYieldMax,
				MaxTriggersPerTick: cfg.MaxTriggersPerTick,
			},
			CheckpointInterval:   cfg.CheckpointInterval,
			DangerousFastForward: cfg.DangerousFastForward,
		},
		store, store, server.manager, validator, engineMetrics, logger, clock.RealClock{},
	)
	if err != nil {
		logger.Fatal("failed to build the scheduling controller", zap.Error(err))
	}
	server.controller = controller

	server.setupRouter()
	return server
}

// setupRouter configures the Gin router with middleware and routes.
func (s *Server) setupRouter() {
	router := gin.New()

	// Get underlying zap logger for gin-contrib/zap middleware
	zapLogger := s.getZapLogger()

	// Global middleware (order matters!)
	// 1. Recovery - must be first to catch panics from other middleware
	router.Use(ginzap.RecoveryWithZap(zapLogger, true))

	// 2. Request ID - inject unique ID for tracing
	router.Use(middleware.RequestID())

	// 3. Logging - log all requests with structured fields
	router.Use(ginzap.Ginzap(zapLogger, time.RFC3339, true))

	// 4. CORS - handle cross-origin requests
	router.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", "X-Cronback-Project-Id"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health and metrics endpoints (no /api/v1 prefix, no project header)
	router.GET("/health", handlers.NewHealthHandler(s.logger, clock.RealClock{}).Health)
	router.GET("/metrics", handlers.NewMetricsHandler(s.registry).Metrics)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 routes, all project scoped
	v1 := router.Group("/api/v1", middleware.ProjectID())
	{
		triggerHandler := handlers.NewTriggerHandler(s.logger, s.controller)
		triggers := v1.Group("/triggers")
		{
			triggers.POST("", triggerHandler.CreateTrigger)
			triggers.GET("", triggerHandler.ListTriggers)
			triggers.GET("/:name", triggerHandler.GetTrigger)
			triggers.PUT("/:name", triggerHandler.UpsertTrigger)
			triggers.DELETE("/:name", triggerHandler.DeleteTrigger)
			triggers.POST("/:name/run", triggerHandler.RunTrigger)
			triggers.POST("/:name/pause", triggerHandler.PauseTrigger)
			triggers.POST("/:name/resume", triggerHandler.ResumeTrigger)
			triggers.POST("/:name/cancel", triggerHandler.CancelTrigger)
			triggers.GET("/:name/runs", triggerHandler.ListRuns)
		}

		runHandler := handlers.NewRunHandler(s.logger, s.controller)
		runs := v1.Group("/runs")
		{
			runs.GET("/:id", runHandler.GetRun)
			runs.GET("/:id/attempts", runHandler.ListAttempts)
		}
	}

	s.router = router
}

// getZapLogger extracts the underlying *zap.Logger from our Logger interface.
// This is needed for gin-contrib/zap middleware.
func (s *Server) getZapLogger() *zap.Logger {
	// Create a new zap logger for middleware (gin-contrib/zap needs *zap.Logger)
	var zapLogger *zap.Logger
	if s.config.Environment == "production" {
		zapLogger, _ = zap.NewProduction()
	} else {
		zapLogger, _ = zap.NewDevelopment()
	}
	return zapLogger
}

// Serve starts the scheduling engine and the HTTP server, then blocks
// until a shutdown signal drains both.
func (s *Server) Serve() error {
	ctx := context.Background()

	if err := s.controller.Start(ctx); err != nil {
		return fmt.Errorf("failed to start the scheduling controller: %w", err)
	}
	if err := s.manager.RecoverPendingRuns(ctx); err != nil {
		s.logger.Error("failed to recover pending runs", zap.Error(err))
	}

	addr := ":" + s.config.APIPort
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		s.logger.Info("starting API server",
			zap.String("address", addr),
			zap.String("environment", s.config.Environment),
			zap.String("log_level", s.config.LogLevel),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	<-quit
	s.logger.Info("shutting down server gracefully...")

	// Graceful shutdown with 30 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("server forced to shutdown", zap.Error(err))
		return err
	}

	// Stop the spinner and flush the final checkpoint only after the
	// API stops accepting writes.
	if err := s.controller.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("controller did not stop cleanly", zap.Error(err))
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			s.logger.Error("failed to close the event publisher", zap.Error(err))
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("failed to close database connection", zap.Error(err))
		}
	}

	// Flush logger before exit
	if err := s.logger.Sync(); err != nil {
		// Ignore sync errors on stdout/stderr
		if err.Error() != "sync /dev/stdout: invalid argument" &&
			err.Error() != "sync /dev/stderr: invalid argument" {
			return err
		}
	}

	s.logger.Info("server stopped")
	return nil
}

func connectDatabase(cfg config.App, logger logging.Logger) *sql.DB {
	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL is required")
	}

	db, err := sql.Open("mysql", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to open database connection", zap.Error(err))
	}

	db.SetMaxIdleConns(5)
	db.SetMaxOpenConns(20)
	db.SetConnMaxLifetime(60 * time.Minute)

	if err := db.Ping(); err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	return db
}
