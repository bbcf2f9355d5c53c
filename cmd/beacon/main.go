package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"futurfounder/internal/core/ports"
	"futurfounder/internal/core/services"
	httphandlers "futurfounder/internal/handlers/http"
	"futurfounder/internal/infrastructure/livetail"
	"futurfounder/internal/infrastructure/middleware"
	"futurfounder/internal/infrastructure/monitoring"
	repositories "futurfounder/internal/infrastructure/repositories"
	"futurfounder/internal/infrastructure/sinks"
	"futurfounder/pkg/config"
	"futurfounder/pkg/logger"
	"futurfounder/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	// Try multiple config paths
	configPaths := []string{
		"configs/config.yaml",
		"./configs/config.yaml",
		"/etc/futurfounder/config.yaml",
		"config.yaml",
	}

	var cfg *config.Config
	var err error

	for _, path := range configPaths {
		cfg, err = config.Load(path)
		if err == nil {
			break
		}
	}

	if err != nil {
		// Fallback to defaults if config cannot be loaded
		cfg = config.DefaultConfig()
	}

	// Initialize logger
	zapLogger := logger.NewWithFormat(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()

	log := zapLogger.Sugar()

	// Initialize tracing
	tracerProvider, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: "futurfounder-beacon",
		JaegerURL:   cfg.Tracing.JaegerURL,
		Environment: cfg.Tracing.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		log.Warnw("failed to initialize tracing, continuing without it", "error", err)
	}

	// Initialize repository factory
	repoFactory, err := repositories.NewRepositoryFactory(cfg, log)
	if err != nil {
		log.Fatalw("failed to create repository factory", "error", err)
	}
	defer repoFactory.Close()

	assignmentRepo := repoFactory.CreateAssignmentRepository()

	// Sink builders. The Prometheus sink and live tail are created once and
	// reused across reconfigurations; the HTTP sinks are rebuilt each time so
	// a config swap picks up new identifiers.
	prometheusSink := monitoring.NewPrometheusSink()
	liveTail := livetail.NewLiveTailSink(log)

	builders := []services.SinkBuilder{
		func(ac config.AnalyticsConfig) (ports.Sink, error) {
			return sinks.NewMeasurementSink(ac.MeasurementID, ac.MeasurementEndpoint, ac.SinkTimeout)
		},
		func(ac config.AnalyticsConfig) (ports.Sink, error) {
			if !ac.HeatmapsEnabled {
				return nil, nil
			}
			return sinks.NewHeatmapSink(ac.HeatmapID, ac.HeatmapEndpoint, ac.SinkTimeout)
		},
		func(ac config.AnalyticsConfig) (ports.Sink, error) {
			if !cfg.Monitoring.PrometheusEnabled {
				return nil, nil
			}
			return prometheusSink, nil
		},
		func(ac config.AnalyticsConfig) (ports.Sink, error) {
			if !ac.Debug {
				return nil, nil
			}
			return sinks.NewLogSink(log), nil
		},
		func(ac config.AnalyticsConfig) (ports.Sink, error) {
			if !ac.Debug {
				return nil, nil
			}
			return liveTail, nil
		},
	}

	analytics := services.NewAnalyticsService(cfg.Analytics, assignmentRepo, builders, log)
	analytics.Initialize()
	defer analytics.Close()

	// Health checks. The liveness checker also runs in the background so a
	// degraded dependency is logged before anyone polls /health.
	healthChecker := monitoring.NewHealthChecker(log)
	healthChecker.AddRepositoryCheck(assignmentRepo, 30*time.Second, 2*time.Second)
	if redisClient := repoFactory.RedisClient(); redisClient != nil {
		healthChecker.AddRedisCheck(redisClient, 30*time.Second, 2*time.Second)
	}

	readinessChecker := monitoring.NewHealthChecker(log)
	readinessChecker.AddReadinessCheck(assignmentRepo, repoFactory.HealthCheck, 30*time.Second, 2*time.Second)

	checksCtx, stopChecks := context.WithCancel(context.Background())
	defer stopChecks()
	healthChecker.StartBackgroundChecks(checksCtx)

	// Initialize HTTP handlers
	trackHandler := httphandlers.NewTrackHandler(analytics)
	adminHandler := httphandlers.NewAdminHandler(analytics, assignmentRepo)

	// Configure Gin
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.ErrorHandlerMiddleware(log))
	if cfg.Tracing.Enabled {
		router.Use(middleware.TracingMiddleware())
	}

	// Global HTTP rate limiting (if enabled)
	router.Use(middleware.NewHTTPRateLimitMiddleware(cfg))

	// Collection routes (public)
	trackHandler.SetupRoutes(router)

	// Admin routes behind the shared-secret token
	adminHandler.SetupRoutes(router, middleware.AdminAuthMiddleware(cfg.Auth.AdminJWTSecret))

	// Live tail of the event stream, debug only
	if cfg.Analytics.Debug {
		router.GET("/api/v1/livetail", gin.WrapF(liveTail.HandleWebSocket))
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		status := healthChecker.CheckAll(c.Request.Context())
		code := http.StatusOK
		if status.Status != "healthy" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status.Status,
			"timestamp": status.Timestamp,
			"checks":    status.Checks,
			"uptime":    time.Since(startTime).String(),
		})
	})

	// Readiness endpoint
	router.GET("/ready", func(c *gin.Context) {
		status := readinessChecker.CheckAll(c.Request.Context())
		if status.Status != "healthy" {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":       "not_ready",
				"timestamp":    status.Timestamp,
				"dependencies": "unhealthy",
				"checks":       status.Checks,
			})
			return
		}

		if analytics.State() != services.StateReady {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "not_ready",
				"timestamp": time.Now(),
				"analytics": "uninitialized",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":       "ready",
			"timestamp":    time.Now(),
			"dependencies": "ok",
		})
	})

	// Prometheus metrics endpoint
	if cfg.Monitoring.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
		log.Info("Prometheus metrics enabled")
	}

	// Create HTTP server with timeouts
	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Starting FuturFounder beacon on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for shutdown signals or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Fatalw("Server failed", "error", err)
	case sig := <-sigChan:
		log.Infow("Received shutdown signal", "signal", sig)
	}

	log.Info("Shutting down FuturFounder beacon...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Shutdown HTTP server gracefully
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error during server shutdown", "error", err)
		// Force close if graceful shutdown fails
		if closeErr := srv.Close(); closeErr != nil {
			log.Errorw("Error force closing server", "error", closeErr)
		}
	} else {
		log.Info("Server shutdown gracefully")
	}

	// Tear down analytics so sinks flush their connections
	analytics.Close()

	if tracerProvider != nil {
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Errorw("Error shutting down tracer provider", "error", err)
		}
	}

	// Close repository factory
	if err := repoFactory.Close(); err != nil {
		log.Errorw("Error closing repository factory", "error", err)
	}

	log.Info("FuturFounder beacon stopped")
}
