package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DragonBallZLeague/SparkingZero-sub001/api/handlers"
	"github.com/DragonBallZLeague/SparkingZero-sub001/api/middleware"
	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/config"
	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/interfaces"
	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/services"
	"github.com/DragonBallZLeague/SparkingZero-sub001/io/deviceauth"
	iogithub "github.com/DragonBallZLeague/SparkingZero-sub001/io/github"
	"github.com/DragonBallZLeague/SparkingZero-sub001/pkg/logger"
	"github.com/DragonBallZLeague/SparkingZero-sub001/pkg/metrics"
)

const (
	DefaultVersion  = "1.0.0"
	ShutdownTimeout = 30 * time.Second
	IdleTimeout     = 120 * time.Second
)

// Application holds all dependencies
type Application struct {
	config     *config.Config
	logger     interfaces.Logger
	metrics    interfaces.MetricsCollector
	publisher  interfaces.SubmissionPublisher
	deviceFlow interfaces.DeviceFlow
	server     *http.Server
}

func main() {
	app, err := initializeApplication()
	if err != nil {
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	app.logger.Info("Starting submission service",
		"version", DefaultVersion,
		"environment", os.Getenv("ENVIRONMENT"),
	)

	if err := app.run(); err != nil {
		app.logger.Fatal("Application failed to run", err)
	}
}

// initializeApplication sets up all dependencies using dependency injection pattern
func initializeApplication() (*Application, error) {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := logger.NewAdapter(cfg.Logging.Level, cfg.Logging.Format)

	// Initialize metrics collector
	metrics := metrics.NewPrometheusCollector()

	// The publish path writes with the bot token; admin routes build their
	// own clients per request from the caller's bearer token.
	botClient := iogithub.NewClient(cfg.GitHub, cfg.GitHub.BotToken, logger, metrics)
	deviceClient := deviceauth.NewClient(cfg.DeviceAuth, logger, metrics)

	// Initialize services
	publisher := services.NewPublisherService(botClient, cfg.GitHub, cfg.Submission, logger, metrics)
	deviceFlow := services.NewDeviceFlowService(deviceClient, logger, metrics)

	// Create application
	app := &Application{
		config:     cfg,
		logger:     logger,
		metrics:    metrics,
		publisher:  publisher,
		deviceFlow: deviceFlow,
	}

	// Setup HTTP server
	app.setupServer()

	return app, nil
}

// setupServer configures the HTTP server with all routes and middleware
func (app *Application) setupServer() {
	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(app.logger, app.metrics)
	submitHandler := handlers.NewSubmitHandler(app.publisher, app.config.Submission.MaxFiles, app.logger, app.metrics)
	validateHandler := handlers.NewValidateHandler(app.config.Submission.PrecheckMax, app.logger, app.metrics)
	adminHandler := handlers.NewAdminHandler(app.config.GitHub, app.config.Submission, app.logger, app.metrics)
	deviceHandler := handlers.NewDeviceAuthHandler(app.deviceFlow, app.logger, app.metrics)

	// Setup router
	router := mux.NewRouter()

	// Route-scoped middleware in order
	router.Use(middleware.MetricsMiddleware(app.metrics))
	router.Use(middleware.LoggingMiddleware(app.logger))
	router.Use(middleware.ErrorHandlerMiddleware(app.logger))

	router.MethodNotAllowedHandler = methodNotAllowedHandler()

	// Public endpoints
	router.HandleFunc("/health", healthHandler.Handle).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.HandleFunc("/submit", submitHandler.Handle).Methods("POST")
	router.HandleFunc("/validate", validateHandler.Handle).Methods("POST")
	router.HandleFunc("/github-device-start", deviceHandler.HandleStart).Methods("POST")
	router.HandleFunc("/github-device-token", deviceHandler.HandleToken).Methods("POST")

	// Admin endpoints require a bearer token; GitHub validates it on use
	adminRouter := router.PathPrefix("/admin").Subrouter()
	adminRouter.Use(middleware.TokenAuthMiddleware(app.logger))
	adminRouter.HandleFunc("/submissions", adminHandler.HandleListSubmissions).Methods("GET")
	adminRouter.HandleFunc("/mark-ready", adminHandler.HandleMarkReady).Methods("POST")

	// Request-scoped middleware that must run before routing: CORS answers
	// OPTIONS for every path, request IDs cover 404/405 responses too.
	var handler http.Handler = router
	handler = middleware.CORSMiddleware()(handler)
	handler = middleware.RequestIDMiddleware()(handler)
	handler = middleware.PanicRecoveryMiddleware(app.logger)(handler)

	app.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", app.config.Server.Host, app.config.Server.Port),
		Handler:      handler,
		ReadTimeout:  app.config.Server.ReadTimeout,
		WriteTimeout: app.config.Server.WriteTimeout,
		IdleTimeout:  IdleTimeout,
	}
}

func methodNotAllowedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "method not allowed"})
	})
}

// run starts the application and handles graceful shutdown
func (app *Application) run() error {
	// Channel to capture server errors
	serverErrors := make(chan error, 1)

	go func() {
		app.logger.Info("Starting HTTP server",
			"host", app.config.Server.Host,
			"port", app.config.Server.Port,
		)

		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	// Wait for interrupt signal or server error
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server failed to start: %w", err)

	case <-ctx.Done():
		app.logger.Info("Shutdown signal received")
		return app.gracefulShutdown()
	}
}

// gracefulShutdown performs graceful shutdown with timeout
func (app *Application) gracefulShutdown() error {
	app.logger.Info("Starting graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	shutdownComplete := make(chan error, 1)

	go func() {
		if err := app.server.Shutdown(shutdownCtx); err != nil {
			shutdownComplete <- fmt.Errorf("server shutdown failed: %w", err)
			return
		}

		app.logger.Info("All services shutdown successfully")
		shutdownComplete <- nil
	}()

	select {
	case err := <-shutdownComplete:
		if err != nil {
			app.logger.Error("Graceful shutdown failed", err)
			if closeErr := app.server.Close(); closeErr != nil {
				app.logger.Error("Force shutdown also failed", closeErr)
			}
			return err
		}
		app.logger.Info("Graceful shutdown completed successfully")
		return nil

	case <-shutdownCtx.Done():
		app.logger.Error("Shutdown timeout exceeded, forcing close", nil)
		if err := app.server.Close(); err != nil {
			app.logger.Error("Force shutdown failed", err)
		}
		return fmt.Errorf("shutdown timeout exceeded")
	}
}
