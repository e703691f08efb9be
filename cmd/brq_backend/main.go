package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/budget_request_app/internal/core/services"
	"github.com/SscSPs/budget_request_app/internal/dto"
	"github.com/SscSPs/budget_request_app/internal/handlers"
	"github.com/SscSPs/budget_request_app/internal/middleware"
	"github.com/SscSPs/budget_request_app/internal/notifications"
	"github.com/SscSPs/budget_request_app/internal/platform/config"
	"github.com/SscSPs/budget_request_app/internal/platform/metrics"
	"github.com/SscSPs/budget_request_app/internal/repositories/database/pgsql"
	"github.com/SscSPs/budget_request_app/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// @title Budget Request API
// @version 1.0
// @description Budget request submission and multi-level approval workflow.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, database.PoolOptions{
		ConnectTimeout: 10 * time.Second,
		Ping:           cfg.EnableDBCheck,
	})
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	logger.Info("Running database migrations...")
	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
		logger.Error("Database migrations failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := dto.RegisterValidations(v); err != nil {
			logger.Error("Failed to register request validations", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	appMetrics := metrics.New()
	repos := pgsql.NewRepositoryProvider(dbPool)

	// Transition notifications run off the request path
	dispatcher := notifications.NewDispatcher(logger, cfg.NotifyQueueSize, []notifications.Sink{
		notifications.NewLogSink(logger),
		notifications.NewMetricsSink(appMetrics),
		notifications.NewEmailSink(notifications.NewSMTPSender(cfg.SMTP), repos.UserRepo, cfg.SMTP.From, logger),
	}, notifications.WithRecorder(appMetrics))
	dispatcher.Start()

	serviceContainer := services.NewServiceContainer(cfg, repos, dispatcher)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, metrics)
	r.Use(
		middleware.StructuredLoggingMiddleware(logger),
		gin.Recovery(),
		middleware.MetricsMiddleware(appMetrics),
	)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Disposition", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	if cfg.RateLimit != "" {
		rateLimiter, err := middleware.NewMemoryLimiter(cfg.RateLimit)
		if err != nil {
			logger.Error("Invalid RATE_LIMIT", slog.String("rate", cfg.RateLimit), slog.String("error", err.Error()))
			os.Exit(1)
		}
		r.Use(middleware.RateLimit(rateLimiter))
	} else {
		logger.Warn("RATE_LIMIT is empty, global rate limiting disabled")
	}

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := handlers.RegisterRoutes(r, cfg, serviceContainer, handlers.Infrastructure{DB: dbPool, Metrics: appMetrics}); err != nil {
		logger.Error("Failed to register routes", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		logger.Warn("Pending notifications were not delivered", slog.String("error", err.Error()))
	}
}
