package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bark-console/internal/bankapi"
	"bark-console/internal/config"
	"bark-console/internal/database"
	"bark-console/internal/handlers"
	"bark-console/internal/logging"
	"bark-console/internal/middleware"
	"bark-console/internal/repositories"
	"bark-console/internal/services"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// .env is a dev convenience; a missing file is fine.
	_ = godotenv.Load()

	cfg := config.Load()

	logger := logging.New(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	db, err := database.Initialize(cfg)
	if err != nil {
		logger.Error("failed to initialize session store", "error", err.Error())
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("failed to close session store", "error", err.Error())
		}
	}()

	metrics := services.NewPrometheusMetrics()

	baseClient := bankapi.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, logger, metrics)

	sessionRepo := repositories.NewSessionRepository(db.DB)
	sessions := services.NewSessionService(
		sessionRepo,
		baseClient,
		cfg.Security.SealKey,
		cfg.Security.SessionTTL,
		logger,
		metrics,
	)
	tokens := services.NewTokenService(&cfg.JWT)
	manager := services.NewWorkspaceManager(baseClient, sessions, logger, metrics)

	authHandler := handlers.NewAuthHandler(sessions, tokens, manager, logger)
	accountHandler := handlers.NewAccountHandler()
	selectionHandler := handlers.NewSelectionHandler()
	transferHandler := handlers.NewTransferHandler()
	healthHandler := handlers.NewHealthCheckHandler(db.DB)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = middleware.CustomHTTPErrorHandler

	e.Use(middleware.RequestID())
	e.Use(middleware.PanicRecovery())
	e.Use(middleware.SecurityHeaders())

	e.GET("/healthz", healthHandler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.POST("/api/auth/login", authHandler.Login,
		middleware.RateLimiterWithConfig(cfg.Security.LoginRatePerSecond, cfg.Security.LoginBurst))

	api := e.Group("/api", middleware.RequireSession(tokens, sessions, manager))
	api.POST("/auth/logout", authHandler.Logout)

	api.GET("/accounts", accountHandler.Directory)
	api.POST("/accounts/refresh", accountHandler.Refresh)
	api.POST("/accounts/:accountId/refresh", accountHandler.RefreshAccount)
	api.POST("/accounts", accountHandler.Create)
	api.GET("/users", accountHandler.Users)

	api.GET("/selection", selectionHandler.State)
	api.PUT("/selection/:accountId", selectionHandler.Select)
	api.DELETE("/selection", selectionHandler.Deselect)

	api.POST("/transfers", transferHandler.Submit)

	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	defer cancelCleanup()
	go runSessionCleanup(cleanupCtx, db, cfg.Security.SessionTTL, logger)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	srvErrCh := make(chan error, 1)
	go func() {
		logger.Info("gateway listening", "addr", addr, "environment", cfg.Server.Environment)
		srvErrCh <- e.Start(addr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err.Error())
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err.Error())
		os.Exit(1)
	}

	logger.Info("server exited cleanly")
}

// runSessionCleanup periodically purges expired sessions and long-revoked
// rows from the session store.
func runSessionCleanup(ctx context.Context, db *database.DB, retention time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := db.CleanupExpiredSessions(retention); err != nil {
				logger.Warn("session cleanup failed", "error", err.Error())
			}
		}
	}
}
