package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arnavshah/duty-roster-api/pkg/auth"
	"github.com/arnavshah/duty-roster-api/pkg/config"
	"github.com/arnavshah/duty-roster-api/pkg/database"
	"github.com/arnavshah/duty-roster-api/pkg/handlers"
	applogger "github.com/arnavshah/duty-roster-api/pkg/logger"
	"github.com/arnavshah/duty-roster-api/pkg/metrics"
	"github.com/arnavshah/duty-roster-api/pkg/ratelimit"
	"github.com/arnavshah/duty-roster-api/pkg/router"
)

func main() {
	cfg, err := config.Load(os.Getenv("ROSTER_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	gin.SetMode(cfg.Server.Mode)
	logger.Info("starting duty roster api",
		zap.Int("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.String("log_level", cfg.Log.Level),
	)

	db, err := database.InitDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}
	if err := auth.EnsureAdminExists(db, &cfg.Auth, logger); err != nil {
		logger.Fatal("admin bootstrap failed", zap.Error(err))
	}

	h := &handlers.Handler{
		DB:      db,
		Auth:    auth.NewAuthenticator(&cfg.Auth),
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.NewCollector(),
	}
	// Rate limiting is optional: without Redis the server runs unlimited
	var limiter *ratelimit.Limiter
	if cfg.Redis.Addr != "" {
		limiter, err = ratelimit.NewLimiter(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("redis unavailable, rate limiting disabled", zap.Error(err))
		} else {
			h.Limiter = limiter
		}
	}
	engine := router.Setup(h, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	if limiter != nil {
		limiter.Close()
	}
	logger.Info("server stopped")
}
