package handler

import (
	"net/http"

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

var r *gin.Engine

func init() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		panic(err)
	}

	db, err := database.InitDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}
	if err := auth.EnsureAdminExists(db, &cfg.Auth, logger); err != nil {
		logger.Error("admin bootstrap failed", zap.Error(err))
	}

	h := &handlers.Handler{
		DB:      db,
		Auth:    auth.NewAuthenticator(&cfg.Auth),
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.NewCollector(),
	}

	if cfg.Redis.Addr != "" {
		limiter, err := ratelimit.NewLimiter(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("redis unavailable, rate limiting disabled", zap.Error(err))
		} else {
			h.Limiter = limiter
		}
	}

	gin.SetMode(gin.ReleaseMode)
	r = router.Setup(h, logger)
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	r.ServeHTTP(w, req)
}
