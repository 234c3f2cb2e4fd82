package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/shariqkhan335/RFI-PROJ/internal/app"
	"github.com/shariqkhan335/RFI-PROJ/internal/config"
	"github.com/shariqkhan335/RFI-PROJ/internal/database"
	"github.com/shariqkhan335/RFI-PROJ/internal/inventory/service"
	"github.com/shariqkhan335/RFI-PROJ/internal/tokens"
	"github.com/shariqkhan335/RFI-PROJ/pkg/logger"
	"github.com/shariqkhan335/RFI-PROJ/pkg/metrics"
)

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	backend, err := app.OpenBackend(ctx, cfg)
	if err != nil {
		logger.Fatalf("failed to open %s backend: %v", cfg.Storage.Backend, err)
	}
	svc := service.New(backend)

	verifier, err := app.NewVerifier(ctx, cfg.Auth)
	if err != nil {
		logger.Fatalf("failed to initialize token verifier: %v", err)
	}
	if verifier == nil {
		logger.Warnf("no AUTH_JWT_SECRET or AUTH_OIDC_ISSUER configured; writes are unauthenticated")
	}

	// Redis serves the shared rate limiter and the token deny list
	var sharedRedis *redis.Client
	if cfg.Redis.Host != "" && ((cfg.RateLimit.Enabled && cfg.RateLimit.UseRedis) || verifier != nil) {
		sharedRedis, err = database.ConnectRedis(ctx, cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warnf("redis unavailable, rate limiter falls back to in-memory and revocation is off: %v", err)
		} else {
			defer sharedRedis.Close()
			if verifier != nil {
				verifier = tokens.NewDenyList(sharedRedis, cfg.Redis.Prefix+"denylist:").Checked(verifier)
			}
		}
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r := app.NewRouter(cfg, svc, app.Deps{Verifier: verifier, Redis: sharedRedis})

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("Server running on port %s (backend=%s, public=%s)", cfg.Server.Port, cfg.Storage.Backend, cfg.Server.PublicDir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infof("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server shutdown: %v", err)
	}
	if err := svc.Close(); err != nil {
		logger.Errorf("close record store: %v", err)
	}
}
