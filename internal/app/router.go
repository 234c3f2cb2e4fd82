package app

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/shariqkhan335/RFI-PROJ/handlers"
	"github.com/shariqkhan335/RFI-PROJ/internal/config"
	"github.com/shariqkhan335/RFI-PROJ/internal/inventory/handler"
	"github.com/shariqkhan335/RFI-PROJ/internal/inventory/service"
	"github.com/shariqkhan335/RFI-PROJ/internal/oidc"
	"github.com/shariqkhan335/RFI-PROJ/internal/tokens"
	"github.com/shariqkhan335/RFI-PROJ/pkg/logger"
	"github.com/shariqkhan335/RFI-PROJ/pkg/middleware"
)

// Deps are the optional collaborators of the router.
type Deps struct {
	Verifier middleware.Verifier // nil leaves writes unauthenticated
	Redis    *redis.Client       // used by the Redis rate limiter
}

// NewVerifier picks the bearer token verifier for cfg: HS256 when a JWT
// secret is set, otherwise OIDC discovery, otherwise the insecure claims
// reader when explicitly allowed. It returns nil when auth is off.
func NewVerifier(ctx context.Context, cfg config.AuthConfig) (middleware.Verifier, error) {
	switch {
	case cfg.JWTSecret != "":
		return tokens.NewHMACVerifier(cfg.JWTSecret), nil
	case cfg.OIDCIssuer != "":
		return oidc.NewVerifier(ctx, cfg.OIDCIssuer, cfg.OIDCClientID)
	case cfg.AllowInsecure:
		logger.Warn("token signatures are not checked (ALLOW_INSECURE_TOKEN)")
		return oidc.NewInsecureVerifier(), nil
	}
	return nil, nil
}

func rateLimiter(cfg config.RateLimitConfig, client *redis.Client) gin.HandlerFunc {
	switch {
	case !cfg.Enabled:
		return nil
	case cfg.UseRedis:
		win := time.Duration(cfg.WindowSeconds) * time.Second
		return middleware.RedisRateLimitMiddleware(client, cfg.RPS, cfg.Burst, win)
	default:
		return middleware.RateLimitMiddleware(cfg.RPS, cfg.Burst)
	}
}

// NewRouter assembles the HTTP surface: middleware, probes, API routes,
// docs, metrics and the static site fallback. Probes, docs and metrics are
// never rate limited.
func NewRouter(cfg *config.Config, svc service.Service, deps Deps) *gin.Engine {
	r := gin.New()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsCfg.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	r.Use(cors.New(corsCfg))
	r.Use(middleware.RequestLogger(), gin.Recovery())

	handlers.RegisterHealth(r, svc)

	// the limiter runs after auth so writes are bucketed per token subject
	var mw handler.Middleware
	if deps.Verifier != nil {
		mw.Write = append(mw.Write, middleware.AuthMiddleware(deps.Verifier))
	}
	if limit := rateLimiter(cfg.RateLimit, deps.Redis); limit != nil {
		mw.Read = append(mw.Read, limit)
		mw.Write = append(mw.Write, limit)
	}
	handler.RegisterRoutes(r, svc, mw)

	handlers.RegisterSwagger(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterStatic(r, cfg.Server.PublicDir)

	return r
}
