package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shariqkhan335/RFI-PROJ/pkg/logger"
)

// Pinger reports whether the record backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

var startTime = time.Now()

// RegisterHealth mounts the liveness and readiness probes.
// GET /health answers the plain text "OK" as long as the process serves
// requests; GET /ready returns 503 while the backend does not answer.
func RegisterHealth(r *gin.Engine, p Pinger) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		uptime := time.Since(startTime).Round(time.Second).String()
		if err := p.Ping(ctx); err != nil {
			logger.Warn("readiness check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": "storage unavailable", "uptime": uptime})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "uptime": uptime})
	})
}
