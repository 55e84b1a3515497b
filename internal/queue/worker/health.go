package worker

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is a dependency checked by /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and readiness for the worker process.
// Readiness requires the run loop to be active and every dependency to answer.
func (w *Worker) HealthHandler(deps map[string]Pinger) http.Handler {
	r := gin.New()

	r.Use(gin.Recovery())

	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"ok": true,
		})
	})

	r.GET("/readyz", func(c *gin.Context) {
		if !w.Ready() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 500*time.Millisecond)
		defer cancel()

		for name, dep := range deps {
			if err := dep.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "dependency": name})
				return
			}
		}

		m := w.Metrics()
		c.JSON(http.StatusOK, gin.H{
			"status": "ready",
			"jobs": gin.H{
				"claimed": m.Claimed,
				"done":    m.Done,
				"retried": m.Retried,
				"failed":  m.Failed,
			},
		})
	})

	return r
}
