package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/segubroker/cotizador/browser"
	"github.com/segubroker/cotizador/models"
)

// degradedSessionCount: above this many concurrent browser sessions the
// host is likely near its memory ceiling.
const degradedSessionCount = 8

// Health returns a handler for GET /api/v1/health.
func Health(startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		active := browser.ActiveSessions()

		status := "healthy"
		if active > degradedSessionCount {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:         status,
			Uptime:         time.Since(startTime).Round(time.Second).String(),
			ActiveSessions: active,
			Version:        "0.1.0",
		})
	}
}
