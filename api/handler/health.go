package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/webloader/browser"
	"github.com/use-agent/webloader/models"
)

const version = "0.1.0"

// Health returns the handler for GET /health.
func Health(pool *browser.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "healthy"
		if !pool.IsHealthy() {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:  status,
			Version: version,
			BrowserPool: models.BrowserPoolStatus{
				Available:       pool.AvailableSlots(),
				Total:           pool.TotalSlots(),
				Healthy:         pool.IsHealthy(),
				RecreationCount: pool.RecreationCount(),
			},
		})
	}
}
