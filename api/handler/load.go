package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/webloader/models"
	"github.com/use-agent/webloader/pipeline"
)

// Load returns the handler for POST /load.
func Load(p *pipeline.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.LoadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		opts := pipeline.ParseOptions(c.Request.Header, req.URL, req.Options)

		resp, err := p.LoadSingle(c.Request.Context(), opts)
		if err != nil {
			ae := models.AsAppError(err)
			c.JSON(ae.StatusCode(), gin.H{"error": ae.Message, "code": ae.Kind})
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}
