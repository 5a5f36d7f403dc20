package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/webloader/models"
	"github.com/use-agent/webloader/pipeline"
)

// OpenWebUI returns the handler for POST /, compatible with the OpenWebUI
// external document loader contract: failures are silently dropped rather
// than surfaced per-URL.
func OpenWebUI(p *pipeline.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.OpenWebUIRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		docs := p.LoadOpenWebUI(c.Request.Context(), req.URLs, c.Request.Header)
		c.JSON(http.StatusOK, docs)
	}
}
