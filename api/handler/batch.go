package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/webloader/models"
	"github.com/use-agent/webloader/pipeline"
)

// Batch returns the handler for POST /load/batch. This is a synchronous
// call: the handler blocks until every URL's task completes and returns
// the full BatchLoadResponse in one response. There is no job-polling
// endpoint.
func Batch(p *pipeline.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BatchLoadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		resp, err := p.LoadBatch(c.Request.Context(), req.URLs, req.Options, c.Request.Header)
		if err != nil {
			ae := models.AsAppError(err)
			c.JSON(ae.StatusCode(), gin.H{"error": ae.Message, "code": ae.Kind})
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}
