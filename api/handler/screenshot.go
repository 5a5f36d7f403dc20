package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/webloader/models"
	"github.com/use-agent/webloader/screenshot"
)

// Screenshot returns the handler for GET /screenshots/:filename, an
// ambient addition serving saved screenshot PNGs directly.
func Screenshot(store *screenshot.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		filename := c.Param("filename")

		data, err := store.Get(filename)
		if err != nil {
			ae := models.AsAppError(err)
			c.JSON(http.StatusNotFound, gin.H{"error": ae.Message})
			return
		}

		c.Data(http.StatusOK, "image/png", data)
	}
}
