package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/webloader/models"
)

// Auth implements bearer-or-bare-key API key authentication, grounded on
// the original service's auth middleware: "Authorization: Bearer <key>" or
// the bare key value, checked against a single configured key. A no-op
// when apiKey is empty. /health and /screenshots/:filename are registered
// outside this middleware's route group entirely.
func Auth(apiKey string) gin.HandlerFunc {
	if apiKey == "" {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
				"code":  models.ErrUnauthorized,
			})
			return
		}

		provided := strings.TrimPrefix(header, "Bearer ")
		if provided != apiKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid API key",
				"code":  models.ErrInvalidAPIKey,
			})
			return
		}

		c.Set("api_key", provided)
		c.Next()
	}
}
