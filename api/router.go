// Package api wires the C8 Request Pipeline behind an HTTP surface, grounded
// on teacher api/router.go's gin.Engine assembly.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/use-agent/webloader/api/handler"
	"github.com/use-agent/webloader/api/middleware"
	"github.com/use-agent/webloader/browser"
	"github.com/use-agent/webloader/config"
	"github.com/use-agent/webloader/pipeline"
	"github.com/use-agent/webloader/screenshot"
)

// NewRouter builds the configured gin.Engine with all routes and
// middleware. /health and /screenshots/:filename are exempt from
// authentication so monitoring probes and served assets always work.
func NewRouter(p *pipeline.Pipeline, pool *browser.Pool, shots *screenshot.Store, cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	r.GET("/health", handler.Health(pool))
	r.GET("/screenshots/:filename", handler.Screenshot(shots))

	protected := r.Group("")
	protected.Use(middleware.Auth(cfg.APIKey))
	protected.Use(middleware.IdentityRateLimit(cfg.Identity))

	protected.POST("/load", handler.Load(p))
	protected.POST("/load/batch", handler.Batch(p))
	protected.POST("/", handler.OpenWebUI(p))

	return r
}
