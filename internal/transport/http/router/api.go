package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"laundry-api/internal/core/server"
	mdw "laundry-api/internal/transport/http/middleware"
)

type Options struct {
	MaxBodyBytes int64
	MaxInFlight  int64
	// CORSOrigins restricts cross-origin callers; empty allows any origin.
	CORSOrigins []string
}

// NewAPIEngine builds the public engine: health and metrics at the root,
// every module under /api.
func NewAPIEngine(l *zap.Logger, opt Options, mods ...APIModule) *gin.Engine {
	r := server.NewRouter(l, opt.CORSOrigins)

	r.Use(mdw.RequestID(), mdw.AccessLog(l), mdw.Metrics())
	if opt.MaxInFlight > 0 {
		r.Use(mdw.ConcurrencyLimit(opt.MaxInFlight))
	}
	if opt.MaxBodyBytes > 0 {
		r.Use(mdw.MaxBodyBytes(opt.MaxBodyBytes))
	}

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(mdw.MetricsHandler()))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Route not found"})
	})

	mountAll(r.Group("/api"), mods)
	return r
}
