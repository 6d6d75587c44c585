package server

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yaadmatch/yaadmatch/internal/config"
	"github.com/yaadmatch/yaadmatch/internal/logger"
)

// NewRouter builds the gin engine with shared middleware, static routes and
// all registered services. Split from StartHTTPServer so tests can drive the
// router through httptest without binding a port.
func NewRouter(cfg *config.Config, requireAuth gin.HandlerFunc, registrars ...Registrar) *gin.Engine {
	if cfg.App.ENV == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())
	r.Use(cors.Default())

	// uploaded photos and the single-page-app shell
	r.Static("/uploads", cfg.Upload.Dir)
	r.Static("/assets", filepath.Join(cfg.Static.Dir, "assets"))
	r.StaticFile("/", filepath.Join(cfg.Static.Dir, "index.html"))
	r.NoRoute(spaFallback(cfg))

	for _, reg := range registrars {
		reg.Register(r, requireAuth)
	}

	return r
}

// StartHTTPServer boots the HTTP server and blocks until it exits.
func StartHTTPServer(cfg *config.Config, requireAuth gin.HandlerFunc, registrars ...Registrar) error {
	r := NewRouter(cfg, requireAuth, registrars...)
	return r.Run(cfg.HTTP.Host + ":" + cfg.HTTP.Port)
}

// spaFallback serves the SPA entry point for unknown non-API paths so
// client-side routes survive a page reload. Unknown API paths stay 404s.
func spaFallback(cfg *config.Config) gin.HandlerFunc {
	index := filepath.Join(cfg.Static.Dir, "index.html")
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
			return
		}
		c.File(index)
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
