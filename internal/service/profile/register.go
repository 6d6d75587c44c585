package profile

import (
	"github.com/gin-gonic/gin"

	"github.com/yaadmatch/yaadmatch/internal/app"
)

// Registrar ties the profile service into the HTTP router.
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the profile service.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the profile routes to the router. All of them sit behind
// bearer auth.
func (r *Registrar) Register(e *gin.Engine, requireAuth gin.HandlerFunc) {
	s := NewService(r.appCtx)

	api := e.Group("/api", requireAuth)
	api.GET("/profiles", s.handleList)
	api.POST("/profiles", s.handleCreate)
	api.GET("/profiles/:id", s.handleGet)
	api.PUT("/profiles/:id", s.handleUpdate)
	api.GET("/search", s.handleSearch)
	api.GET("/users/:id/profiles", s.handleProfilesOfUser)
}
