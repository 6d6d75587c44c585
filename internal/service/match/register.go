package match

import (
	"github.com/gin-gonic/gin"

	"github.com/yaadmatch/yaadmatch/internal/app"
)

// Registrar ties the match service into the HTTP router.
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the match service.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the match route to the router.
func (r *Registrar) Register(e *gin.Engine, requireAuth gin.HandlerFunc) {
	s := NewService(r.appCtx)
	e.GET("/api/profiles/matches/:id", requireAuth, s.handleMatches)
}
