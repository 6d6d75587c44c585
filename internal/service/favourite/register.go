package favourite

import (
	"github.com/gin-gonic/gin"

	"github.com/yaadmatch/yaadmatch/internal/app"
)

// Registrar ties the favourite service into the HTTP router.
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the favourite service.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the favourite routes to the router.
func (r *Registrar) Register(e *gin.Engine, requireAuth gin.HandlerFunc) {
	s := NewService(r.appCtx)

	api := e.Group("/api", requireAuth)
	api.POST("/profiles/:id/favourite", s.handleAddFavourite)
	api.GET("/users/:id/favourites", s.handleListFavourites)
	api.GET("/users/favourites/:n", s.handleTopFavourited)
}
