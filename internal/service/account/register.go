package account

import (
	"github.com/gin-gonic/gin"

	"github.com/yaadmatch/yaadmatch/internal/app"
)

// Registrar ties the account service into the HTTP router.
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the account service.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the account routes to the router.
func (r *Registrar) Register(e *gin.Engine, requireAuth gin.HandlerFunc) {
	s := NewService(r.appCtx)

	api := e.Group("/api")
	api.POST("/register", s.handleRegister)
	api.GET("/csrf-token", s.handleCSRFToken)
	api.POST("/auth/login", s.handleLogin)
	api.POST("/auth/logout", requireAuth, s.handleLogout)
	api.GET("/users/:id", requireAuth, s.handleGetUser)
}
