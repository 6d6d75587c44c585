package server

import "github.com/gin-gonic/gin"

// Registrar is a common interface for all HTTP service registrars.
// requireAuth is the bearer-token middleware; each service decides which of
// its routes sit behind it.
type Registrar interface {
	Register(r *gin.Engine, requireAuth gin.HandlerFunc)
}
