package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/yaadmatch/yaadmatch/internal/cache"
	svcErr "github.com/yaadmatch/yaadmatch/internal/errors"
)

const (
	ctxUserIDKey      = "auth.userID"
	ctxTokenKey       = "auth.token"
	ctxTokenExpiryKey = "auth.tokenExpiry"
)

// Middleware validates the Authorization bearer token on every request it
// guards: the token must parse, must not be expired, and must not appear in
// the Redis revocation store. On success the resolved user id is attached to
// the request context for handlers to read via UserID.
func Middleware(tm *TokenManager, rdb *cache.RedisCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			svcErr.Abort(c, svcErr.Unauthorized("Missing token"))
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			svcErr.Abort(c, svcErr.Unauthorized("Invalid token"))
			return
		}
		token := parts[1]

		revoked, err := rdb.IsTokenRevoked(c.Request.Context(), token)
		if err != nil {
			svcErr.Abort(c, svcErr.Internal("failed to check token state"))
			return
		}
		if revoked {
			svcErr.Abort(c, svcErr.Unauthorized("Token has been revoked. Please log in again."))
			return
		}

		claims, err := tm.Parse(token)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				svcErr.Abort(c, svcErr.Unauthorized("Token expired"))
				return
			}
			svcErr.Abort(c, svcErr.Unauthorized("Invalid token"))
			return
		}

		c.Set(ctxUserIDKey, claims.UserID)
		c.Set(ctxTokenKey, token)
		c.Set(ctxTokenExpiryKey, claims.ExpiresAt.Time)

		c.Next()
	}
}

// UserID returns the authenticated user's id placed by Middleware.
// Zero means the request never went through the middleware.
func UserID(c *gin.Context) uint64 {
	if v, ok := c.Get(ctxUserIDKey); ok {
		if id, ok := v.(uint64); ok {
			return id
		}
	}
	return 0
}

// BearerToken returns the raw validated token and its expiry time, for
// handlers that need to revoke it (logout).
func BearerToken(c *gin.Context) (string, time.Time) {
	token, _ := c.Get(ctxTokenKey)
	expiry, _ := c.Get(ctxTokenExpiryKey)

	tokenStr, _ := token.(string)
	expiryTime, _ := expiry.(time.Time)
	return tokenStr, expiryTime
}
