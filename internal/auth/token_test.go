package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaadmatch/yaadmatch/internal/auth"
	"github.com/yaadmatch/yaadmatch/internal/cache"
	"github.com/yaadmatch/yaadmatch/internal/config"
)

func testConfig(ttl time.Duration) *config.Config {
	cfg := config.New()
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.TTL = ttl
	return cfg
}

func TestTokenRoundTrip(t *testing.T) {
	tm := auth.NewTokenManager(testConfig(time.Hour))

	token, err := tm.Issue(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
}

func TestExpiredTokenRejected(t *testing.T) {
	tm := auth.NewTokenManager(testConfig(-time.Minute))

	token, err := tm.Issue(42)
	require.NoError(t, err)

	_, err = tm.Parse(token)
	assert.Error(t, err)
}

func TestWrongSecretRejected(t *testing.T) {
	tm := auth.NewTokenManager(testConfig(time.Hour))
	token, err := tm.Issue(42)
	require.NoError(t, err)

	other := config.New()
	other.JWT.Secret = "different-secret"
	other.JWT.TTL = time.Hour

	_, err = auth.NewTokenManager(other).Parse(token)
	assert.Error(t, err)
}

// setupMiddleware wires the auth middleware in front of a probe handler that
// echoes the resolved user id.
func setupMiddleware(t *testing.T) (*gin.Engine, *auth.TokenManager, *cache.RedisCache) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := testConfig(time.Hour)
	cfg.Redis.Addr = mr.Addr()

	tm := auth.NewTokenManager(cfg)
	rdb := cache.NewRedisCache(cfg)

	r := gin.New()
	r.GET("/probe", auth.Middleware(tm, rdb), func(c *gin.Context) {
		c.JSON(200, gin.H{"user_id": auth.UserID(c)})
	})
	return r, tm, rdb
}

func doProbe(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMiddlewareMissingToken(t *testing.T) {
	r, _, _ := setupMiddleware(t)

	w := doProbe(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Missing token")
}

func TestMiddlewareMalformedHeader(t *testing.T) {
	r, _, _ := setupMiddleware(t)

	w := doProbe(r, "not-a-bearer-header")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMiddlewareValidToken(t *testing.T) {
	r, tm, _ := setupMiddleware(t)

	token, err := tm.Issue(7)
	require.NoError(t, err)

	w := doProbe(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":7`)
}

func TestMiddlewareRevokedToken(t *testing.T) {
	r, tm, rdb := setupMiddleware(t)

	token, err := tm.Issue(7)
	require.NoError(t, err)

	require.NoError(t, rdb.RevokeToken(context.Background(), token, time.Hour))

	w := doProbe(r, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "revoked")
}
