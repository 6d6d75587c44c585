package cache

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yaadmatch/yaadmatch/internal/config"
)

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

// KeyForRevokedToken generates the Redis key holding a logged-out token.
func (c *RedisCache) KeyForRevokedToken(token string) string {
	return fmt.Sprintf("auth:revoked:%s", token)
}

// RevokeToken marks a bearer token as logged out. The entry expires together
// with the token itself, so the revocation set never needs manual cleanup.
func (c *RedisCache) RevokeToken(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		// token already expired, nothing to persist
		return nil
	}
	return c.Client.Set(ctx, c.KeyForRevokedToken(token), "1", ttl).Err()
}

// IsTokenRevoked reports whether a token has been blacklisted via logout.
func (c *RedisCache) IsTokenRevoked(ctx context.Context, token string) (bool, error) {
	_, err := c.Client.Get(ctx, c.KeyForRevokedToken(token)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

const csrfTokenTTL = time.Hour

// IssueCSRFToken mints a random anti-forgery token and stores it with a TTL.
func (c *RedisCache) IssueCSRFToken(ctx context.Context) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate csrf token: %w", err)
	}
	token := hex.EncodeToString(raw)

	key := fmt.Sprintf("csrf:%s", token)
	if err := c.Client.Set(ctx, key, "1", csrfTokenTTL).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// CheckCSRFToken reports whether the token was issued by us and is still live.
// Tokens stay valid until expiry; they are not consumed on first use.
func (c *RedisCache) CheckCSRFToken(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	_, err := c.Client.Get(ctx, fmt.Sprintf("csrf:%s", token)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
