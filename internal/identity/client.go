// Package identity talks to the external session-verification service. The
// proxy treats it as an opaque token-in, user-out check: it never issues or
// refreshes sessions itself.
package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/terrascribe/llm-api/internal/httpclient"
	"github.com/terrascribe/llm-api/internal/store/cache"
	"go.uber.org/zap"
)

// ErrUnauthorized covers every verification failure the caller can act on:
// missing token, expired session, unknown user.
var ErrUnauthorized = errors.New("unauthorized")

// User is the identity resolved from a bearer token.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Verifier resolves a bearer token to a user.
type Verifier interface {
	Verify(ctx context.Context, token string) (*User, error)
}

type Client struct {
	baseURL  string
	anonKey  string
	client   *http.Client
	cache    cache.CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
}

func NewClient(baseURL, anonKey string, c cache.CacheService, cacheTTL time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:  baseURL,
		anonKey:  anonKey,
		client:   &http.Client{Timeout: 10 * time.Second},
		cache:    c,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Verify resolves the token against the identity service. Verified sessions
// are cached under a hash of the token so the raw credential never lands in
// the cache backend.
func (c *Client) Verify(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	cacheKey := sessionCacheKey(token)

	var cached User
	if err := c.cache.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	} else if err != cache.ErrCacheMiss {
		c.logger.Warn("identity cache read failed", zap.Error(err))
	}

	headers := map[string]string{
		"Authorization": "Bearer " + token,
		"apikey":        c.anonKey,
	}

	var user User
	url := c.baseURL + "/auth/v1/user"
	if err := httpclient.SendRequest(ctx, c.client, "GET", url, headers, nil, &user); err != nil {
		var upstreamErr *httpclient.UpstreamError
		if errors.As(err, &upstreamErr) && upstreamErr.StatusCode == http.StatusUnauthorized {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("identity service: %w", err)
	}
	if user.ID == "" {
		return nil, ErrUnauthorized
	}

	if err := c.cache.Set(ctx, cacheKey, &user, c.cacheTTL); err != nil {
		c.logger.Warn("identity cache write failed", zap.Error(err))
	}

	return &user, nil
}

func sessionCacheKey(token string) string {
	hash := sha256.Sum256([]byte(token))
	return "v1:identity:session:" + hex.EncodeToString(hash[:])
}
