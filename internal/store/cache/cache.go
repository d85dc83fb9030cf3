package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned when a key is absent.
var ErrCacheMiss = errors.New("cache miss")

// CacheService defines the interface for a distributed cache.
type CacheService interface {
	// Get retrieves a value and unmarshals it into dest.
	Get(ctx context.Context, key string, dest interface{}) error

	// Set stores a value with a TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes a value.
	Delete(ctx context.Context, key string) error
}

// Noop is the fallback when no cache backend is configured. Every Get is a
// miss and writes are discarded.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (n *Noop) Get(ctx context.Context, key string, dest interface{}) error {
	return ErrCacheMiss
}

func (n *Noop) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (n *Noop) Delete(ctx context.Context, key string) error {
	return nil
}
