package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terrascribe/llm-api/internal/store/cache"
	"go.uber.org/zap"
)

// memCache is a map-backed CacheService for tests.
type memCache struct {
	mu   sync.Mutex
	data map[string]*User
}

func newMemCache() *memCache { return &memCache{data: make(map[string]*User)} }

func (m *memCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.data[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	*dest.(*User) = *u
	return nil
}

func (m *memCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := *value.(*User)
	m.data[key] = &u
	return nil
}

func (m *memCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func TestVerify(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "Bearer session-token", r.Header.Get("Authorization"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		_, _ = w.Write([]byte(`{"id": "user-1", "email": "geologist@example.com", "role": "authenticated"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "anon-key", newMemCache(), time.Minute, zap.NewNop())

	user, err := client.Verify(context.Background(), "session-token")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "geologist@example.com", user.Email)

	// second call is served from cache
	_, err = client.Verify(context.Background(), "session-token")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestVerify_InvalidToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message": "invalid JWT"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "anon-key", cache.NewNoop(), time.Minute, zap.NewNop())

	_, err := client.Verify(context.Background(), "bad-token")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerify_EmptyToken(t *testing.T) {
	client := NewClient("http://unused", "anon-key", cache.NewNoop(), time.Minute, zap.NewNop())
	_, err := client.Verify(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerify_EmptyIdentity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "anon-key", cache.NewNoop(), time.Minute, zap.NewNop())
	_, err := client.Verify(context.Background(), "token")
	assert.ErrorIs(t, err, ErrUnauthorized)
}
