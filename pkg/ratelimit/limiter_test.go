package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tendant/simple-todo/pkg/client"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func TestTokenBucketAllow(t *testing.T) {
	clock := newClock()
	tb := newTokenBucket(5, 1.0, clock.Now)

	for i := 0; i < 5; i++ {
		assert.True(t, tb.Allow(), "request %d within burst", i+1)
	}
	assert.False(t, tb.Allow())

	clock.Advance(2 * time.Second)
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())

	// Refill never exceeds capacity.
	clock.Advance(time.Hour)
	assert.Equal(t, 0.0, tb.Tokens())
	tb.Allow()
	assert.Equal(t, 4.0, tb.Tokens())
}

func TestTokenBucketReset(t *testing.T) {
	tb := newTokenBucket(3, 0, newClock().Now)
	for i := 0; i < 3; i++ {
		tb.Allow()
	}
	assert.False(t, tb.Allow())

	tb.Reset()
	assert.Equal(t, 3.0, tb.Tokens())
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(2, 0, 0)
	assert.True(t, rl.Allow("key1"))
	assert.True(t, rl.Allow("key1"))
	assert.False(t, rl.Allow("key1"))

	assert.True(t, rl.Allow("key2"))

	rl.Reset("key1")
	assert.True(t, rl.Allow("key1"))
}

func TestRateLimiterSweep(t *testing.T) {
	clock := newClock()
	rl := NewRateLimiter(1, 1, time.Minute)
	rl.now = clock.Now

	rl.Allow("idle")
	clock.Advance(30 * time.Second)
	rl.Allow("active")
	assert.Equal(t, 2, rl.Len())

	clock.Advance(45 * time.Second)
	rl.Sweep()
	assert.Equal(t, 1, rl.Len())
}

func TestMiddleware(t *testing.T) {
	m := NewMiddleware(Config{PerIPCapacity: 2, PerUserCapacity: 1})
	h := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	serve := func(addr string, userID int64) int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = addr
		if userID != 0 {
			req = req.WithContext(client.WithAuthUser(req.Context(), &client.AuthUser{UserID: userID}))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	t.Run("per ip", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve("10.0.0.1:1234", 0))
		assert.Equal(t, http.StatusOK, serve("10.0.0.1:5678", 0))
		assert.Equal(t, http.StatusTooManyRequests, serve("10.0.0.1:9999", 0))
		assert.Equal(t, http.StatusOK, serve("10.0.0.2:1234", 0))
	})

	t.Run("per user", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve("10.0.1.1:1", 7))
		assert.Equal(t, http.StatusTooManyRequests, serve("10.0.1.2:1", 7))
	})
}
