// Package ratelimit throttles requests per client IP and per authenticated user.
package ratelimit

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/tendant/simple-todo/pkg/client"
	errs "github.com/tendant/simple-todo/pkg/errors"
)

// Config holds rate limiting configuration
type Config struct {
	// Per-IP rate limiting
	PerIPCapacity   int
	PerIPRefillRate float64 // Requests per second

	// Per-user rate limiting, applied when an AuthUser is present
	PerUserCapacity   int
	PerUserRefillRate float64

	// How long to keep inactive buckets in memory
	BucketTTL time.Duration
}

// PerMinute returns a config allowing burst requests at once and perMinute
// requests per minute afterwards, for both IPs and users.
func PerMinute(perMinute, burst int) Config {
	rate := float64(perMinute) / 60.0
	return Config{
		PerIPCapacity:     burst,
		PerIPRefillRate:   rate,
		PerUserCapacity:   burst,
		PerUserRefillRate: rate,
		BucketTTL:         time.Hour,
	}
}

// Middleware holds the rate limiting middleware state
type Middleware struct {
	ipLimiter   *RateLimiter
	userLimiter *RateLimiter
}

// NewMiddleware creates the limiters described by config. A zero capacity
// disables that limiter.
func NewMiddleware(config Config) *Middleware {
	m := &Middleware{}
	if config.PerIPCapacity > 0 {
		m.ipLimiter = NewRateLimiter(config.PerIPCapacity, config.PerIPRefillRate, config.BucketTTL)
	}
	if config.PerUserCapacity > 0 {
		m.userLimiter = NewRateLimiter(config.PerUserCapacity, config.PerUserRefillRate, config.BucketTTL)
	}
	return m
}

// Start sweeps idle buckets until stop is closed.
func (m *Middleware) Start(stop <-chan struct{}) {
	if m.ipLimiter != nil {
		m.ipLimiter.StartSweeper(stop)
	}
	if m.userLimiter != nil {
		m.userLimiter.StartSweeper(stop)
	}
}

// Handler returns the rate limiting middleware handler
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if m.ipLimiter != nil && ip != "" && !m.ipLimiter.Allow(ip) {
			m.rateLimitExceeded(w, r, "ip", ip)
			return
		}

		if user := client.GetAuthUser(r); m.userLimiter != nil && user != nil {
			key := strconv.FormatInt(user.UserID, 10)
			if !m.userLimiter.Allow(key) {
				m.rateLimitExceeded(w, r, "user", key)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) rateLimitExceeded(w http.ResponseWriter, r *http.Request, limitType, key string) {
	slog.Warn("Rate limit exceeded",
		"type", limitType,
		"key", key,
		"path", r.URL.Path,
		"method", r.Method,
	)
	w.Header().Set("Retry-After", "60")
	errs.Render(w, r, errs.RateLimited("too many requests, please try again later").WithDetail("type", limitType))
}

// clientIP strips the port from RemoteAddr. Proxy headers are handled
// upstream by middleware.RealIP.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
