package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// RateLimitConfig defines the configuration for rate limiting
type RateLimitConfig struct {
	// Requests is the maximum number of requests allowed within the window
	Requests int
	// Window is the time window for rate limiting
	Window time.Duration
	// KeyFunc returns the bucket key (defaults to client IP)
	KeyFunc func(c echo.Context) string
	// MessageKey is the i18n key used for the toast description
	MessageKey string
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

// RateLimiter is a fixed-window, in-memory limiter
type RateLimiter struct {
	config RateLimitConfig
	store  map[string]*rateLimitEntry
	mu     sync.Mutex
	stop   chan struct{}
}

// NewRateLimiter creates a new rate limiter with the given configuration
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	if config.KeyFunc == nil {
		config.KeyFunc = func(c echo.Context) string {
			return c.RealIP()
		}
	}
	if config.MessageKey == "" {
		config.MessageKey = "toast.error.rate_limited"
	}

	rl := &RateLimiter{
		config: config,
		store:  make(map[string]*rateLimitEntry),
		stop:   make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// Allow records a hit for key and reports whether it is within the limit
func (rl *RateLimiter) Allow(key string, now time.Time) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, exists := rl.store[key]
	if !exists || now.After(entry.expiresAt) {
		rl.store[key] = &rateLimitEntry{count: 1, expiresAt: now.Add(rl.config.Window)}
		return true, 0
	}

	if entry.count >= rl.config.Requests {
		return false, entry.expiresAt.Sub(now)
	}

	entry.count++
	return true, 0
}

// Middleware returns the rate limiting middleware
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ok, retryAfter := rl.Allow(rl.config.KeyFunc(c), time.Now())
			if !ok {
				seconds := int(retryAfter.Seconds()) + 1
				c.Response().Header().Set("Retry-After", strconv.Itoa(seconds))
				return RespondError(c, http.StatusTooManyRequests, "toast.error.title", rl.config.MessageKey)
			}
			return next(c)
		}
	}
}

// Stop ends the cleanup goroutine
func (rl *RateLimiter) Stop() {
	close(rl.stop)
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := time.Now()
			for key, entry := range rl.store {
				if now.After(entry.expiresAt) {
					delete(rl.store, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// UserKey buckets by authenticated user, falling back to IP
func UserKey(c echo.Context) string {
	if user := GetCurrentUser(c); user != nil {
		return "user:" + user.ID
	}
	return "ip:" + c.RealIP()
}

// LoginRateLimiter limits login attempts to 5 per minute per IP
var LoginRateLimiter = NewRateLimiter(RateLimitConfig{
	Requests: 5,
	Window:   1 * time.Minute,
})

// AIRateLimiter limits AI flow calls to 20 per minute per user
var AIRateLimiter = NewRateLimiter(RateLimitConfig{
	Requests: 20,
	Window:   1 * time.Minute,
	KeyFunc:  UserKey,
})

// PublicFormRateLimiter limits public intake submissions to 30 per minute per IP
var PublicFormRateLimiter = NewRateLimiter(RateLimitConfig{
	Requests: 30,
	Window:   1 * time.Minute,
})
