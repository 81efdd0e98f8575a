package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"visa_crm_go/models"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestNewRateLimiter(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		Requests: 10,
		Window:   time.Minute,
	})
	defer rl.Stop()

	assert.Equal(t, 10, rl.config.Requests)
	assert.Equal(t, time.Minute, rl.config.Window)
	assert.NotNil(t, rl.config.KeyFunc)
	assert.Equal(t, "toast.error.rate_limited", rl.config.MessageKey)
}

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Requests: 2, Window: time.Minute})
	defer rl.Stop()

	now := time.Now()
	ok, _ := rl.Allow("k", now)
	assert.True(t, ok)
	ok, _ = rl.Allow("k", now)
	assert.True(t, ok)
	ok, retry := rl.Allow("k", now)
	assert.False(t, ok)
	assert.Equal(t, time.Minute, retry)

	// other keys are independent
	ok, _ = rl.Allow("other", now)
	assert.True(t, ok)

	// window expiry resets
	ok, _ = rl.Allow("k", now.Add(time.Minute+time.Second))
	assert.True(t, ok)
}

func TestRateLimiterMiddleware(t *testing.T) {
	e := echo.New()

	rl := NewRateLimiter(RateLimitConfig{Requests: 1, Window: time.Minute})
	defer rl.Stop()

	handler := rl.Middleware()(func(c echo.Context) error {
		return c.String(http.StatusOK, "success")
	})

	rec := httptest.NewRecorder()
	assert.NoError(t, handler(e.NewContext(httptest.NewRequest(http.MethodPost, "/login", nil), rec)))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	assert.NoError(t, handler(e.NewContext(httptest.NewRequest(http.MethodPost, "/login", nil), rec)))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, ToastDestructive, decodeToast(t, rec).Variant)
}

func TestUserKey(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Contains(t, UserKey(c), "ip:")

	c.Set(ContextKeyUser, &models.User{ID: "u1"})
	assert.Equal(t, "user:u1", UserKey(c))
}
