package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"khata/internal/config"
	"khata/internal/middleware"
)

func rateLimitRouter(cfg config.RateLimitConfig, userID *uuid.UUID) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != nil {
			c.Set(middleware.ContextKeyUserID, *userID)
		}
		c.Next()
	})
	r.Use(middleware.RateLimit(cfg))
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func hit(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.RemoteAddr = "10.0.0.7:51234"
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit_BurstThenReject(t *testing.T) {
	r := rateLimitRouter(config.RateLimitConfig{Enabled: true, RPS: 0.5, Burst: 2}, nil)

	assert.Equal(t, http.StatusOK, hit(r).Code)
	assert.Equal(t, http.StatusOK, hit(r).Code)

	w := hit(r)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))
	assert.Equal(t, "RATE_LIMITED", errorCode(t, w))
}

func TestRateLimit_UsersHaveSeparateBuckets(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, RPS: 0.5, Burst: 1}
	first, second := uuid.New(), uuid.New()
	limiter := middleware.RateLimit(cfg)

	r := gin.New()
	r.GET("/test", func(c *gin.Context) {
		if c.GetHeader("X-User") == "second" {
			c.Set(middleware.ContextKeyUserID, second)
		} else {
			c.Set(middleware.ContextKeyUserID, first)
		}
		c.Next()
	}, limiter, func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(user string) int {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
		req.Header.Set("X-User", user)
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("first"))
	assert.Equal(t, http.StatusTooManyRequests, do("first"))
	assert.Equal(t, http.StatusOK, do("second"))
}

func TestRateLimit_Disabled(t *testing.T) {
	r := rateLimitRouter(config.RateLimitConfig{Enabled: false, RPS: 0.1, Burst: 1}, nil)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, hit(r).Code)
	}
}
