package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"khata/internal/config"
)

// RateLimit returns a per-client token bucket limiter. Clients are keyed by
// user when authenticated and by IP otherwise; idle buckets expire from the cache.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RPS <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = int(math.Ceil(cfg.RPS))
	}
	limiters := cache.New(10*time.Minute, 20*time.Minute)
	retryAfter := strconv.Itoa(int(math.Ceil(1 / cfg.RPS)))

	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if userID, err := GetUserID(c); err == nil {
			key = "user:" + userID.String()
		}

		var limiter *rate.Limiter
		if v, found := limiters.Get(key); found {
			limiter = v.(*rate.Limiter)
		} else {
			limiter = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
			// Another request may have stored one first; keep whichever won.
			if err := limiters.Add(key, limiter, cache.DefaultExpiration); err != nil {
				if v, found := limiters.Get(key); found {
					limiter = v.(*rate.Limiter)
				}
			}
		}

		if !limiter.Allow() {
			c.Header("Retry-After", retryAfter)
			abort(c, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded")
			return
		}
		c.Next()
	}
}
