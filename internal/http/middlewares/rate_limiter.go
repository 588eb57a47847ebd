package middlewares

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window limiter backed by redis, shared across
// replicas. It guards the credential endpoints against brute force.
type RateLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

func NewRateLimiter(rdb *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		rdb:    rdb,
		limit:  limit,
		window: window,
	}
}

// Middleware enforces the limit per client IP within the named scope.
func (rl *RateLimiter) Middleware(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.rdb == nil {
			c.Next()
			return
		}

		key := "ratelimit:" + scope + ":" + clientIP(c)
		ctx := c.Request.Context()

		count, err := rl.rdb.Incr(ctx, key).Result()

		if err != nil {
			// fail open: a limiter outage must not take down login
			c.Next()
			return
		}

		if count == 1 {
			rl.rdb.Expire(ctx, key, rl.window)
		}

		if count > int64(rl.limit) {
			ttl, err := rl.rdb.TTL(ctx, key).Result()

			retryAfter := int(rl.window.Seconds())
			if err == nil && ttl > 0 {
				retryAfter = int(ttl.Seconds())
			}

			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Too many requests. Please try again shortly.",
			})
			return
		}

		c.Next()
	}
}

func clientIP(c *gin.Context) string {
	// Gin's ClientIP respects X-Forwarded-For / X-Real-IP if configured.
	ip := c.ClientIP()

	host, _, err := net.SplitHostPort(ip)

	if err == nil && host != "" {
		return host
	}

	return ip
}
