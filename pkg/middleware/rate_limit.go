package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// ratePrefix namespaces the counters so they can share a Redis database with
// the social connection cache.
const ratePrefix = "postpilot:ratelimit"

// rateLimitKey buckets authenticated callers per user and anonymous ones per
// client IP, scoped by route template so a burst against one endpoint does
// not exhaust the allowance for the others.
func rateLimitKey(c *gin.Context) string {
	caller, exists := c.Get("user_id")
	if !exists {
		caller = c.ClientIP()
	}
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	return fmt.Sprintf("%s:%s:%v", ratePrefix, route, caller)
}

// RateLimitMiddleware allows at most limit requests per caller per window,
// counted in Redis. Defaults come from RATE_LIMIT_REQUESTS and
// RATE_LIMIT_WINDOW via pkg/config.
func RateLimitMiddleware(redisClient *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := rateLimitKey(c)

		ctx := c.Request.Context()
		count, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Rate limit check failed"})
			c.Abort()
			return
		}

		if count == 1 {
			redisClient.Expire(ctx, key, window)
		}

		if count > int64(limit) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			c.Abort()
			return
		}

		c.Next()
	}
}
