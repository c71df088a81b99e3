package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Marga-Ghale/projecthub-backend/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
)

// RateLimiter throttles public endpoints per client IP. Without Redis, or
// when Redis errors, requests are let through.
type RateLimiter struct {
	limiter *redis_rate.Limiter
	limit   redis_rate.Limit
}

func NewRateLimiter(rdb *redis.Client, perMinute int) *RateLimiter {
	rl := &RateLimiter{limit: redis_rate.PerMinute(perMinute)}
	if rdb != nil && perMinute > 0 {
		rl.limiter = redis_rate.NewLimiter(rdb)
	}
	return rl
}

func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil || rl.limiter == nil {
			c.Next()
			return
		}

		key := "ratelimit:ip:" + c.ClientIP()
		res, err := rl.limiter.Allow(c.Request.Context(), key, rl.limit)
		if err != nil {
			logger.L().Warnw("[RateLimit] limiter error, failing open", "key", key, "error", err)
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(rl.limit.Rate))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(res.ResetAfter).Unix(), 10))

		if res.Allowed == 0 {
			retryAfter := int(res.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			h.Set("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": fmt.Sprintf("Rate limit exceeded. Retry after %d seconds.", retryAfter),
			})
			return
		}
		c.Next()
	}
}
