package ratelimit

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RejectFunc writes the response of a limited request.
type RejectFunc func(c *gin.Context, status int, message string)

// Middleware limits requests per client IP. Limiter errors let the request
// through.
func Middleware(l Limiter, logger *zap.Logger, reject RejectFunc) gin.HandlerFunc {
	if reject == nil {
		reject = func(c *gin.Context, status int, message string) {
			c.JSON(status, gin.H{"error": message})
		}
	}
	return func(c *gin.Context) {
		d, err := l.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.Warn("Rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if !d.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(d.RetryAfter.Seconds()))))
			reject(c, http.StatusTooManyRequests, "rate limit exceeded")
			c.Abort()
			return
		}
		c.Next()
	}
}
