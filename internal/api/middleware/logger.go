package middleware

import (
	"time"

	"github.com/Marga-Ghale/projecthub-backend/internal/logger"
	"github.com/gin-gonic/gin"
)

// RequestLogger logs every request once it has been handled.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
			"ip", c.ClientIP(),
		}
		switch {
		case status >= 500:
			logger.L().Errorw("[HTTP] request", fields...)
		case status >= 400:
			logger.L().Warnw("[HTTP] request", fields...)
		default:
			logger.L().Infow("[HTTP] request", fields...)
		}

		for _, e := range c.Errors {
			logger.L().Errorw("[HTTP] handler error", "path", c.Request.URL.Path, "error", e.Err)
		}
	}
}
