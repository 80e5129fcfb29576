package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-admin-api/internal/service"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
	"github.com/noah-isme/lms-admin-api/pkg/response"
)

// Limiter decides per key whether a request may proceed.
type Limiter interface {
	Allow(key string) bool
}

// RateLimit throttles requests per client IP.
func RateLimit(limiter Limiter, metrics *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || limiter.Allow(c.ClientIP()) {
			c.Next()
			return
		}
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		metrics.RecordRateLimited(path)
		c.Header("Retry-After", "1")
		response.Abort(c, appErrors.Clone(appErrors.ErrTooManyRequests, "too many requests, please try again later"))
	}
}
