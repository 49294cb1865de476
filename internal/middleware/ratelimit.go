package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"shortlink/internal/config"
)

// RateLimit 管理接口的全局令牌桶限流。跳转路径不经过这里
func RateLimit(limitConfig config.Limit) gin.HandlerFunc {
	if !limitConfig.Enabled || limitConfig.Requests <= 0 {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	burst := int(limitConfig.Burst)
	if burst <= 0 {
		burst = int(limitConfig.Requests)
	}
	// requests_per_minute 换算成每秒速率
	limiter := rate.NewLimiter(rate.Limit(float64(limitConfig.Requests)/60), burst)

	return func(c *gin.Context) {
		for _, path := range limitConfig.SkipPaths {
			if strings.HasPrefix(c.Request.URL.Path, path) {
				c.Next()
				return
			}
		}

		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"ok": false, "msg": "TOO_MANY_REQUESTS"})
			return
		}
		c.Next()
	}
}
