package ratelimit

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GinMiddleware 创建 Gin 限流中间件，keyFunc 为 nil 时按客户端 IP 限流。
// 被限流返回 429；限流器自身出错时放行。
func GinMiddleware(limiter Limiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	if keyFunc == nil {
		keyFunc = func(c *gin.Context) string {
			return c.ClientIP()
		}
	}

	return func(c *gin.Context) {
		key := keyFunc(c)
		if key == "" {
			c.Next()
			return
		}

		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
				"code":  "rate_limited",
			})
			return
		}

		c.Next()
	}
}
