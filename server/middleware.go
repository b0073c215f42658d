package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ceyewan/blockseq/clog"
)

// HeaderRequestID 请求 ID 头，缺失时由服务端生成
const HeaderRequestID = "X-Request-ID"

// requestLog 注入请求 ID 并在请求结束后记录一行访问日志
func requestLog(logger clog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(HeaderRequestID, id)
		ctx := clog.WithRequestID(c.Request.Context(), id)
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []clog.Field{
			clog.String("method", c.Request.Method),
			clog.String("path", c.Request.URL.Path),
			clog.Int("status", status),
			clog.Duration("latency", time.Since(start)),
			clog.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, clog.String("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			logger.ErrorContext(ctx, "request failed", fields...)
		case status >= 400:
			logger.WarnContext(ctx, "request rejected", fields...)
		default:
			logger.DebugContext(ctx, "request served", fields...)
		}
	}
}
