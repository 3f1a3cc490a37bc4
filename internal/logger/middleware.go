package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TraceIDHeader はリクエストを追跡するためのヘッダー名です。
const TraceIDHeader = "X-Trace-ID"

// Middleware はトレースID付きのロガーをリクエストのコンテキストに格納し、
// レスポンス送信後にアクセスログを1行出力します。
func Middleware(base *Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		l := base.GetChildLogger()
		l.UpdateContext(func(ctx zerolog.Context) zerolog.Context {
			return ctx.Str("trace_id", traceID)
		})
		c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))
		c.Header(TraceIDHeader, traceID)

		start := time.Now()
		c.Next()

		l.Info().
			Str("method", c.Request.Method).
			Str("uri", c.Request.RequestURI).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Int("size", c.Writer.Size()).
			Send()
	}
}
