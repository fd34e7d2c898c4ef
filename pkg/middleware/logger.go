package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs failed console requests. Successful ones are left to metrics.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		if status < 400 {
			return
		}

		attrs := []any{
			slog.String("request_id", GetRequestID(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
		}
		if id := SessionID(c); id != "" {
			attrs = append(attrs, slog.String("session_id", id))
		}

		if status >= 500 {
			logger.Error("http_request_error", attrs...)
		} else {
			logger.Warn("http_request_warning", attrs...)
		}
	}
}
