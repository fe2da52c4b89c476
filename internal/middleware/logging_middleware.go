package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// LoggingMiddleware logs basic request/response details and injects a request_id into context.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		requestID := uuid.New().String()[:8]
		c.Set("request_id", requestID)

		c.Next()

		status := c.Writer.Status()
		ev := log.Info()
		if status >= 500 {
			ev = log.Error()
		}
		ev.
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP()).
			Str("partner_id", c.GetString("partner_id")).
			Msg("HTTP Request")
	}
}
