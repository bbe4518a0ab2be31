package logging

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const headerRequestID = "X-Request-ID"

// GinMiddleware logs each completed request with status and latency, tagging
// it with a request ID taken from (or written to) the X-Request-ID header.
func GinMiddleware(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(headerRequestID)
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Header(headerRequestID, reqID)

		child := logger.With().
			Str("request_id", reqID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("client_ip", c.ClientIP()).
			Logger()

		c.Request = c.Request.WithContext(child.WithContext(c.Request.Context()))

		c.Next()

		evt := child.Info().
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start))

		// Actor is only known after the auth middleware ran.
		if userID, ok := c.Get("user_id"); ok {
			if id, ok := userID.(int); ok {
				evt = evt.Int("user_id", id)
			}
		}

		evt.Msg("request completed")
	}
}

// Ctx returns the request-scoped logger, falling back to the global one.
func Ctx(c *gin.Context) *zerolog.Logger {
	return zerolog.Ctx(c.Request.Context())
}
