package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stwalsh4118/landrecords/internal/logger"
)

// LoggerKey is the context key for the request-scoped logger.
const LoggerKey = "logger"

// Logger stores a request-scoped child logger in the context and logs one
// line per completed request, leveled by status code.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestLogger := log.WithRequestID(GetRequestID(c))
		c.Set(LoggerKey, requestLogger)

		c.Next()

		statusCode := c.Writer.Status()
		fields := logger.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      statusCode,
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if c.Request.ContentLength > 0 {
			fields["request_bytes"] = c.Request.ContentLength
		}
		if size := c.Writer.Size(); size > 0 {
			fields["response_bytes"] = size
		}
		if len(c.Request.URL.RawQuery) > 0 {
			fields["query"] = c.Request.URL.RawQuery
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		switch {
		case statusCode >= 500:
			requestLogger.Error("Request completed with server error", nil, fields)
		case statusCode >= 400:
			requestLogger.Warn("Request completed with client error", fields)
		default:
			requestLogger.Info("Request completed", fields)
		}
	}
}

// GetLogger retrieves the logger from the Gin context.
// Returns nil if not found.
func GetLogger(c *gin.Context) *logger.Logger {
	if value, exists := c.Get(LoggerKey); exists {
		if log, ok := value.(*logger.Logger); ok {
			return log
		}
	}
	return nil
}
