package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stwalsh4118/landrecords/internal/metrics"
)

// Metrics records request counts and latency by matched route.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		m.HTTPInflight.Inc()
		defer m.HTTPInflight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
