package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/citibike-dashboard-go/internal/metrics"
)

// Metrics middleware records request counts and latency per route
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(route, c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}
