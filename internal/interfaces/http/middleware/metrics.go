package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/patent-radar/internal/infrastructure/monitoring/prometheus"
)

// Metrics records request counts, latencies, and in-flight gauges.
// Routes are labelled by the gin template path so cardinality stays
// bounded.
func Metrics(m *prometheus.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		m.HTTPActiveRequests.WithLabelValues(route).Inc()
		start := time.Now()

		c.Next()

		m.HTTPActiveRequests.WithLabelValues(route).Dec()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).
			Observe(time.Since(start).Seconds())
		m.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
