package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"diary-backend/internal/infrastructure/telemetry"
)

// Metrics records request count and latency per route template.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		telemetry.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		telemetry.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
