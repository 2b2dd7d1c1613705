package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware instruments every request with metrics and an access log
// line. Routes are labeled by their registered pattern, not the raw
// path, so metric cardinality stays bounded.
func Middleware(metrics *Metrics, logger *Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		metrics.RecordRequest(c.Request.Method, route, strconv.Itoa(status), duration)
		if status == http.StatusTooManyRequests {
			metrics.RecordRateLimitHit()
		}
		logger.RequestLogger(
			c.Request.Method,
			c.Request.URL.Path,
			c.ClientIP(),
			c.Request.UserAgent(),
			status,
			duration,
		)
	}
}
