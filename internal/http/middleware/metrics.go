package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/leadops-backend/internal/domain/aggregates"
	"github.com/yungbote/leadops-backend/internal/observability"
)

// Metrics records request counts and latency per route. Requests that fail
// with an aggregate error are also counted by its code.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		m.ApiInflightInc()
		defer m.ApiInflightDec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		status := c.Writer.Status()
		m.ObserveAPI(c.Request.Method, route, strconv.Itoa(status), time.Since(start))
		if status >= 400 {
			m.IncAPIError(route, errorCode(c))
		}
	}
}

// errorCode is the aggregate code of the last error attached to the request.
func errorCode(c *gin.Context) string {
	last := c.Errors.Last()
	if last == nil {
		return "unclassified"
	}
	if code := domainagg.CodeOf(last.Err); code != "" {
		return string(code)
	}
	return "unclassified"
}
