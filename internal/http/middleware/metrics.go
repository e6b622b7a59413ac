package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/adbroker-backend/internal/observability"
)

// Metrics records broker request counts and latency by matched route.
// Routes listed in skip (probes, the scrape endpoint) are not recorded.
// A handler that panics is counted as a 500 before the panic continues to
// the recovery middleware.
func Metrics(m *observability.Metrics, skip ...string) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	skipped := make(map[string]struct{}, len(skip))
	for _, route := range skip {
		skipped[route] = struct{}{}
	}
	return func(c *gin.Context) {
		if _, ok := skipped[c.FullPath()]; ok {
			c.Next()
			return
		}
		start := time.Now()
		m.ApiInflightInc()
		completed := false
		defer func() {
			m.ApiInflightDec()
			status := c.Writer.Status()
			if !completed {
				status = http.StatusInternalServerError
			}
			m.ObserveAPI(c.Request.Method, c.FullPath(), strconv.Itoa(status), time.Since(start))
		}()

		c.Next()
		completed = true
	}
}
