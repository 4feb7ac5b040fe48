package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"delivery-service/internal/logging"
	"delivery-service/internal/metrics"

	"github.com/gin-gonic/gin"
)

// CORS allows cross-origin requests from exactly one origin.
func CORS(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && origin == allowedOrigin {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
			h.Add("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			if origin == allowedOrigin {
				c.AbortWithStatus(http.StatusNoContent)
			} else {
				c.AbortWithStatus(http.StatusForbidden)
			}
			return
		}
		c.Next()
	}
}

// Metrics must wrap Recovery so recovered panics are counted with their 500 status.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.Requests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.LatencyMS.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
	}
}

// Recovery is the top-level error boundary: it records a panic and answers 500. It does
// not try to repair any state.
func Recovery(m *metrics.Metrics) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		m.Panic()
		logging.Log(logging.Fields{
			Step:    c.Request.Method + " " + c.Request.URL.Path,
			Status:  "panic",
			Message: fmt.Sprint(recovered),
		})
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	})
}
