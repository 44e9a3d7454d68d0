package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"

	"reportforms/internal/apierrors"
	"reportforms/internal/monitoring"
)

// monitoringMiddleware times each request and feeds the result into the
// monitoring package's global PerformanceMetrics, the same counters
// GetHealthStatus reports at /health.
func monitoringMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		monitoring.UpdatePerformance(time.Since(start))
	}
}

// abortWithError aborts the request with apiErr and records it against the
// monitoring package's global ErrorTracker under the given component and
// operation labels, so /health's error metrics reflect real request traffic
// rather than staying permanently empty.
func (s *Server) abortWithError(c *gin.Context, component, operation string, apiErr *apierrors.APIError) {
	apierrors.AbortWithError(c, apiErr)
	monitoring.TrackError(c.Request.Context(), apiErr, component, operation)
}
