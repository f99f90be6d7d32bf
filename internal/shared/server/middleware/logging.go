package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"vendoreval-backend/internal/shared/telemetry"
)

// Logging emits one structured line per request, tagged with the evaluation
// and vendor the route addresses.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		status := c.Writer.Status()

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      status,
			"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
			"user_id":     UserIDFromContext(c),
			"role":        UserRoleFromContext(c),
			"client_ip":   c.ClientIP(),
		}
		for k, v := range routeScope(c) {
			fields[k] = v
		}
		if outcome := c.GetString("saveOutcome"); outcome != "" {
			fields["save_outcome"] = outcome
		}

		switch {
		case status >= http.StatusInternalServerError:
			telemetry.Error("request.complete", fields)
		case status >= http.StatusBadRequest:
			telemetry.Warn("request.complete", fields)
		default:
			telemetry.Info("request.complete", fields)
		}
	}
}

// routeScope names the :id parameter after the resource it belongs to.
func routeScope(c *gin.Context) map[string]string {
	scope := map[string]string{}
	route := strings.TrimPrefix(c.FullPath(), "/api/v1")
	id := c.Param("id")
	switch {
	case id == "":
	case strings.HasPrefix(route, "/evaluations/"):
		scope["evaluation_id"] = id
	case strings.HasPrefix(route, "/vendors/"):
		scope["vendor_id"] = id
	case strings.HasPrefix(route, "/recommendations/"):
		scope["recommendation_id"] = id
	}
	if vendorID := c.Param("vendorId"); vendorID != "" {
		scope["vendor_id"] = vendorID
	}
	return scope
}
