package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"vendoreval-backend/internal/shared/server/respond"
	"vendoreval-backend/internal/shared/telemetry"
)

// Recovery turns a handler panic into a 500 envelope and reports it with the
// caller identity attached.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			tags := map[string]string{
				"request_id": RequestIDFromContext(c),
				"route":      c.FullPath(),
				"method":     c.Request.Method,
			}
			if role := UserRoleFromContext(c); role != "" {
				tags["role"] = role
			}
			if vendorID := VendorIDFromContext(c); vendorID != "" {
				tags["vendor_id"] = vendorID
			}
			telemetry.Error("http.panic", map[string]any{
				"request_id": tags["request_id"],
				"route":      tags["route"],
				"method":     tags["method"],
				"user_id":    UserIDFromContext(c),
				"error":      rec,
				"stack":      string(debug.Stack()),
			})
			telemetry.CapturePanic(rec, tags)
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Unexpected server error", nil)
		}()
		c.Next()
	}
}
