package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vendoreval-backend/internal/shared/server/respond"
)

const (
	userIDKey   = "userId"
	userRoleKey = "userRole"
	vendorIDKey = "vendorId"
	isAdminKey  = "isAdmin"

	// RoleAdmin is the role value that grants administrative access.
	RoleAdmin = "admin"
	// RoleVendor is the default role for authenticated callers.
	RoleVendor = "vendor"
)

var publicPaths = map[string]struct{}{
	"/api/v1/health":  {},
	"/api/v1/metrics": {},
}

// Auth reads the caller identity supplied by the fronting gateway and stores
// it in context. Role checks downstream only see the derived isAdmin boolean.
func Auth(env string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}
		if _, ok := publicPaths[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		userID := strings.TrimSpace(c.GetHeader("X-User-Id"))
		if userID == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
			return
		}
		role := strings.ToLower(strings.TrimSpace(c.GetHeader("X-User-Role")))
		if role == "" {
			role = RoleVendor
		}

		c.Set(userIDKey, userID)
		c.Set(userRoleKey, role)
		c.Set(isAdminKey, role == RoleAdmin)
		if vendorID := strings.TrimSpace(c.GetHeader("X-Vendor-Id")); vendorID != "" {
			c.Set(vendorIDKey, vendorID)
		}
		c.Next()
	}
}

// RequireAdmin rejects callers without the admin role.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			respond.Error(c, http.StatusForbidden, "forbidden", "admin role required", nil)
			return
		}
		c.Next()
	}
}

// CanActForVendor reports whether the caller may read or write data of vendorID.
// Admins may act for any vendor; vendor callers only for their own.
func CanActForVendor(c *gin.Context, vendorID string) bool {
	if IsAdmin(c) {
		return true
	}
	own := VendorIDFromContext(c)
	return own != "" && own == vendorID
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	return stringFromContext(c, userIDKey)
}

// UserRoleFromContext fetches the caller role set by the auth middleware.
func UserRoleFromContext(c *gin.Context) string {
	return stringFromContext(c, userRoleKey)
}

// VendorIDFromContext fetches the caller's vendor id, if any.
func VendorIDFromContext(c *gin.Context) string {
	return stringFromContext(c, vendorIDKey)
}

// IsAdmin reports whether the caller carries the admin role.
func IsAdmin(c *gin.Context) bool {
	if c == nil {
		return false
	}
	val, _ := c.Get(isAdminKey)
	admin, _ := val.(bool)
	return admin
}

func stringFromContext(c *gin.Context, key string) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(key)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}
