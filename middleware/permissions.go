package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Role constants to avoid string typos
const (
	RoleAdmin  = "admin"
	RoleStaff  = "staff"
	RoleViewer = "viewer"
)

// AccessContext stores the caller's identity and permission level for the
// duration of a request. The close-event coordinator also consults it for
// the admin-override check.
type AccessContext struct {
	UserID         uint
	RoleName       string
	PermissionType string // "full" or "readonly"
}

// CanWrite returns true if the user has write permissions
func (ac *AccessContext) CanWrite() bool {
	return ac.PermissionType == "full"
}

// CanRead returns true if the user has read permissions
func (ac *AccessContext) CanRead() bool {
	return ac.PermissionType == "full" || ac.PermissionType == "readonly"
}

// IsAdmin returns true for the admin role only. Admin-override on event
// close is gated on this inside the engine, not just at the route layer.
func (ac *AccessContext) IsAdmin() bool {
	return ac.RoleName == RoleAdmin
}

// GetAccessContext extracts the access context set by AuthMiddleware.
// Writes a 401 response and returns false when missing.
func GetAccessContext(c *gin.Context) (AccessContext, bool) {
	raw, exists := c.Get("access_context")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access context missing"})
		return AccessContext{}, false
	}

	ac, ok := raw.(AccessContext)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid access context"})
		return AccessContext{}, false
	}

	return ac, true
}

// GetIPFromContext returns the client IP for audit fields
func GetIPFromContext(c *gin.Context) string {
	return c.ClientIP()
}
