package middleware

import (
	"net/http" // HTTP status codes
	"slices"   // Role lookup

	"report_portal/internal/views" // Forbidden page

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// RequireRole lets the request through only when the session user holds one
// of roles; anyone else gets the 403 page.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user != nil && slices.Contains(roles, user.Role) {
			c.Next()
			return
		}
		fields := logrus.Fields{"path": c.Request.URL.Path} // Requested path
		if user != nil {
			fields["user_id"] = user.ID // Caller
			fields["role"] = user.Role  // Caller role
		}
		logrus.WithFields(fields).Warn("Role requirement not met")
		c.HTML(http.StatusForbidden, views.Unauthorized, gin.H{"Title": "Access denied", "User": user})
		c.Abort()
	}
}
