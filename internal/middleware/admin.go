package middleware

import (
	"net/http" // HTTP status codes

	"campus_voting/internal/session" // Request-scoped session

	"github.com/gin-gonic/gin" // Gin web framework
)

// RequireAdmin only lets sessions that passed the admin login through
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.Current(c)
		// Check if the session belongs to the administrator
		if !sess.IsAdmin {
			// If not, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next() // If admin, proceed to the next handler
	}
}
