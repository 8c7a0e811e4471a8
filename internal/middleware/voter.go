package middleware

import (
	"net/http" // HTTP status codes

	"campus_voting/internal/session" // Request-scoped session

	"github.com/gin-gonic/gin" // Gin web framework
)

// RequireVoter rejects requests whose session has no logged in voter and exposes
// the voter's id to handlers as "userID".
func RequireVoter() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.Current(c)
		if !sess.LoggedIn() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "You need to log in to vote."})
			return
		}
		c.Set("userID", sess.UserID) // Store userID in context
		c.Next()
	}
}
