package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// BearerToken extracts the Authorization bearer token into the request
// context without aborting. The booking flow is usable anonymously up to
// the confirm action, which enforces authentication itself and preserves
// the draft for an unauthenticated caller.
func BearerToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			c.Set("authToken", strings.TrimPrefix(header, "Bearer "))
		}
		c.Next()
	}
}
