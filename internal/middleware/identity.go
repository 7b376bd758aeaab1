package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ContextUserIDKey is where the verified caller id lives on the gin context.
const ContextUserIDKey = "user_id"

// Identity extracts the verified user identity forwarded by the upstream
// identity layer. Authentication itself happens there; by the time a request
// reaches this service the X-User-ID header is trusted.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-User-ID")
		userID, err := strconv.ParseInt(raw, 10, 64)
		if raw == "" || err != nil || userID <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Missing or invalid identity",
			})
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}

// UserID reads the verified caller id set by Identity.
func UserID(c *gin.Context) int64 {
	return c.GetInt64(ContextUserIDKey)
}
