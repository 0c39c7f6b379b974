package middleware

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"studenthub/internal/domain" // Importing domain models
	"studenthub/internal/utils"  // JWT utility functions

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// JWTAuthMiddleware validates session tokens, rejects 2FA-pending
// tokens and blocked accounts, and stores the user ID in the context
func JWTAuthMiddleware(db *gorm.DB, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if the Authorization header is present and properly formatted
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ") // Extract the token string and parse it
		claims, err := utils.ParseJWT(tokenStr, secret)       // Parse the JWT token
		if err != nil {
			// If parsing fails, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		// A 2FA-pending token is not a session yet
		if claims.Stage != utils.StageSession {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Two-factor verification required"})
			return
		}
		var user domain.User // Re-check account state so existing tokens die when a user is blocked
		if err := db.First(&user, claims.UserID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		if user.Blocked {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Account is blocked"})
			return
		}
		c.Set("userID", claims.UserID) // Store userID in context
		c.Next()                       // Proceed to the next handler
	}
}
