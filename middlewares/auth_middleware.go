package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"backend/repository"
	"backend/utils"
)

// ContextUserID is the gin context key carrying the authenticated user id.
const ContextUserID = "userID"

// AuthMiddleware validates the bearer token and loads the caller's user id
// into the request context. The token's subject must name an existing user;
// a token for a deleted account is treated as invalid.
func AuthMiddleware(jwtSecret []byte, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing Authorization token"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		userID, err := utils.ParseJWT(tokenString, jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		if _, err := users.FindByID(c.Request.Context(), userID); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid user"})
			return
		}

		c.Set(ContextUserID, userID)
		c.Next()
	}
}
