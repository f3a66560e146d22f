package middleware

import (
	"net/http"
	"strings"

	"github.com/adityarizkyr/eventbook/internal/helpers"
	"github.com/adityarizkyr/eventbook/internal/token"
	"github.com/gin-gonic/gin"
)

// JWTAuthMiddleware extracts and verifies the bearer token, then attaches
// user_id, username and role to the request context. A missing or malformed
// header is 401; a token that fails verification is 403.
func JWTAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			helpers.RespondWithError(c, http.StatusUnauthorized, "Access denied. No token provided.")
			c.Abort()
			return
		}

		claims, err := token.Parse(secret, strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			helpers.RespondWithError(c, http.StatusForbidden, "Access denied. Invalid or expired token.")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// RequireRole gates a route group to one role. It assumes JWTAuthMiddleware
// already ran and populated the context.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actual, exists := c.Get("role")
		if !exists || actual != role {
			helpers.RespondWithError(c, http.StatusForbidden, "Access denied. Insufficient privileges.")
			c.Abort()
			return
		}
		c.Next()
	}
}
