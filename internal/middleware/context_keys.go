package middleware

import (
	"github.com/SscSPs/budget_sync_app/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// userIDKey is the key used to store the authenticated user's ID.
const userIDKey = contextKey("userID")

// GetUserIDFromContext retrieves the authenticated user ID from the request.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	if userID, ok := c.Request.Context().Value(userIDKey).(string); ok && userID != "" {
		return userID, true
	}
	return "", false
}

// GetIdentityFromContext returns the identity of the authenticated caller.
func GetIdentityFromContext(c *gin.Context) (domain.Identity, bool) {
	userID, ok := GetUserIDFromContext(c)
	if !ok {
		return domain.Identity{}, false
	}
	return domain.UserIdentity(userID), true
}
