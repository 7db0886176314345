package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/duca-customs-backend/internal/domain/user"
	"github.com/duca-customs-backend/internal/platform/tokens"
)

const (
	// IdentityKey is the key used to store the caller identity in the context
	IdentityKey = "identity"
)

// RequireAuth validates the Bearer token on every protected route and stores
// the extracted caller identity in the request context.
func RequireAuth(tm *tokens.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		identity, err := tm.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token invalid or expired"})
			return
		}

		c.Set(IdentityKey, identity)
		c.Next()
	}
}

// RequireRole rejects requests whose role is not in the allowed list.
// It must run after RequireAuth.
func RequireRole(roles ...user.Role) gin.HandlerFunc {
	allowed := make(map[user.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok || !allowed[identity.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}
		c.Next()
	}
}

// GetIdentity retrieves the typed caller identity from the gin context.
func GetIdentity(c *gin.Context) (user.Identity, bool) {
	v, exists := c.Get(IdentityKey)
	if !exists {
		return user.Identity{}, false
	}
	identity, ok := v.(user.Identity)
	return identity, ok
}
