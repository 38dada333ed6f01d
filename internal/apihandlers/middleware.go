package apihandlers

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// ownerKey is the context key carrying the authenticated owner reference.
const ownerKey = "ownerID"

// RequireOwner extracts the owner reference established by the identity
// collaborator upstream (gateway-terminated auth). The value is trusted
// as given; requests without it are rejected.
func RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := strings.TrimSpace(c.GetHeader("X-Owner-ID"))
		if owner == "" {
			Unauthorized(c, "Missing X-Owner-ID header")
			c.Abort()
			return
		}
		c.Set(ownerKey, owner)
		c.Next()
	}
}

// OwnerFromContext returns the owner reference set by RequireOwner.
func OwnerFromContext(c *gin.Context) string {
	return c.GetString(ownerKey)
}

// RequireAdmin guards taxonomy administration with a shared bearer token.
func RequireAdmin(adminToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminToken == "" {
			Forbidden(c, "Administrative endpoints are disabled (no admin token configured)")
			c.Abort()
			return
		}
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == header || strings.TrimSpace(token) != adminToken {
			Forbidden(c, "Admin privileges required")
			c.Abort()
			return
		}
		c.Next()
	}
}
