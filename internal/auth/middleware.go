package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const userKey = "auth_user"

// RequireUser rejects requests without a valid bearer token and stores the
// account on the gin context.
func RequireUser(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		u, err := s.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set(userKey, u)
		c.Next()
	}
}

// CurrentUser returns the account set by RequireUser.
func CurrentUser(c *gin.Context) (*User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*User)
	return u, ok
}

// Actor names the signed-in account for audit records.
func Actor(c *gin.Context) string {
	if u, ok := CurrentUser(c); ok {
		return u.Email
	}
	return ""
}
