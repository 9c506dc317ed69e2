package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/mindease/internal/auth"
	"github.com/suPer8Hu/mindease/internal/common"
	"github.com/suPer8Hu/mindease/internal/models"
)

const (
	UserIDKey = "user_id"
	RoleKey   = "role"
)

func bearer(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := bearer(c)
		if tok == "" {
			common.Fail(c, http.StatusUnauthorized, 40101, "missing token")
			return
		}
		uid, role, err := auth.ParseJWT(tok, secret)
		if err != nil {
			common.Fail(c, http.StatusUnauthorized, 40102, "invalid token")
			return
		}
		c.Set(UserIDKey, uid)
		c.Set(RoleKey, role)
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and lets
// anonymous requests through otherwise.
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tok := bearer(c); tok != "" {
			if uid, role, err := auth.ParseJWT(tok, secret); err == nil {
				c.Set(UserIDKey, uid)
				c.Set(RoleKey, role)
			}
		}
		c.Next()
	}
}

// RequireRole must run after AuthRequired.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(RoleKey)
		for _, r := range roles {
			if role == string(r) {
				c.Next()
				return
			}
		}
		common.Fail(c, http.StatusForbidden, 40301, "access denied")
	}
}

// UserID returns the authenticated user id, if any.
func UserID(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}
