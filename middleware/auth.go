package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/craftwl/whitelist-server/config"
	"github.com/craftwl/whitelist-server/models"
	"github.com/craftwl/whitelist-server/utils"
)

// Context keys set by AuthJWT.
const (
	CtxUser  = "user"
	CtxToken = "token"
)

// BearerToken extracts the raw token from the Authorization header.
func BearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return ""
	}
	return strings.TrimSpace(authHeader[7:])
}

// AuthJWT validates Authorization: Bearer <token>. The JWT signature is
// checked first, then the server-side token row: a revoked or expired row
// fails auth even while the JWT itself still verifies.
func AuthJWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		rawToken := BearerToken(c)
		if rawToken == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": 1, "desc": "missing or invalid Authorization header"})
			return
		}

		claims, err := utils.VerifyToken(rawToken)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": 1, "desc": "invalid token"})
			return
		}

		var record models.Token
		if err := config.DB.Where("token = ?", rawToken).First(&record).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": 1, "desc": "unknown token"})
			return
		}
		if record.IsRevoked || record.ExpiresAt.Before(time.Now()) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": 1, "desc": "token expired or revoked"})
			return
		}

		var user models.User
		if err := config.DB.First(&user, claims.UserID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": 1, "desc": "user not found"})
			return
		}
		if user.Status == models.UserDeleted || user.Status == models.UserPermaBanned {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"code": 1, "desc": "account disabled"})
			return
		}

		c.Set(CtxUser, user)
		c.Set(CtxToken, rawToken)
		c.Next()
	}
}

// RequireAdmin gates admin-only routes. Must run after AuthJWT.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(CtxUser)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": 1, "desc": "unauthorized"})
			return
		}
		u := v.(models.User)
		if !u.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"code": 1, "desc": "forbidden"})
			return
		}
		c.Next()
	}
}
