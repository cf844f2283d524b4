package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/craftwl/whitelist-server/config"
)

// RequireAPIToken guards the server-to-server routes with the static
// API-Token header from settings.
func RequireAPIToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		expected := config.Settings.Get(config.KeyAPIToken)
		got := c.GetHeader("API-Token")
		if expected == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(got)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": 1, "desc": "missing API token"})
			return
		}
		c.Next()
	}
}
