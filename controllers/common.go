package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/craftwl/whitelist-server/middleware"
	"github.com/craftwl/whitelist-server/models"
)

// currentUser returns the user injected by middleware.AuthJWT.
func currentUser(c *gin.Context) models.User {
	return c.MustGet(middleware.CtxUser).(models.User)
}
