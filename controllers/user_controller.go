package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func GetUserInfo(c *gin.Context) {
	user := currentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"user_qq":  user.UserQQ,
			"role":     user.Role,
			"addtime":  user.AddTime,
			"avatar":   user.Avatar,
			"status":   user.Status,
		},
	})
}
