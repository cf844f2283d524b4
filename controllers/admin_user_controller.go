package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/craftwl/whitelist-server/config"
	"github.com/craftwl/whitelist-server/models"
	"github.com/craftwl/whitelist-server/utils"
)

func userPayload(u *models.User) gin.H {
	return gin.H{
		"id":       u.ID,
		"username": u.Username,
		"userQQ":   u.UserQQ,
		"role":     u.Role,
		"status":   u.Status,
		"addtime":  u.AddTime,
		"avatar":   u.Avatar,
	}
}

// GetUsers lists accounts, hiding logically deleted ones.
func GetUsers(c *gin.Context) {
	page, size := utils.PageParams(c)

	query := config.DB.Model(&models.User{}).Where("status <> ?", models.UserDeleted)

	var total int64
	query.Count(&total)

	var users []models.User
	if err := query.Scopes(utils.Paginate(page, size)).Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "query failed"})
		return
	}

	list := make([]gin.H, 0, len(users))
	for i := range users {
		list = append(list, userPayload(&users[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 0, "desc": "ok", "list": list,
		"page": page, "size": size, "total": total,
	})
}

func GetUser(c *gin.Context) {
	id, _ := strconv.Atoi(c.Query("id"))

	var user models.User
	if err := config.DB.First(&user, id).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "desc": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "ok", "data": userPayload(&user)})
}

type addUserReq struct {
	Username string `json:"username" binding:"required"`
	UserQQ   string `json:"userQQ" binding:"required"`
	Role     string `json:"role" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

func AddUser(c *gin.Context) {
	var req addUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "desc": "missing required fields"})
		return
	}

	var count int64
	config.DB.Model(&models.User{}).Where("username = ?", req.Username).Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"code": 2, "desc": "username already exists"})
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "could not hash password"})
		return
	}

	user := models.User{
		Username: req.Username,
		UserQQ:   req.UserQQ,
		Role:     req.Role,
		Password: hash,
		Avatar:   models.DefaultAvatar,
	}
	if err := config.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "could not create user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "user created"})
}

type setUserReq struct {
	ID       uint    `json:"id" binding:"required"`
	Username *string `json:"username"`
	Password *string `json:"password"`
	UserQQ   *string `json:"userQQ"`
	Role     *string `json:"role"`
	Status   *int    `json:"status"`
}

func SetUser(c *gin.Context) {
	var req setUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "desc": "missing user id"})
		return
	}

	var user models.User
	if err := config.DB.First(&user, req.ID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": 2, "desc": "user not found"})
		return
	}

	if req.Username != nil && *req.Username != "" {
		user.Username = *req.Username
	}
	if req.Password != nil && len(*req.Password) >= 6 {
		hash, err := utils.HashPassword(*req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "could not hash password"})
			return
		}
		user.Password = hash
	}
	if req.UserQQ != nil && *req.UserQQ != "" {
		user.UserQQ = *req.UserQQ
	}
	if req.Role != nil && *req.Role != "" {
		user.Role = *req.Role
	}
	if req.Status != nil {
		user.Status = *req.Status
	}

	if err := config.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "user updated"})
}

type delUserReq struct {
	ID uint `json:"id" binding:"required"`
}

// DelUser is a logical delete: the row stays for history, the status flips.
func DelUser(c *gin.Context) {
	var req delUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "desc": "missing user id"})
		return
	}

	var user models.User
	if err := config.DB.First(&user, req.ID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": 2, "desc": "user not found"})
		return
	}

	if err := config.DB.Model(&user).Update("status", models.UserDeleted).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "user deleted"})
}
