package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/craftwl/whitelist-server/config"
	"github.com/craftwl/whitelist-server/middleware"
	"github.com/craftwl/whitelist-server/models"
	"github.com/craftwl/whitelist-server/utils"
)

const sessionTTL = 7 * 24 * time.Hour

// createToken issues a JWT and records it so it can be revoked later.
func createToken(user *models.User) (string, error) {
	token, err := utils.GenerateToken(user.ID, sessionTTL)
	if err != nil {
		return "", err
	}
	record := models.Token{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(sessionTTL),
	}
	if err := config.DB.Create(&record).Error; err != nil {
		return "", err
	}
	return token, nil
}

type loginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "missing credentials"})
		return
	}

	var user models.User
	if err := config.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "user not found"})
		return
	}
	if !utils.CheckPassword(user.Password, req.Password) {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "user not found"})
		return
	}
	if user.Status == models.UserDeleted || user.Status == models.UserPermaBanned {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "account disabled"})
		return
	}

	token, err := createToken(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "could not create session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":     0,
		"token":    token,
		"username": user.Username,
		"avatar":   user.Avatar,
		"isAdmin":  user.IsAdmin(),
	})
}

type registerReq struct {
	Username   string `json:"username" binding:"required,min=1,max=100"`
	UserQQ     string `json:"userQQ" binding:"required"`
	Password   string `json:"password" binding:"required,min=6"`
	RePassword string `json:"repassword" binding:"required"`
}

func Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "invalid form"})
		return
	}
	if req.Password != req.RePassword {
		c.JSON(http.StatusOK, gin.H{"code": 2, "desc": "passwords do not match"})
		return
	}

	var userCount, wlCount int64
	config.DB.Model(&models.User{}).Where("username = ?", req.Username).Count(&userCount)
	config.DB.Model(&models.Whitelist{}).Where("player_name = ?", req.Username).Count(&wlCount)
	if userCount > 0 || wlCount > 0 {
		c.JSON(http.StatusOK, gin.H{"code": 3, "desc": "user already exists"})
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
		Password: hash,
		Role:     models.RoleUser,
		Status:   models.UserUnactivated,
		Avatar:   models.DefaultAvatar,
	}
	if err := config.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "could not create account"})
		return
	}

	token, err := createToken(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "could not create session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":     0,
		"desc":     "ok",
		"token":    token,
		"username": user.Username,
		"avatar":   user.Avatar,
		"isAdmin":  user.IsAdmin(),
	})
}

func Logout(c *gin.Context) {
	raw := c.MustGet(middleware.CtxToken).(string)
	config.DB.Where("token = ?", raw).Delete(&models.Token{})
	c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "logged out"})
}

// CheckLogin is a session probe; unlike the other routes it never 401s.
func CheckLogin(c *gin.Context) {
	raw := middleware.BearerToken(c)
	if raw != "" {
		var record models.Token
		err := config.DB.Preload("User").Where("token = ?", raw).First(&record).Error
		if err == nil && !record.IsRevoked && record.ExpiresAt.After(time.Now()) {
			c.JSON(http.StatusOK, gin.H{
				"code":     0,
				"username": record.User.Username,
				"avatar":   record.User.Avatar,
				"isAdmin":  record.User.IsAdmin(),
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "user is not logged in", "avatar": models.DefaultAvatar})
}

type findPasswordReq struct {
	Username string `json:"username" binding:"required"`
	UserQQ   string `json:"userQQ" binding:"required"`
}

// RequestPasswordReset mails a single-use reset token. The response does not
// reveal whether the account exists.
func RequestPasswordReset(c *gin.Context) {
	var req findPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "missing fields"})
		return
	}

	var user models.User
	err := config.DB.Where("username = ? AND user_qq = ?", req.Username, req.UserQQ).First(&user).Error
	if err == nil && user.Status != models.UserDeleted {
		reset := models.ResetPasswordToken{
			UserID:    user.ID,
			Token:     uuid.NewString(),
			ExpiresAt: time.Now().Add(time.Hour),
		}
		if err := config.DB.Create(&reset).Error; err == nil {
			utils.SendResetPasswordMail(user.UserQQ+"@qq.com", reset.Token)
		}
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "if the account exists, a mail was sent"})
}

type resetPasswordReq struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// ResetPassword consumes a reset token, sets the new password and revokes
// every live session of the user.
func ResetPassword(c *gin.Context) {
	var req resetPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "missing fields"})
		return
	}

	var reset models.ResetPasswordToken
	if err := config.DB.Where("token = ?", req.Token).First(&reset).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "invalid token"})
		return
	}
	if reset.Used || reset.ExpiresAt.Before(time.Now()) {
		c.JSON(http.StatusOK, gin.H{"code": 2, "desc": "token expired or already used"})
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "could not hash password"})
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", reset.UserID).
			Update("password", hash).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.ResetPasswordToken{}).Where("id = ?", reset.ID).
			Update("used", true).Error; err != nil {
			return err
		}
		return tx.Model(&models.Token{}).Where("user_id = ?", reset.UserID).
			Update("is_revoked", true).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "reset failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "password updated"})
}

// RequestActivation mails an activation token to the logged-in user.
func RequestActivation(c *gin.Context) {
	user := currentUser(c)
	if user.Status != models.UserUnactivated {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "account is not awaiting activation"})
		return
	}

	activation := models.ActivationToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	if err := config.DB.Create(&activation).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "could not create token"})
		return
	}
	utils.SendActivationMail(user.UserQQ+"@qq.com", activation.Token)

	c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "activation mail sent"})
}

type activationReq struct {
	Token string `json:"token" binding:"required"`
}

// Activate consumes an activation token: unactivated -> active.
func Activate(c *gin.Context) {
	var req activationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "missing fields"})
		return
	}

	var activation models.ActivationToken
	if err := config.DB.Where("token = ?", req.Token).First(&activation).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "invalid token"})
		return
	}
	if activation.Used || activation.ExpiresAt.Before(time.Now()) {
		c.JSON(http.StatusOK, gin.H{"code": 2, "desc": "token expired or already used"})
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ? AND status = ?", activation.UserID, models.UserUnactivated).
			Update("status", models.UserActive)
		if res.Error != nil {
			return res.Error
		}
		return tx.Model(&models.ActivationToken{}).Where("id = ?", activation.ID).
			Update("used", true).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "activation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "account activated"})
}
