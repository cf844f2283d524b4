package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/craftwl/whitelist-server/config"
)

// GetConfig returns every runtime setting for the admin panel.
func GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "ok", "list": config.Settings.All()})
}

type setConfigReq struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value"`
	Type  string `json:"type" binding:"required,oneof=str int bool list"`
}

// SetConfig writes through to the settings table. Consumers read the mirror
// on every use, so the new value takes effect immediately.
func SetConfig(c *gin.Context) {
	var req setConfigReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "missing fields"})
		return
	}

	if err := config.Settings.Set(req.Key, req.Value, req.Type); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 2, "desc": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "setting updated"})
}
