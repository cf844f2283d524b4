package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/craftwl/whitelist-server/config"
	"github.com/craftwl/whitelist-server/models"
	"github.com/craftwl/whitelist-server/utils"
)

// AdminWhitelist is the paginated whitelist view.
func AdminWhitelist(c *gin.Context) {
	page, size := utils.PageParams(c)

	var total int64
	config.DB.Model(&models.Whitelist{}).Count(&total)

	var entries []models.Whitelist
	if err := config.DB.Preload("User").
		Scopes(utils.Paginate(page, size)).Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "query failed"})
		return
	}

	list := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		username := ""
		if e.User != nil {
			username = e.User.Username
		}
		list = append(list, gin.H{
			"id":       e.ID,
			"username": username,
			"name":     e.PlayerName,
			"uuid":     e.PlayerUUID,
			"source":   e.Source,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 0, "desc": "ok", "list": list,
		"page": page, "size": size, "total": total,
	})
}

// LookupWhitelist is the server-to-server check: the game server asks whether
// a player (name or UUID) may join. Guarded by the API token.
func LookupWhitelist(c *gin.Context) {
	player := c.Param("player")

	var entry models.Whitelist
	err := config.DB.Where("player_uuid = ? OR player_name = ?", player, player).First(&entry).Error
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":       0,
		"desc":       "whitelisted",
		"uuid":       entry.PlayerUUID,
		"playerName": entry.PlayerName,
	})
}
