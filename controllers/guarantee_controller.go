package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/craftwl/whitelist-server/config"
	"github.com/craftwl/whitelist-server/models"
	"github.com/craftwl/whitelist-server/utils"
)

func guaranteeWindow() time.Duration {
	hours := config.Settings.GetInt(config.KeyGuaranteeExpHours)
	if hours <= 0 {
		hours = 1
	}
	return time.Duration(hours) * time.Hour
}

type guaranteeRequestReq struct {
	PlayerName    string `json:"playerName" binding:"required"`
	PlayerUUID    string `json:"playerUUID" binding:"required"`
	GuarantorUUID string `json:"guarantorUUID" binding:"required"`
}

// RequestGuarantee files a peer-vouch request. The guarantor is resolved by
// their own whitelist entry and must be an active user; the applicant player
// must be unlisted, with no live pending request, and must match the Mojang
// profile for the claimed name.
func RequestGuarantee(c *gin.Context) {
	applicant := currentUser(c)

	var req guaranteeRequestReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "missing fields", "state": "invalidForm"})
		return
	}

	var wlCount int64
	config.DB.Model(&models.Whitelist{}).Where("player_uuid = ?", req.PlayerUUID).Count(&wlCount)
	if wlCount > 0 {
		c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "already whitelisted", "state": "alreadyExists"})
		return
	}

	var pending models.Guarantee
	err := config.DB.
		Where("player_uuid = ? AND status = ? AND create_time >= ?",
			req.PlayerUUID, models.GuaranteePending, time.Now().Add(-guaranteeWindow())).
		First(&pending).Error
	if err == nil {
		c.JSON(http.StatusOK, gin.H{
			"code": 0, "desc": "a pending request already exists",
			"state": "requestExists", "guaranteeId": pending.ID,
		})
		return
	}

	profile, err := utils.GetPlayerProfile(req.PlayerName)
	if err != nil || profile == nil {
		c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "player not found", "state": "inconsistentInfo"})
		return
	}
	if !strings.EqualFold(profile.Name, req.PlayerName) ||
		profile.UUID != strings.ReplaceAll(req.PlayerUUID, "-", "") {
		c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "player not found", "state": "inconsistentInfo"})
		return
	}

	var guarantorWL models.Whitelist
	if err := config.DB.Where("player_uuid = ?", req.GuarantorUUID).First(&guarantorWL).Error; err != nil ||
		guarantorWL.UserID == nil {
		c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "guarantor not found", "state": "unknownGuarantor"})
		return
	}
	var guarantor models.User
	if err := config.DB.First(&guarantor, *guarantorWL.UserID).Error; err != nil ||
		guarantor.Status != models.UserActive {
		c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "guarantor is not in good standing", "state": "unknownGuarantor"})
		return
	}

	now := time.Now()
	record := models.Guarantee{
		GuarantorID:    guarantor.ID,
		ApplicantID:    applicant.ID,
		PlayerName:     req.PlayerName,
		PlayerUUID:     req.PlayerUUID,
		Status:         models.GuaranteePending,
		CreateTime:     now,
		ExpirationTime: now.Add(guaranteeWindow()),
	}
	if err := config.DB.Create(&record).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "could not store request", "state": "error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "guarantee request submitted", "state": "success"})
}

type guaranteeActionReq struct {
	ID     uint   `json:"id" binding:"required"`
	Action string `json:"action" binding:"required,oneof=accept reject"`
}

// GuaranteeAction lets the guarantor settle a pending request. Both outcomes
// are one-way; expired requests can no longer be acted on.
func GuaranteeAction(c *gin.Context) {
	user := currentUser(c)

	var req guaranteeActionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "missing fields"})
		return
	}

	var record models.Guarantee
	if err := config.DB.First(&record, req.ID).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "guarantee not found"})
		return
	}
	if record.GuarantorID != user.ID && !user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"code": 1, "desc": "not your guarantee"})
		return
	}
	if record.Status != models.GuaranteePending {
		c.JSON(http.StatusOK, gin.H{"code": 2, "desc": "already settled"})
		return
	}
	if time.Now().After(record.ExpirationTime) {
		c.JSON(http.StatusOK, gin.H{"code": 3, "desc": "guarantee expired"})
		return
	}

	if req.Action == "reject" {
		if err := config.DB.Model(&record).Update("status", models.GuaranteeRejected).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "update failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "rejected"})
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var wlCount int64
		if err := tx.Model(&models.Whitelist{}).
			Where("player_uuid = ?", record.PlayerUUID).
			Count(&wlCount).Error; err != nil {
			return err
		}
		if wlCount > 0 {
			return gorm.ErrDuplicatedKey
		}

		applicantID := record.ApplicantID
		auditor := record.GuarantorID
		if err := tx.Create(&models.Whitelist{
			UserID:     &applicantID,
			PlayerName: record.PlayerName,
			PlayerUUID: record.PlayerUUID,
			Source:     models.WhitelistSourceGuarantee,
			AuditorUID: &auditor,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&record).Update("status", models.GuaranteeAccepted).Error
	})
	if err == gorm.ErrDuplicatedKey {
		c.JSON(http.StatusOK, gin.H{"code": 2, "desc": "player already whitelisted"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "accept failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "accepted"})
}

func guaranteePayload(g *models.Guarantee, u *models.User) gin.H {
	return gin.H{
		"id":         g.ID,
		"username":   u.Username,
		"userQQ":     u.UserQQ,
		"avatar":     u.Avatar,
		"playerName": g.PlayerName,
		"playerUUID": g.PlayerUUID,
		"createTime": g.CreateTime,
		"status":     g.Status,
	}
}

// QueryGuarantees returns the caller's requests from both sides of the table.
func QueryGuarantees(c *gin.Context) {
	user := currentUser(c)

	var asGuarantor, asApplicant []models.Guarantee
	config.DB.Preload("Applicant").Where("guarantor_id = ?", user.ID).Find(&asGuarantor)
	config.DB.Preload("Guarantor").Where("applicant_id = ?", user.ID).Find(&asApplicant)

	guarantorList := make([]gin.H, 0, len(asGuarantor))
	for i := range asGuarantor {
		guarantorList = append(guarantorList, guaranteePayload(&asGuarantor[i], &asGuarantor[i].Applicant))
	}
	applicantList := make([]gin.H, 0, len(asApplicant))
	for i := range asApplicant {
		applicantList = append(applicantList, guaranteePayload(&asApplicant[i], &asApplicant[i].Guarantor))
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 0, "desc": "ok",
		"data": gin.H{"guarantee": guarantorList, "applicant": applicantList},
	})
}

// QueryAllGuarantees is the admin's paginated view over every request.
func QueryAllGuarantees(c *gin.Context) {
	page, size := utils.PageParams(c)

	var total int64
	config.DB.Model(&models.Guarantee{}).Count(&total)

	var records []models.Guarantee
	if err := config.DB.Preload("Guarantor").Preload("Applicant").
		Order("id DESC").Scopes(utils.Paginate(page, size)).
		Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "query failed"})
		return
	}

	list := make([]gin.H, 0, len(records))
	for _, g := range records {
		list = append(list, gin.H{
			"id":                 g.ID,
			"guarantor_username": g.Guarantor.Username,
			"applicant_username": g.Applicant.Username,
			"player_name":        g.PlayerName,
			"status":             g.Status,
			"create_time":        g.CreateTime,
			"expiration_time":    g.ExpirationTime,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 0, "desc": "ok", "list": list,
		"page": page, "size": size, "total": total,
	})
}
