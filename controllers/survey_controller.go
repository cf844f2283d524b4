package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/craftwl/whitelist-server/config"
	"github.com/craftwl/whitelist-server/models"
)

func GetSlots(c *gin.Context) {
	var slots []models.SurveySlot
	if err := config.DB.Find(&slots).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "query failed"})
		return
	}

	list := make([]gin.H, 0, len(slots))
	for _, slot := range slots {
		list = append(list, gin.H{
			"id":         slot.ID,
			"slotName":   slot.SlotName,
			"mountedSID": slot.MountedSurveyID,
		})
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "ok", "list": list})
}

// GetSurvey renders a survey for the taker. Soft-deleted questions are
// skipped, and reference-answer options are masked so the expected answer
// never leaves the server.
func GetSurvey(c *gin.Context) {
	user := currentUser(c)

	var survey models.Survey
	if err := config.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("display_order")
	}).Preload("Questions.Options").Preload("Questions.Images").
		First(&survey, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": 1, "desc": "survey not found"})
		return
	}

	var createTime, ddl *time.Time
	if inflight, err := incompleteResponse(config.DB, user.ID); err == nil && inflight != nil {
		t := inflight.CreateTime
		d := t.Add(ResponseValidityPeriod())
		createTime, ddl = &t, &d
	}

	questions := make([]gin.H, 0, len(survey.Questions))
	for _, q := range survey.Questions {
		if q.LogicalDeletion {
			continue
		}

		imgs := make([]gin.H, 0, len(q.Images))
		for _, img := range q.Images {
			imgs = append(imgs, gin.H{"alt": img.ImgAlt, "data": img.ImgData})
		}

		opts := make([]gin.H, 0, len(q.Options))
		for _, opt := range q.Options {
			if q.QuestionType.UsesReferenceAnswer() {
				opts = append(opts, gin.H{"id": opt.ID, "text": ""})
				continue
			}
			opts = append(opts, gin.H{"id": opt.ID, "text": opt.OptionText})
		}

		questions = append(questions, gin.H{
			"display_order": q.DisplayOrder,
			"id":            q.ID,
			"title":         q.QuestionText,
			"type":          q.QuestionType,
			"score":         q.Score,
			"img_list":      imgs,
			"options":       opts,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          survey.ID,
		"name":        survey.Name,
		"description": survey.Description,
		"create_time": createTime,
		"ddl":         ddl,
		"status":      survey.Status,
		"questions":   questions,
	})
}

// CheckSurvey reports whether the caller has an in-flight response.
func CheckSurvey(c *gin.Context) {
	user := currentUser(c)

	inflight, err := incompleteResponse(config.DB, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "query failed"})
		return
	}
	if inflight != nil {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "you have an unfinished survey", "response": inflight.SurveyID})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "no survey in progress"})
}

type startSurveyReq struct {
	SID        uint   `json:"sid" binding:"required"`
	SlotName   string `json:"slot_name" binding:"required"`
	PlayerName string `json:"playerName" binding:"required"`
	PlayerUUID string `json:"playerUUID" binding:"required"`
}

// StartSurvey opens a new attempt: one in-flight response per user, and the
// target player must not hold a whitelist entry already. The slot name is
// snapshotted so the attempt survives later remounts and renames.
func StartSurvey(c *gin.Context) {
	user := currentUser(c)

	inflight, err := incompleteResponse(config.DB, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "query failed"})
		return
	}
	if inflight != nil {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "you have an unfinished survey", "response": inflight.SurveyID})
		return
	}

	var req startSurveyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "missing fields"})
		return
	}

	var wlCount int64
	config.DB.Model(&models.Whitelist{}).Where("player_uuid = ?", req.PlayerUUID).Count(&wlCount)
	if wlCount > 0 {
		c.JSON(http.StatusOK, gin.H{"code": 2, "desc": "player is already whitelisted"})
		return
	}

	response := models.Response{
		UserID:     user.ID,
		SurveyID:   req.SID,
		SurveyName: req.SlotName,
		PlayerName: req.PlayerName,
		PlayerUUID: req.PlayerUUID,
	}
	if err := config.DB.Create(&response).Error; err != nil {
		// the partial unique index catches a racing second start
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "could not start survey"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"code": 0, "desc": "survey started", "response": response.SurveyID})
}

type submittedAnswer struct {
	ID     uint     `json:"id"`
	Answer []string `json:"answer"`
}

// CompleteSurvey grades and records the submitted answers against the
// caller's in-flight response. Questions deleted after the attempt started
// are skipped silently. Returns the objective total; it is archived later at
// review time, not here.
func CompleteSurvey(c *gin.Context) {
	user := currentUser(c)

	inflight, err := incompleteResponse(config.DB, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "query failed"})
		return
	}
	if inflight == nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "desc": "no survey in progress"})
		return
	}

	var answers []submittedAnswer
	if err := c.ShouldBindJSON(&answers); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "invalid payload"})
		return
	}

	var total float64
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		for _, item := range answers {
			// unanswered questions are allowed
			if len(item.Answer) == 0 {
				continue
			}

			var question models.Question
			if err := tx.Preload("Options").First(&question, item.ID).Error; err != nil {
				// question disappeared after the attempt started
				if err == gorm.ErrRecordNotFound {
					continue
				}
				return err
			}
			if question.LogicalDeletion {
				continue
			}

			score := objectiveQuestionScore(item.Answer, &question)
			total += score
			if err := tx.Create(&models.ResponseScore{
				QuestionID: question.ID,
				ResponseID: inflight.ID,
				Score:      score,
			}).Error; err != nil {
				return err
			}

			details := makeAnswerDetails(item.Answer, &question, inflight.ID)
			if err := tx.Create(&details).Error; err != nil {
				return err
			}
		}

		now := time.Now()
		return tx.Model(&models.Response{}).Where("id = ?", inflight.ID).
			Updates(map[string]interface{}{
				"is_completed":  true,
				"response_time": now,
			}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "submission failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "submitted", "score": total})
}
