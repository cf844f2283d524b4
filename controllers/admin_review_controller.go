package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/craftwl/whitelist-server/config"
	"github.com/craftwl/whitelist-server/models"
	"github.com/craftwl/whitelist-server/utils"
)

func sumResponseScores(db *gorm.DB, responseID uint) (float64, error) {
	var total float64
	err := db.Model(&models.ResponseScore{}).
		Where("response_id = ?", responseID).
		Select("COALESCE(SUM(score), 0)").
		Scan(&total).Error
	return total, err
}

// GetResponses lists attempts for review, newest first.
func GetResponses(c *gin.Context) {
	if _, err := SweepExpiredResponses(config.DB, time.Now()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "sweep failed"})
		return
	}

	page, size := utils.PageParams(c)

	var total int64
	config.DB.Model(&models.Response{}).Count(&total)

	var responses []models.Response
	if err := config.DB.Preload("User").Preload("Survey").
		Order("id DESC").Scopes(utils.Paginate(page, size)).
		Find(&responses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "query failed"})
		return
	}

	list := make([]gin.H, 0, len(responses))
	for _, resp := range responses {
		// reviewed rows carry the frozen total; everything else is summed live
		var score float64
		if resp.ArchiveScore != nil {
			score = *resp.ArchiveScore
		} else {
			score, _ = sumResponseScores(config.DB, resp.ID)
		}

		list = append(list, gin.H{
			"id":           resp.ID,
			"isCompleted":  resp.IsCompleted,
			"isReviewed":   resp.IsReviewed,
			"username":     resp.User.Username,
			"playername":   resp.PlayerName,
			"survey":       resp.SurveyName,
			"surveyId":     resp.SurveyID,
			"score":        score,
			"responseTime": resp.ResponseTime,
			"createTime":   resp.CreateTime,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 0, "desc": "ok", "list": list,
		"page": page, "size": size, "total": total,
	})
}

// GetResponseDetail renders one attempt question by question for grading:
// awarded score, selected options, free-text answers. Soft-deleted questions
// appear only if the taker answered them before deletion.
func GetResponseDetail(c *gin.Context) {
	var resp models.Response
	if err := config.DB.First(&resp, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": 1, "desc": "response not found"})
		return
	}

	var survey models.Survey
	if err := config.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("display_order")
	}).Preload("Questions.Options").Preload("Questions.Images").
		First(&survey, resp.SurveyID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": 1, "desc": "survey not found"})
		return
	}

	questions := make([]gin.H, 0, len(survey.Questions))
	for _, q := range survey.Questions {
		var details []models.ResponseDetail
		config.DB.Where("question_id = ? AND response_id = ?", q.ID, resp.ID).Find(&details)

		if q.LogicalDeletion && len(details) == 0 {
			continue
		}

		var score float64
		var responseScore models.ResponseScore
		if err := config.DB.Where("question_id = ? AND response_id = ?", q.ID, resp.ID).
			First(&responseScore).Error; err == nil {
			score = responseScore.Score
		}

		selected := make(map[uint]bool)
		textAnswer := ""
		if q.QuestionType == models.SingleChoice || q.QuestionType == models.MultipleChoice {
			for _, d := range details {
				if id, err := strconv.ParseUint(d.Answer, 10, 64); err == nil {
					selected[uint(id)] = true
				}
			}
		} else if len(details) > 0 {
			textAnswer = details[0].Answer
		}

		imgs := make([]gin.H, 0, len(q.Images))
		for _, img := range q.Images {
			imgs = append(imgs, gin.H{"alt": img.ImgAlt, "data": img.ImgData})
		}

		opts := make([]gin.H, 0, len(q.Options))
		for _, opt := range q.Options {
			opts = append(opts, gin.H{
				"id":         opt.ID,
				"text":       opt.OptionText,
				"isCorrect":  opt.IsCorrect,
				"isSelected": selected[opt.ID],
				"inputText":  textAnswer,
			})
		}

		questions = append(questions, gin.H{
			"id":           q.ID,
			"title":        q.QuestionText,
			"type":         q.QuestionType,
			"totalScore":   q.Score,
			"userGetScore": score,
			"options":      opts,
			"img_list":     imgs,
			"text_answer":  textAnswer,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          resp.ID,
		"name":        survey.Name,
		"description": survey.Description,
		"create_time": survey.CreateTime,
		"status":      survey.Status,
		"questions":   questions,
	})
}

type reviewReq struct {
	Response uint `json:"response" binding:"required"`
	Status   int  `json:"status" binding:"required"`
}

// ReviewResponse settles an attempt, one way only. The summed score is frozen
// as the archive score whichever way the decision goes; approval additionally
// grants a whitelist entry unless the player UUID already holds one.
func ReviewResponse(c *gin.Context) {
	admin := currentUser(c)

	var req reviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 4, "desc": "missing fields"})
		return
	}
	if req.Status != models.ReviewApproved && req.Status != models.ReviewRejected {
		c.JSON(http.StatusOK, gin.H{"code": 4, "desc": "unknown status"})
		return
	}

	var resp models.Response
	if err := config.DB.First(&resp, req.Response).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "response not found"})
		return
	}
	if resp.IsReviewed != models.ReviewPending {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "already reviewed"})
		return
	}

	whitelisted := false
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		total, err := sumResponseScores(tx, resp.ID)
		if err != nil {
			return err
		}

		if err := tx.Model(&resp).Updates(map[string]interface{}{
			"is_reviewed":   req.Status,
			"is_completed":  true,
			"reviewer_uid":  admin.ID,
			"archive_score": total,
		}).Error; err != nil {
			return err
		}

		if req.Status != models.ReviewApproved {
			return nil
		}

		var wlCount int64
		if err := tx.Model(&models.Whitelist{}).
			Where("player_uuid = ?", resp.PlayerUUID).
			Count(&wlCount).Error; err != nil {
			return err
		}
		if wlCount > 0 {
			// review still succeeds, the grant is just skipped
			return nil
		}

		uid := resp.UserID
		auditor := admin.ID
		whitelisted = true
		return tx.Create(&models.Whitelist{
			UserID:     &uid,
			PlayerName: resp.PlayerName,
			PlayerUUID: resp.PlayerUUID,
			Source:     models.WhitelistSourceExam,
			AuditorUID: &auditor,
		}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "review failed"})
		return
	}

	if req.Status == models.ReviewApproved && !whitelisted {
		c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "player already whitelisted"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "reviewed"})
}

type setScoreReq struct {
	Score      float64 `json:"score" binding:"required"`
	QuestionID uint    `json:"questionId" binding:"required"`
	ResponseID uint    `json:"responseId" binding:"required"`
}

// SetResponseScore upserts a manual grade for one question of one attempt,
// used for subjective answers before review freezes the total.
func SetResponseScore(c *gin.Context) {
	var req setScoreReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 2, "desc": "invalid fields"})
		return
	}

	var record models.ResponseScore
	err := config.DB.Where("question_id = ? AND response_id = ?", req.QuestionID, req.ResponseID).
		First(&record).Error
	switch {
	case err == nil:
		record.Score = req.Score
		err = config.DB.Save(&record).Error
	case err == gorm.ErrRecordNotFound:
		err = config.DB.Create(&models.ResponseScore{
			QuestionID: req.QuestionID,
			ResponseID: req.ResponseID,
			Score:      req.Score,
		}).Error
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "could not store score"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "score stored"})
}
