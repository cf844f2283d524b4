package controllers

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/craftwl/whitelist-server/config"
	"github.com/craftwl/whitelist-server/models"
)

type addSurveyReq struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
}

func AddSurvey(c *gin.Context) {
	var req addSurveyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "missing fields"})
		return
	}

	survey := models.Survey{Name: req.Name, Description: req.Description}
	if err := config.DB.Create(&survey).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "could not create survey"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "survey created", "id": survey.ID})
}

type modSurveyReq struct {
	SID         uint   `json:"sid" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
}

func ModSurvey(c *gin.Context) {
	var req modSurveyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "missing fields"})
		return
	}

	var survey models.Survey
	if err := config.DB.First(&survey, req.SID).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "survey not found"})
		return
	}

	survey.Name = req.Name
	survey.Description = req.Description
	if err := config.DB.Save(&survey).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "ok"})
}

type delSurveyReq struct {
	SID uint `json:"sid" binding:"required"`
}

// DelSurvey hard-deletes a survey. Refused while any slot still mounts it.
func DelSurvey(c *gin.Context) {
	var req delSurveyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "missing fields"})
		return
	}

	var survey models.Survey
	if err := config.DB.First(&survey, req.SID).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "survey does not exist"})
		return
	}

	var mounted int64
	config.DB.Model(&models.SurveySlot{}).Where("mounted_survey_id = ?", survey.ID).Count(&mounted)
	if mounted > 0 {
		c.JSON(http.StatusOK, gin.H{"code": 2, "desc": "survey is mounted to a slot"})
		return
	}

	if err := config.DB.Select("Questions").Delete(&survey).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "survey deleted"})
}

// GetSurveys lists all surveys with their open/unreviewed counters, sweeping
// stale responses first so the counts are honest.
func GetSurveys(c *gin.Context) {
	if _, err := SweepExpiredResponses(config.DB, time.Now()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "sweep failed"})
		return
	}

	var surveys []models.Survey
	if err := config.DB.Find(&surveys).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "query failed"})
		return
	}

	list := make([]gin.H, 0, len(surveys))
	for _, survey := range surveys {
		var notCompleted, notReviewed int64
		config.DB.Model(&models.Response{}).
			Where("survey_id = ? AND is_completed = ?", survey.ID, false).
			Count(&notCompleted)
		config.DB.Model(&models.Response{}).
			Where("survey_id = ? AND is_reviewed = ?", survey.ID, models.ReviewPending).
			Count(&notReviewed)

		list = append(list, gin.H{
			"id":                survey.ID,
			"name":              survey.Name,
			"description":       survey.Description,
			"createTime":        survey.CreateTime,
			"status":            survey.Status,
			"notCompletedCount": notCompleted,
			"notReviewedCount":  notReviewed,
		})
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "ok", "list": list})
}

// AdminGetSurvey renders a survey for the authoring view, correct flags
// included.
func AdminGetSurvey(c *gin.Context) {
	var survey models.Survey
	if err := config.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("display_order")
	}).Preload("Questions.Options").Preload("Questions.Images").
		First(&survey, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": 1, "desc": "survey not found"})
		return
	}

	questions := make([]gin.H, 0, len(survey.Questions))
	for _, q := range survey.Questions {
		if q.LogicalDeletion {
			continue
		}

		imgs := make([]gin.H, 0, len(q.Images))
		for _, img := range q.Images {
			imgs = append(imgs, gin.H{"id": img.ID, "alt": img.ImgAlt, "data": img.ImgData})
		}
		opts := make([]gin.H, 0, len(q.Options))
		for _, opt := range q.Options {
			opts = append(opts, gin.H{"id": opt.ID, "text": opt.OptionText, "isCorrect": opt.IsCorrect})
		}

		questions = append(questions, gin.H{
			"id":            q.ID,
			"display_order": q.DisplayOrder,
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
		"create_time": survey.CreateTime,
		"status":      survey.Status,
		"questions":   questions,
	})
}

type questionOptionReq struct {
	Text      string `json:"text" binding:"required"`
	IsCorrect *bool  `json:"isCorrect"`
}

type questionImageReq struct {
	Alt  string `json:"alt"`
	Data string `json:"data" binding:"required"`
}

type addQuestionReq struct {
	Survey       uint                `json:"survey" binding:"required"`
	Title        string              `json:"title" binding:"required"`
	Type         models.QuestionType `json:"type" binding:"required"`
	Score        float64             `json:"score"`
	DisplayOrder int                 `json:"displayOrder"`
	Options      []questionOptionReq `json:"options" binding:"required,min=1"`
	ImgList      []questionImageReq  `json:"img_list"`
}

// buildOptions converts the request options, forcing the first option correct
// for reference-answer question types (it carries the expected answer).
func buildOptions(questionID uint, questionType models.QuestionType, reqOptions []questionOptionReq) []models.Option {
	options := make([]models.Option, 0, len(reqOptions))
	for i, o := range reqOptions {
		isCorrect := o.IsCorrect
		if questionType.UsesReferenceAnswer() && i == 0 {
			t := true
			isCorrect = &t
		}
		options = append(options, models.Option{
			QuestionID: questionID,
			OptionText: o.Text,
			IsCorrect:  isCorrect,
		})
	}
	return options
}

func buildImages(questionID uint, reqImages []questionImageReq) []models.QuestionImage {
	images := make([]models.QuestionImage, 0, len(reqImages))
	for _, img := range reqImages {
		images = append(images, models.QuestionImage{
			QuestionID: questionID,
			ImgAlt:     img.Alt,
			ImgData:    img.Data,
		})
	}
	return images
}

// AddQuestion inserts a question at the requested display position. Zero (or
// unset) appends at max+1; otherwise every non-deleted question at or after
// the target position shifts up by one first.
func AddQuestion(c *gin.Context) {
	var req addQuestionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "missing fields"})
		return
	}
	if !req.Type.Valid() {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "unknown question type"})
		return
	}

	var survey models.Survey
	if err := config.DB.First(&survey, req.Survey).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "survey not found"})
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		target := req.DisplayOrder
		if target <= 0 {
			type nextRes struct{ Next int }
			var r nextRes
			if err := tx.Model(&models.Question{}).
				Where("survey_id = ? AND logical_deletion = ?", survey.ID, false).
				Select("COALESCE(MAX(display_order), 0) + 1 AS next").
				Scan(&r).Error; err != nil {
				return err
			}
			target = r.Next
		} else {
			if err := tx.Model(&models.Question{}).
				Where("survey_id = ? AND logical_deletion = ? AND display_order >= ?", survey.ID, false, target).
				Update("display_order", gorm.Expr("display_order + 1")).Error; err != nil {
				return err
			}
		}

		question := models.Question{
			SurveyID:     survey.ID,
			QuestionText: req.Title,
			QuestionType: req.Type,
			Score:        req.Score,
			DisplayOrder: target,
		}
		if err := tx.Create(&question).Error; err != nil {
			return err
		}

		options := buildOptions(question.ID, question.QuestionType, req.Options)
		if err := tx.Create(&options).Error; err != nil {
			return err
		}

		if images := buildImages(question.ID, req.ImgList); len(images) > 0 {
			if err := tx.Create(&images).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "could not add question"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "question added"})
}

type editQuestionReq struct {
	ID      uint                `json:"id" binding:"required"`
	Survey  uint                `json:"survey" binding:"required"`
	Title   string              `json:"title" binding:"required"`
	Type    models.QuestionType `json:"type" binding:"required"`
	Score   float64             `json:"score"`
	Options []questionOptionReq `json:"options" binding:"required,min=1"`
	ImgList []questionImageReq  `json:"img_list"`
}

// EditQuestion replaces the question's text, weight, options and images.
func EditQuestion(c *gin.Context) {
	var req editQuestionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "missing fields"})
		return
	}
	if !req.Type.Valid() {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "unknown question type"})
		return
	}

	var question models.Question
	if err := config.DB.First(&question, req.ID).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "question not found"})
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		question.SurveyID = req.Survey
		question.QuestionText = req.Title
		question.QuestionType = req.Type
		question.Score = req.Score
		if err := tx.Save(&question).Error; err != nil {
			return err
		}

		if err := tx.Where("question_id = ?", question.ID).Delete(&models.Option{}).Error; err != nil {
			return err
		}
		options := buildOptions(question.ID, question.QuestionType, req.Options)
		if err := tx.Create(&options).Error; err != nil {
			return err
		}

		if err := tx.Where("question_id = ?", question.ID).Delete(&models.QuestionImage{}).Error; err != nil {
			return err
		}
		if images := buildImages(question.ID, req.ImgList); len(images) > 0 {
			if err := tx.Create(&images).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "update failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "question updated"})
}

// DelQuestion soft-deletes: submitted answers keep referencing the row. The
// freed position is closed so display orders stay dense.
func DelQuestion(c *gin.Context) {
	var questionID uint
	if err := c.ShouldBindJSON(&questionID); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "missing fields"})
		return
	}

	var question models.Question
	if err := config.DB.First(&question, questionID).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "question does not exist"})
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		oldOrder := question.DisplayOrder
		if err := tx.Model(&question).Updates(map[string]interface{}{
			"logical_deletion": true,
			"display_order":    0,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Question{}).
			Where("survey_id = ? AND logical_deletion = ? AND display_order > ?", question.SurveyID, false, oldOrder).
			Update("display_order", gorm.Expr("display_order - 1")).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "delete failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "question deleted"})
}

type sortQuestionsReq struct {
	Survey uint           `json:"survey" binding:"required"`
	Order  map[string]int `json:"order" binding:"required"`
}

// SortSurveyQuestions bulk-reassigns display orders. All-or-nothing: the new
// position multiset must exactly equal the current one, or nothing moves.
func SortSurveyQuestions(c *gin.Context) {
	var req sortQuestionsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "missing fields"})
		return
	}

	var questions []models.Question
	if err := config.DB.
		Where("survey_id = ? AND logical_deletion = ?", req.Survey, false).
		Find(&questions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "query failed"})
		return
	}

	if len(req.Order) != len(questions) {
		c.JSON(http.StatusOK, gin.H{"code": 2, "desc": "order map does not cover the survey"})
		return
	}

	newOrders := make(map[uint]int, len(req.Order))
	oldPositions := make([]int, 0, len(questions))
	newPositions := make([]int, 0, len(req.Order))
	known := make(map[uint]bool, len(questions))

	for _, q := range questions {
		known[q.ID] = true
		oldPositions = append(oldPositions, q.DisplayOrder)
	}
	for key, pos := range req.Order {
		id, err := strconv.ParseUint(key, 10, 64)
		if err != nil || !known[uint(id)] {
			c.JSON(http.StatusOK, gin.H{"code": 2, "desc": "order map references an unknown question"})
			return
		}
		newOrders[uint(id)] = pos
		newPositions = append(newPositions, pos)
	}

	sort.Ints(oldPositions)
	sort.Ints(newPositions)
	for i := range oldPositions {
		if oldPositions[i] != newPositions[i] {
			c.JSON(http.StatusOK, gin.H{"code": 2, "desc": "new positions must be a permutation of the old ones"})
			return
		}
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		for id, pos := range newOrders {
			if err := tx.Model(&models.Question{}).
				Where("id = ? AND survey_id = ?", id, req.Survey).
				Update("display_order", pos).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "reorder failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "order updated"})
}

type addSlotReq struct {
	SlotName   string `json:"slotName" binding:"required"`
	MountedSID uint   `json:"mountedSID" binding:"required"`
}

// AddSlot publishes a survey under a named mount point.
func AddSlot(c *gin.Context) {
	var req addSlotReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "missing fields"})
		return
	}

	var survey models.Survey
	if err := config.DB.First(&survey, req.MountedSID).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "mounted survey does not exist"})
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&survey).Update("status", models.SurveyPublished).Error; err != nil {
			return err
		}
		return tx.Create(&models.SurveySlot{
			SlotName:        req.SlotName,
			MountedSurveyID: req.MountedSID,
		}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "could not create slot"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "slot created"})
}

type setSlotReq struct {
	ID         uint `json:"id" binding:"required"`
	MountedSID uint `json:"mountedSID" binding:"required"`
}

// SetSlot remounts a slot: the old survey is unpublished, the new published.
func SetSlot(c *gin.Context) {
	var req setSlotReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "missing fields"})
		return
	}

	var slot models.SurveySlot
	if err := config.DB.First(&slot, req.ID).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "slot not found"})
		return
	}

	var newSurvey models.Survey
	if err := config.DB.First(&newSurvey, req.MountedSID).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "survey not found"})
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		// losing track of the old survey is fine
		tx.Model(&models.Survey{}).Where("id = ?", slot.MountedSurveyID).
			Update("status", models.SurveyUnpublished)

		if err := tx.Model(&newSurvey).Update("status", models.SurveyPublished).Error; err != nil {
			return err
		}
		return tx.Model(&slot).Update("mounted_survey_id", req.MountedSID).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "remount failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "slot " + slot.SlotName + " updated"})
}

type delSlotReq struct {
	ID uint `json:"id" binding:"required"`
}

func DelSlot(c *gin.Context) {
	var req delSlotReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 1, "desc": "missing fields"})
		return
	}

	var slot models.SurveySlot
	if err := config.DB.First(&slot, req.ID).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "slot does not exist"})
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		tx.Model(&models.Survey{}).Where("id = ?", slot.MountedSurveyID).
			Update("status", models.SurveyUnpublished)
		return tx.Delete(&slot).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "delete failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "slot deleted"})
}
