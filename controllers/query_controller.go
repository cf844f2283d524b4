package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/craftwl/whitelist-server/config"
	"github.com/craftwl/whitelist-server/models"
)

// MyResponses returns the caller's 10 most recent attempts. Reviewed rows use
// the frozen archive score; unreviewed ones are summed live.
func MyResponses(c *gin.Context) {
	user := currentUser(c)

	if _, err := SweepExpiredResponses(config.DB, time.Now()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "sweep failed"})
		return
	}

	var responses []models.Response
	if err := config.DB.Where("user_id = ?", user.ID).
		Order("id DESC").Limit(10).Find(&responses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "desc": "query failed"})
		return
	}

	list := make([]gin.H, 0, len(responses))
	for _, resp := range responses {
		var total float64
		if resp.ArchiveScore != nil {
			total = *resp.ArchiveScore
		} else {
			total, _ = sumResponseScores(config.DB, resp.ID)
		}

		var fullScore float64
		config.DB.Model(&models.Question{}).
			Where("survey_id = ?", resp.SurveyID).
			Select("COALESCE(SUM(score), 0)").
			Scan(&fullScore)

		list = append(list, gin.H{
			"id":           resp.ID,
			"survey_name":  resp.SurveyName,
			"responseTime": resp.ResponseTime,
			"state":        resp.IsReviewed,
			"get_score":    total,
			"full_score":   fullScore,
		})
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "desc": "ok", "list": list})
}
