package controllers

import (
	"time"

	"gorm.io/gorm"

	"github.com/craftwl/whitelist-server/config"
	"github.com/craftwl/whitelist-server/models"
)

// ResponseValidityPeriod reads the configured validity window for an
// in-flight response.
func ResponseValidityPeriod() time.Duration {
	hours := config.Settings.GetInt(config.KeyResponseValidHours)
	if hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

// SweepExpiredResponses force-completes every incomplete response older than
// the validity period, marking it rejected. Idempotent: a second sweep finds
// nothing. Run on a schedule and opportunistically by the read paths that
// care about in-flight state.
func SweepExpiredResponses(db *gorm.DB, now time.Time) (int64, error) {
	cutoff := now.Add(-ResponseValidityPeriod())
	res := db.Model(&models.Response{}).
		Where("is_completed = ? AND create_time < ?", false, cutoff).
		Updates(map[string]interface{}{
			"is_completed": true,
			"is_reviewed":  models.ReviewRejected,
		})
	return res.RowsAffected, res.Error
}

// incompleteResponse sweeps and then returns the user's in-flight response,
// or nil if there is none.
func incompleteResponse(db *gorm.DB, userID uint) (*models.Response, error) {
	if _, err := SweepExpiredResponses(db, time.Now()); err != nil {
		return nil, err
	}
	var resp models.Response
	err := db.Where("user_id = ? AND is_completed = ?", userID, false).First(&resp).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
