package models

import "time"

const (
	SurveyUnpublished = 0
	SurveyPublished   = 1
)

type Survey struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"column:name;size:200;not null" json:"name"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	Status      int       `gorm:"column:status;not null;default:0" json:"status"`
	CreateTime  time.Time `gorm:"column:create_time;autoCreateTime" json:"create_time"`

	Questions []Question `gorm:"foreignKey:SurveyID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Survey) TableName() string {
	return "surveys"
}

// SurveySlot is a named mount point; the survey it points at is the one
// currently served to takers under that slot name.
type SurveySlot struct {
	ID              uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SlotName        string `gorm:"column:slot_name;size:100;not null" json:"slot_name"`
	MountedSurveyID uint   `gorm:"column:mounted_survey_id;not null" json:"mounted_survey_id"`
}

func (SurveySlot) TableName() string {
	return "survey_slots"
}
