package models

import "time"

const (
	ReviewPending  = 0
	ReviewApproved = 1
	ReviewRejected = 2
)

// Response is one survey-taking attempt. SurveyName and the player fields are
// snapshots taken at start time so later renames don't rewrite history.
type Response struct {
	ID           uint       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID       uint       `gorm:"column:user_id;not null;index" json:"user_id"`
	SurveyID     uint       `gorm:"column:survey_id;not null;index" json:"survey_id"`
	SurveyName   string     `gorm:"column:survey_name;size:200" json:"survey_name"`
	PlayerName   string     `gorm:"column:player_name;size:100" json:"player_name"`
	PlayerUUID   string     `gorm:"column:player_uuid;size:64;index" json:"player_uuid"`
	IsCompleted  bool       `gorm:"column:is_completed;not null;default:false" json:"is_completed"`
	IsReviewed   int        `gorm:"column:is_reviewed;not null;default:0" json:"is_reviewed"`
	ReviewerUID  *uint      `gorm:"column:reviewer_uid" json:"reviewer_uid"`
	ArchiveScore *float64   `gorm:"column:archive_score" json:"archive_score"`
	ResponseTime *time.Time `gorm:"column:response_time" json:"response_time"`
	CreateTime   time.Time  `gorm:"column:create_time;autoCreateTime" json:"create_time"`

	User    User            `gorm:"foreignKey:UserID" json:"-"`
	Survey  Survey          `gorm:"foreignKey:SurveyID" json:"-"`
	Details []ResponseDetail `gorm:"foreignKey:ResponseID;constraint:OnDelete:CASCADE" json:"-"`
	Scores  []ResponseScore  `gorm:"foreignKey:ResponseID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Response) TableName() string {
	return "responses"
}

// ResponseDetail holds one submitted answer row. Choice questions store the
// option id as text; fill-blank and subjective store the free text itself.
// A multi-choice answer spans one row per selected option.
type ResponseDetail struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ResponseID uint      `gorm:"column:response_id;not null;index" json:"response_id"`
	QuestionID uint      `gorm:"column:question_id;not null;index" json:"question_id"`
	Answer     string    `gorm:"column:answer;size:500;not null" json:"answer"`
	CreateTime time.Time `gorm:"column:create_time;autoCreateTime" json:"create_time"`
}

func (ResponseDetail) TableName() string {
	return "response_details"
}

type ResponseScore struct {
	ID         uint    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	QuestionID uint    `gorm:"column:question_id;not null;uniqueIndex:idx_score_response_question" json:"question_id"`
	ResponseID uint    `gorm:"column:response_id;not null;uniqueIndex:idx_score_response_question" json:"response_id"`
	Score      float64 `gorm:"column:score;not null" json:"score"`
}

func (ResponseScore) TableName() string {
	return "response_scores"
}
