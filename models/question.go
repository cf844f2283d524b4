package models

import "time"

// QuestionType tags how a question is answered and graded.
type QuestionType int

const (
	SingleChoice   QuestionType = 1
	MultipleChoice QuestionType = 2
	FillInTheBlank QuestionType = 3
	Subjective     QuestionType = 4
)

func (t QuestionType) Valid() bool {
	return t >= SingleChoice && t <= Subjective
}

// UsesReferenceAnswer reports whether the question stores its expected answer
// as the first (and only correct) option instead of real choices.
func (t QuestionType) UsesReferenceAnswer() bool {
	return t == FillInTheBlank || t == Subjective
}

// AutoScored reports whether the answer can be graded without a human.
func (t QuestionType) AutoScored() bool {
	return t != Subjective
}

type Question struct {
	ID              uint         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SurveyID        uint         `gorm:"column:survey_id;not null;index" json:"survey_id"`
	QuestionText    string       `gorm:"column:question_text;size:500;not null" json:"question_text"`
	QuestionType    QuestionType `gorm:"column:question_type;not null" json:"question_type"`
	Score           float64      `gorm:"column:score;not null" json:"score"`
	DisplayOrder    int          `gorm:"column:display_order;default:0" json:"display_order"`
	LogicalDeletion bool         `gorm:"column:logical_deletion;not null;default:false" json:"-"`
	CreateTime      time.Time    `gorm:"column:create_time;autoCreateTime" json:"create_time"`

	Options []Option        `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"options"`
	Images  []QuestionImage `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"img_list"`
}

func (Question) TableName() string {
	return "questions"
}

type Option struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	QuestionID uint      `gorm:"column:question_id;not null;index" json:"question_id"`
	OptionText string    `gorm:"column:option_text;size:200;not null" json:"option_text"`
	IsCorrect  *bool     `gorm:"column:is_correct" json:"is_correct"`
	CreateTime time.Time `gorm:"column:create_time;autoCreateTime" json:"create_time"`
}

func (Option) TableName() string {
	return "options"
}

type QuestionImage struct {
	ID         uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	QuestionID uint   `gorm:"column:question_id;not null;index" json:"question_id"`
	ImgAlt     string `gorm:"column:img_alt;size:200" json:"alt"`
	ImgData    string `gorm:"column:img_data;type:text" json:"data"`
}

func (QuestionImage) TableName() string {
	return "question_images"
}
