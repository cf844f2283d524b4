package models

import "time"

// Token is a server-side record of an issued bearer token. The JWT inside is
// self-describing, but auth always checks this row so tokens stay revocable.
type Token struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"column:user_id;not null;index" json:"user_id"`
	Token     string    `gorm:"column:token;size:512;uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null" json:"expires_at"`
	IsRevoked bool      `gorm:"column:is_revoked;not null;default:false" json:"is_revoked"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Token) TableName() string {
	return "tokens"
}

// ResetPasswordToken is single-use and time-boxed.
type ResetPasswordToken struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"column:user_id;not null;index" json:"user_id"`
	Token     string    `gorm:"column:token;size:64;uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null" json:"expires_at"`
	Used      bool      `gorm:"column:used;not null;default:false" json:"used"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (ResetPasswordToken) TableName() string {
	return "reset_password_tokens"
}

// ActivationToken is single-use and time-boxed.
type ActivationToken struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"column:user_id;not null;index" json:"user_id"`
	Token     string    `gorm:"column:token;size:64;uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null" json:"expires_at"`
	Used      bool      `gorm:"column:used;not null;default:false" json:"used"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (ActivationToken) TableName() string {
	return "activation_tokens"
}
