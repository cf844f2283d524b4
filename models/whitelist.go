package models

import "time"

const (
	WhitelistSourceExam      = 1
	WhitelistSourceGuarantee = 2
	WhitelistSourceOther     = 3
)

// Whitelist grants server access to one player UUID. UserID is nullable so an
// entry can be granted to a player with no site account.
type Whitelist struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID     *uint     `gorm:"column:user_id;index" json:"user_id"`
	PlayerName string    `gorm:"column:player_name;size:100;not null" json:"player_name"`
	PlayerUUID string    `gorm:"column:player_uuid;size:64;uniqueIndex;not null" json:"player_uuid"`
	Source     int       `gorm:"column:source;not null;default:3" json:"source"`
	AuditorUID *uint     `gorm:"column:auditor_uid" json:"auditor_uid"`
	CreateTime time.Time `gorm:"column:create_time;autoCreateTime" json:"create_time"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (Whitelist) TableName() string {
	return "whitelists"
}
