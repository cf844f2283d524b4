package models

import "time"

const (
	GuaranteePending  = 0
	GuaranteeAccepted = 1
	GuaranteeRejected = 2
)

// Guarantee is a peer-vouch request. CreateTime and ExpirationTime are both
// fixed at insert; the window is never recomputed afterwards.
type Guarantee struct {
	ID             uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	GuarantorID    uint      `gorm:"column:guarantor_id;not null;index" json:"guarantor_id"`
	ApplicantID    uint      `gorm:"column:applicant_id;not null;index" json:"applicant_id"`
	PlayerName     string    `gorm:"column:player_name;size:100;not null" json:"player_name"`
	PlayerUUID     string    `gorm:"column:player_uuid;size:64;index;not null" json:"player_uuid"`
	Status         int       `gorm:"column:status;not null;default:0" json:"status"`
	CreateTime     time.Time `gorm:"column:create_time;not null" json:"create_time"`
	ExpirationTime time.Time `gorm:"column:expiration_time;not null" json:"expiration_time"`

	Guarantor User `gorm:"foreignKey:GuarantorID" json:"-"`
	Applicant User `gorm:"foreignKey:ApplicantID" json:"-"`
}

func (Guarantee) TableName() string {
	return "guarantees"
}
