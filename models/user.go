package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	UserUnactivated = 0
	UserActive      = 1
	UserTempBanned  = 2
	UserPermaBanned = 3
	UserDeleted     = 4
)

// DefaultAvatar is served to anonymous sessions and fresh accounts.
const DefaultAvatar = "b83565e6-b0d0-4265-bb4f-fdb5e8d00655"

type User struct {
	ID       uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Username string    `gorm:"column:username;size:100;uniqueIndex;not null" json:"username"`
	UserQQ   string    `gorm:"column:user_qq;size:25" json:"user_qq"`
	Password string    `gorm:"column:password;size:255;not null" json:"-"`
	Role     string    `gorm:"column:role;size:20;not null;default:'user'" json:"role"`
	Status   int       `gorm:"column:status;not null;default:0" json:"status"`
	Avatar   string    `gorm:"column:avatar;size:64" json:"avatar"`
	AddTime  time.Time `gorm:"column:addtime;autoCreateTime" json:"addtime"`

	Responses []Response `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
