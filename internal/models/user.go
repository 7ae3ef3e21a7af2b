package models

import "time"

const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleUser      = "user"
)

const DefaultUserColor = "#ff7f0e"

type User struct {
	ID             string    `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash   string    `gorm:"not null" json:"-"`
	FullName       string    `gorm:"not null;default:''" json:"full_name"`
	Role           string    `gorm:"not null;default:user" json:"role"`
	CanLoadTasks   bool      `gorm:"not null;default:false" json:"can_load_tasks"`
	CanViewReports bool      `gorm:"not null;default:false" json:"can_view_reports"`
	Color          string    `gorm:"not null;default:#ff7f0e" json:"color"`
	CreatedAt      time.Time `json:"created_at"`
}
