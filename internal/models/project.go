package models

import "time"

const DefaultProjectColor = "#1f77b4"

type Project struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `gorm:"not null;default:''" json:"description"`
	IsPublic    bool   `gorm:"not null;default:false" json:"is_public"`
	Color       string `gorm:"not null;default:#1f77b4" json:"color"`
}

// ProjectAccess records an explicit grant. Public projects and admin role
// bypass grants entirely, see services.ProjectService.CanAccess.
type ProjectAccess struct {
	ProjectID   uint      `gorm:"primaryKey" json:"project_id"`
	UserID      string    `gorm:"primaryKey" json:"user_id"`
	GrantedByID *string   `json:"granted_by_id"`
	GrantedAt   time.Time `gorm:"not null" json:"granted_at"`
}

func (ProjectAccess) TableName() string {
	return "project_access"
}
