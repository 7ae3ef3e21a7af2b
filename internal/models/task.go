package models

import "time"

const (
	PeriodWork = "work"
	PeriodTest = "test"
)

// Extra-field keys the report queries understand. Anything else in the
// mapping is carried verbatim and ignored by metrics.
const (
	ExtraFieldLOCAdded    = "loc(+)"
	ExtraFieldLOCRemoved  = "loc(-)"
	ExtraFieldStoryPoints = "sp"
)

type Task struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	TypeID      uint           `gorm:"not null" json:"type_id"`
	Name        string         `gorm:"not null" json:"name"`
	IssueURL    string         `gorm:"not null;default:''" json:"issue_url"`
	IssueDate   Date           `gorm:"type:date;not null" json:"issue_date"`
	AssigneeID  *string        `json:"assignee_id"`
	ProjectID   *uint          `json:"project_id"`
	ManagerID   *string        `json:"manager_id"`
	ExtraFields map[string]any `gorm:"serializer:json" json:"extra_fields"`

	Periods []Period `gorm:"constraint:OnDelete:CASCADE" json:"periods"`
	Reviews []Review `gorm:"constraint:OnDelete:CASCADE" json:"reviews"`
}

type Period struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	TaskID   uint    `gorm:"not null;index" json:"task_id"`
	Start    Date    `gorm:"type:date;not null" json:"start"`
	End      Date    `gorm:"type:date;not null;column:end" json:"end"`
	Type     string  `gorm:"not null;default:work" json:"type"`
	TesterID *string `json:"tester_id"`
}

type Review struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	TaskID     uint   `gorm:"not null;index" json:"task_id"`
	ReviewerID string `gorm:"not null" json:"reviewer_id"`
	ReviewDate Date   `gorm:"type:date;not null" json:"review_date"`
}

const (
	HistoryFieldCreate = "create"
	HistoryFieldUpdate = "update"
)

// TaskHistory is append-only. A "create" row carries a plain summary in
// NewValue; an "update" row carries a JSON-encoded list of field changes.
type TaskHistory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TaskID      uint      `gorm:"not null;index" json:"task_id"`
	ChangedByID *string   `json:"changed_by_id"`
	ChangedAt   time.Time `gorm:"not null" json:"changed_at"`
	Field       string    `gorm:"not null" json:"field"`
	OldValue    string    `gorm:"not null;default:''" json:"old_value"`
	NewValue    string    `gorm:"not null;default:''" json:"new_value"`
}

func (TaskHistory) TableName() string {
	return "task_history"
}
