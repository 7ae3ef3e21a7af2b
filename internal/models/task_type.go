package models

// TaskType is a seeded reference table. The mutation API never deletes rows;
// tasks pointing at a removed type simply stop appearing in type-grouped
// reports.
type TaskType struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	DisplayName string `gorm:"not null" json:"display_name"`
	Description string `gorm:"not null;default:''" json:"description"`
}
