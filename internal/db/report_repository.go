package db

import (
	"github.com/terraincognita07/worklens/internal/models"
	"gorm.io/gorm"
)

// ReportRepository holds the grouped read queries behind the report
// endpoints. Everything is filtered by an inclusive date range.
type ReportRepository struct {
	database *gorm.DB
}

func NewReportRepository(database *gorm.DB) *ReportRepository {
	return &ReportRepository{database: database}
}

// LabeledValue is one grouped row: a display label, the aggregated value and
// the display color of the grouped entity when it has one.
type LabeledValue struct {
	Label string  `gorm:"column:label"`
	Value float64 `gorm:"column:value"`
	Color string  `gorm:"column:color"`
}

// ProjectTypeCount is one row of the per-project type breakdown.
type ProjectTypeCount struct {
	Project string  `gorm:"column:project"`
	Label   string  `gorm:"column:label"`
	Value   float64 `gorm:"column:value"`
}

func (repo *ReportRepository) TasksInRange(from models.Date, to models.Date) ([]models.Task, error) {
	tasks := make([]models.Task, 0)
	if err := repo.database.
		Where("issue_date >= ? AND issue_date <= ?", from, to).
		Order("id").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (repo *ReportRepository) TasksForUserInRange(userID string, from models.Date, to models.Date) ([]models.Task, error) {
	tasks := make([]models.Task, 0)
	if err := repo.database.
		Preload("Periods").
		Where("assignee_id = ? AND issue_date >= ? AND issue_date <= ?", userID, from, to).
		Order("id").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// TypeCounts counts tasks per task-type display name. Tasks whose type no
// longer exists in the dictionary drop out through the inner join.
func (repo *ReportRepository) TypeCounts(from models.Date, to models.Date) ([]LabeledValue, error) {
	rows := make([]LabeledValue, 0)
	if err := repo.database.Raw(`
SELECT task_types.display_name AS label, COUNT(*) AS value, '' AS color
FROM tasks
JOIN task_types ON task_types.id = tasks.type_id
WHERE tasks.issue_date >= ? AND tasks.issue_date <= ?
GROUP BY task_types.display_name
ORDER BY task_types.display_name`, from, to).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (repo *ReportRepository) ProjectTypeCounts(from models.Date, to models.Date) ([]ProjectTypeCount, error) {
	rows := make([]ProjectTypeCount, 0)
	if err := repo.database.Raw(`
SELECT projects.name AS project, task_types.display_name AS label, COUNT(*) AS value
FROM tasks
JOIN task_types ON task_types.id = tasks.type_id
JOIN projects ON projects.id = tasks.project_id
WHERE tasks.issue_date >= ? AND tasks.issue_date <= ?
GROUP BY projects.name, task_types.display_name
ORDER BY projects.name, task_types.display_name`, from, to).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (repo *ReportRepository) ReviewerCounts(from models.Date, to models.Date) ([]LabeledValue, error) {
	rows := make([]LabeledValue, 0)
	if err := repo.database.Raw(`
SELECT users.full_name AS label, COUNT(*) AS value, MIN(users.color) AS color
FROM reviews
JOIN users ON users.id = reviews.reviewer_id
WHERE reviews.review_date >= ? AND reviews.review_date <= ?
GROUP BY users.full_name
ORDER BY users.full_name`, from, to).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// TesterCounts counts test periods fully inside the range per tester.
func (repo *ReportRepository) TesterCounts(from models.Date, to models.Date) ([]LabeledValue, error) {
	rows := make([]LabeledValue, 0)
	if err := repo.database.Raw(`
SELECT users.full_name AS label, COUNT(*) AS value, MIN(users.color) AS color
FROM periods
JOIN users ON users.id = periods.tester_id
WHERE periods.type = ? AND periods.start >= ? AND periods."end" <= ?
GROUP BY users.full_name
ORDER BY users.full_name`, models.PeriodTest, from, to).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
