package db

import (
	"github.com/terraincognita07/worklens/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TaskRepository struct {
	database *gorm.DB
}

func NewTaskRepository(database *gorm.DB) *TaskRepository {
	return &TaskRepository{database: database}
}

func (repo *TaskRepository) FindByID(taskID uint) (models.Task, error) {
	var task models.Task
	if err := repo.database.
		Preload("Periods").
		Preload("Reviews").
		First(&task, taskID).Error; err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (repo *TaskRepository) List(skip int, limit int) ([]models.Task, error) {
	tasks := make([]models.Task, 0)
	if err := repo.database.
		Preload("Periods").
		Preload("Reviews").
		Order("id").
		Offset(skip).
		Limit(limit).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListVisible restricts the listing to tasks without a project or with a
// project from the given id set.
func (repo *TaskRepository) ListVisible(projectIDs []uint, skip int, limit int) ([]models.Task, error) {
	tasks := make([]models.Task, 0)
	if err := repo.database.
		Preload("Periods").
		Preload("Reviews").
		Where("project_id IS NULL OR project_id IN ?", emptyToImpossible(projectIDs)).
		Order("id").
		Offset(skip).
		Limit(limit).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (repo *TaskRepository) Count() (int64, error) {
	var count int64
	if err := repo.database.Model(&models.Task{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *TaskRepository) CountVisible(projectIDs []uint) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.Task{}).
		Where("project_id IS NULL OR project_id IN ?", emptyToImpossible(projectIDs)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *TaskRepository) ListByProject(projectID uint, skip int, limit int) ([]models.Task, error) {
	tasks := make([]models.Task, 0)
	if err := repo.database.
		Preload("Periods").
		Preload("Reviews").
		Where("project_id = ?", projectID).
		Order("id").
		Offset(skip).
		Limit(limit).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (repo *TaskRepository) CountByProject(projectID uint) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.Task{}).
		Where("project_id = ?", projectID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CreateWithDependents persists the task, its periods and reviews, and the
// creation history entry in one transaction.
func (repo *TaskRepository) CreateWithDependents(task *models.Task, entry *models.TaskHistory) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(task).Error; err != nil {
			return err
		}

		for index := range task.Periods {
			task.Periods[index].TaskID = task.ID
		}
		if len(task.Periods) > 0 {
			if err := tx.Create(&task.Periods).Error; err != nil {
				return err
			}
		}

		for index := range task.Reviews {
			task.Reviews[index].TaskID = task.ID
		}
		if len(task.Reviews) > 0 {
			if err := tx.Create(&task.Reviews).Error; err != nil {
				return err
			}
		}

		if entry != nil {
			entry.TaskID = task.ID
			if err := tx.Create(entry).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateWithDependents overwrites the task's own columns, replaces the full
// period and review sets, and appends the update history entry when one is
// provided. Replacement is delete-and-reinsert, not a merge.
func (repo *TaskRepository) UpdateWithDependents(task *models.Task, entry *models.TaskHistory) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(task).Error; err != nil {
			return err
		}

		if err := tx.Where("task_id = ?", task.ID).Delete(&models.Period{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.Review{}).Error; err != nil {
			return err
		}

		for index := range task.Periods {
			task.Periods[index].ID = 0
			task.Periods[index].TaskID = task.ID
		}
		if len(task.Periods) > 0 {
			if err := tx.Create(&task.Periods).Error; err != nil {
				return err
			}
		}

		for index := range task.Reviews {
			task.Reviews[index].ID = 0
			task.Reviews[index].TaskID = task.ID
		}
		if len(task.Reviews) > 0 {
			if err := tx.Create(&task.Reviews).Error; err != nil {
				return err
			}
		}

		if entry != nil {
			entry.TaskID = task.ID
			if err := tx.Create(entry).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteWithDependents removes the task's history first, then the task with
// its periods and reviews. Dependents go explicitly so the cleanup does not
// depend on FK cascade enforcement.
func (repo *TaskRepository) DeleteWithDependents(taskID uint) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskHistory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", taskID).Delete(&models.Period{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", taskID).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Task{}, taskID).Error
	})
}

func (repo *TaskRepository) History(taskID uint) ([]models.TaskHistory, error) {
	entries := make([]models.TaskHistory, 0)
	if err := repo.database.
		Where("task_id = ?", taskID).
		Order("changed_at DESC, id DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// emptyToImpossible keeps "IN ?" valid when the caller can access no
// projects at all: an empty id list must match nothing, not everything.
func emptyToImpossible(projectIDs []uint) []uint {
	if len(projectIDs) == 0 {
		return []uint{0}
	}
	return projectIDs
}
