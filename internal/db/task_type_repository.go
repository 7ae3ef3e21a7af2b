package db

import (
	"github.com/terraincognita07/worklens/internal/models"
	"gorm.io/gorm"
)

type TaskTypeRepository struct {
	database *gorm.DB
}

func NewTaskTypeRepository(database *gorm.DB) *TaskTypeRepository {
	return &TaskTypeRepository{database: database}
}

func (repo *TaskTypeRepository) List() ([]models.TaskType, error) {
	types := make([]models.TaskType, 0)
	if err := repo.database.Order("id").Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

func (repo *TaskTypeRepository) FindByID(typeID uint) (models.TaskType, error) {
	var taskType models.TaskType
	if err := repo.database.First(&taskType, typeID).Error; err != nil {
		return models.TaskType{}, err
	}
	return taskType, nil
}

func (repo *TaskTypeRepository) FindByName(name string) (models.TaskType, error) {
	var taskType models.TaskType
	if err := repo.database.Where("name = ?", name).First(&taskType).Error; err != nil {
		return models.TaskType{}, err
	}
	return taskType, nil
}
