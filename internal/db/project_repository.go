package db

import (
	"github.com/terraincognita07/worklens/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProjectRepository struct {
	database *gorm.DB
}

func NewProjectRepository(database *gorm.DB) *ProjectRepository {
	return &ProjectRepository{database: database}
}

func (repo *ProjectRepository) FindByID(projectID uint) (models.Project, error) {
	var project models.Project
	if err := repo.database.First(&project, projectID).Error; err != nil {
		return models.Project{}, err
	}
	return project, nil
}

func (repo *ProjectRepository) ExistsByName(name string) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.Project{}).
		Where("name = ?", name).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *ProjectRepository) ExistsByNameExcept(name string, exceptID uint) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.Project{}).
		Where("name = ? AND id <> ?", name, exceptID).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *ProjectRepository) Create(project *models.Project) error {
	return repo.database.Create(project).Error
}

func (repo *ProjectRepository) Save(project *models.Project) error {
	return repo.database.Save(project).Error
}

// Delete removes the project together with its tasks and their dependents.
// Dependent rows are deleted explicitly instead of leaning on FK cascades.
func (repo *ProjectRepository) Delete(projectID uint) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		taskIDs := make([]uint, 0)
		if err := tx.Model(&models.Task{}).
			Where("project_id = ?", projectID).
			Pluck("id", &taskIDs).Error; err != nil {
			return err
		}

		if len(taskIDs) > 0 {
			if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.Period{}).Error; err != nil {
				return err
			}
			if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.Review{}).Error; err != nil {
				return err
			}
			if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.TaskHistory{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", taskIDs).Delete(&models.Task{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectAccess{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, projectID).Error
	})
}

func (repo *ProjectRepository) ListAll() ([]models.Project, error) {
	projects := make([]models.Project, 0)
	if err := repo.database.Order("name").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// ListAccessibleTo returns public projects plus the ones the user holds an
// explicit grant for. Admin callers should use ListAll instead.
func (repo *ProjectRepository) ListAccessibleTo(userID string) ([]models.Project, error) {
	projects := make([]models.Project, 0)
	if err := repo.database.
		Where("is_public = ? OR id IN (?)",
			true,
			repo.database.Model(&models.ProjectAccess{}).
				Select("project_id").
				Where("user_id = ?", userID),
		).
		Order("name").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (repo *ProjectRepository) ListByIDs(projectIDs []uint) (map[uint]models.Project, error) {
	byID := make(map[uint]models.Project, len(projectIDs))
	if len(projectIDs) == 0 {
		return byID, nil
	}

	projects := make([]models.Project, 0, len(projectIDs))
	if err := repo.database.Where("id IN ?", projectIDs).Find(&projects).Error; err != nil {
		return nil, err
	}
	for _, project := range projects {
		byID[project.ID] = project
	}
	return byID, nil
}

func (repo *ProjectRepository) AccessibleProjectIDs(userID string) ([]uint, error) {
	projectIDs := make([]uint, 0)
	if err := repo.database.Model(&models.Project{}).
		Where("is_public = ? OR id IN (?)",
			true,
			repo.database.Model(&models.ProjectAccess{}).
				Select("project_id").
				Where("user_id = ?", userID),
		).
		Pluck("id", &projectIDs).Error; err != nil {
		return nil, err
	}
	return projectIDs, nil
}

func (repo *ProjectRepository) HasExplicitAccess(projectID uint, userID string) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.ProjectAccess{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

// Grant is idempotent: granting access the user already holds is a no-op.
func (repo *ProjectRepository) Grant(access *models.ProjectAccess) error {
	return repo.database.
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(access).Error
}

// Revoke removes the explicit grant only; public visibility is unaffected.
func (repo *ProjectRepository) Revoke(projectID uint, userID string) error {
	return repo.database.
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectAccess{}).Error
}

func (repo *ProjectRepository) ListUsersWithAccess(projectID uint) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := repo.database.
		Joins("JOIN project_access ON project_access.user_id = users.id").
		Where("project_access.project_id = ?", projectID).
		Order("users.username").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
