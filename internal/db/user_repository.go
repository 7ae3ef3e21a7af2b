package db

import (
	"strings"

	"github.com/terraincognita07/worklens/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	database *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{database: database}
}

func (repo *UserRepository) FindByID(userID string) (models.User, error) {
	var user models.User
	if err := repo.database.Where("id = ?", userID).First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) FindByUsername(username string) (models.User, error) {
	var user models.User
	if err := repo.database.Where("username = ?", username).First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) ExistsByUsername(username string) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.User{}).
		Where("username = ?", username).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *UserRepository) ExistsByUsernameExcept(username string, exceptID string) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.User{}).
		Where("username = ? AND id <> ?", username, exceptID).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *UserRepository) Create(user *models.User) error {
	return repo.database.Create(user).Error
}

func (repo *UserRepository) Save(user *models.User) error {
	return repo.database.Save(user).Error
}

func (repo *UserRepository) UpdateByID(userID string, updates map[string]any) error {
	return repo.database.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error
}

func (repo *UserRepository) List() ([]models.User, error) {
	users := make([]models.User, 0)
	if err := repo.database.Order("username").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (repo *UserRepository) ListByIDs(userIDs []string) (map[string]models.User, error) {
	byID := make(map[string]models.User, len(userIDs))
	if len(userIDs) == 0 {
		return byID, nil
	}

	users := make([]models.User, 0, len(userIDs))
	if err := repo.database.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, user := range users {
		byID[user.ID] = user
	}
	return byID, nil
}

func (repo *UserRepository) Delete(userID string) error {
	return repo.database.Where("id = ?", userID).Delete(&models.User{}).Error
}

// SearchByText matches the query as a case-insensitive substring of the
// username or full name. An empty query matches everyone.
func (repo *UserRepository) SearchByText(query string, limit int) ([]models.User, error) {
	users := make([]models.User, 0)
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	if err := repo.database.
		Where("lower(username) LIKE ? OR lower(full_name) LIKE ?", pattern, pattern).
		Order("username").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (repo *UserRepository) SearchAdminsByText(query string, limit int) ([]models.User, error) {
	users := make([]models.User, 0)
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	if err := repo.database.
		Where("role = ?", models.RoleAdmin).
		Where("lower(username) LIKE ? OR lower(full_name) LIKE ?", pattern, pattern).
		Order("username").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
