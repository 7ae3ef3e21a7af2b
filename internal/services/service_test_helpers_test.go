package services

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/terraincognita07/worklens/internal/db"
	"github.com/terraincognita07/worklens/internal/models"
	"gorm.io/gorm"
)

func openServiceTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "worklens.db"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	return database
}

func seedServiceUser(t *testing.T, database *gorm.DB, username string, fullName string, role string) models.User {
	t.Helper()

	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: "unused",
		FullName:     fullName,
		Role:         role,
		Color:        models.DefaultUserColor,
	}
	if err := database.Create(&user).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return user
}

func seedServiceProject(t *testing.T, database *gorm.DB, name string, isPublic bool) models.Project {
	t.Helper()

	project := models.Project{Name: name, IsPublic: isPublic, Color: models.DefaultProjectColor}
	if err := database.Create(&project).Error; err != nil {
		t.Fatalf("seed project %s: %v", name, err)
	}
	return project
}

func developmentTypeID(t *testing.T, database *gorm.DB) uint {
	t.Helper()

	taskType, err := db.NewTaskTypeRepository(database).FindByName("development")
	if err != nil {
		t.Fatalf("load development task type: %v", err)
	}
	return taskType.ID
}

func newTaskServiceForTest(database *gorm.DB) *TaskService {
	repositories := db.NewRepositories(database)
	return NewTaskService(
		repositories.Tasks,
		repositories.Users,
		repositories.Projects,
		repositories.TaskTypes,
	)
}

func newReportServiceForTest(database *gorm.DB) *ReportService {
	repositories := db.NewRepositories(database)
	return NewReportService(repositories.Reports, repositories.Users, repositories.Projects)
}
