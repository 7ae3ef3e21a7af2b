package api

import (
	"time"

	"github.com/terraincognita07/worklens/internal/db"
	"github.com/terraincognita07/worklens/internal/services"
	"gorm.io/gorm"
)

const defaultTokenTTL = 30 * time.Minute

type Handler struct {
	secretKey      []byte
	tokenTTL       time.Duration
	repositories   *db.Repositories
	authService    *services.AuthService
	userService    *services.UserService
	projectService *services.ProjectService
	taskService    *services.TaskService
	reportService  *services.ReportService
}

func NewHandler(database *gorm.DB, secretKey []byte, tokenTTL time.Duration) *Handler {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}

	repositories := db.NewRepositories(database)
	return &Handler{
		secretKey:      secretKey,
		tokenTTL:       tokenTTL,
		repositories:   repositories,
		authService:    services.NewAuthService(repositories.Users),
		userService:    services.NewUserService(repositories.Users),
		projectService: services.NewProjectService(repositories.Projects),
		taskService: services.NewTaskService(
			repositories.Tasks,
			repositories.Users,
			repositories.Projects,
			repositories.TaskTypes,
		),
		reportService: services.NewReportService(
			repositories.Reports,
			repositories.Users,
			repositories.Projects,
		),
	}
}
