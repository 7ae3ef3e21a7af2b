package services

import (
	"errors"
	"strings"
	"time"

	"github.com/terraincognita07/worklens/internal/models"
)

var ErrProjectNameTaken = errors.New("project name already exists")

type ProjectAccessRepository interface {
	FindByID(projectID uint) (models.Project, error)
	ExistsByName(name string) (bool, error)
	ExistsByNameExcept(name string, exceptID uint) (bool, error)
	Create(project *models.Project) error
	Save(project *models.Project) error
	Delete(projectID uint) error
	ListAll() ([]models.Project, error)
	ListAccessibleTo(userID string) ([]models.Project, error)
	AccessibleProjectIDs(userID string) ([]uint, error)
	HasExplicitAccess(projectID uint, userID string) (bool, error)
	Grant(access *models.ProjectAccess) error
	Revoke(projectID uint, userID string) error
	ListUsersWithAccess(projectID uint) ([]models.User, error)
}

type ProjectService struct {
	projects ProjectAccessRepository
}

func NewProjectService(projects ProjectAccessRepository) *ProjectService {
	return &ProjectService{projects: projects}
}

type CreateProjectInput struct {
	Name        string
	Description string
	IsPublic    bool
	Color       string
}

type UpdateProjectInput struct {
	Name        *string
	Description *string
	IsPublic    *bool
	Color       *string
}

func (service *ProjectService) Create(input CreateProjectInput) (models.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return models.Project{}, errors.New("project name is required")
	}

	taken, err := service.projects.ExistsByName(name)
	if err != nil {
		return models.Project{}, err
	}
	if taken {
		return models.Project{}, ErrProjectNameTaken
	}

	color := strings.TrimSpace(input.Color)
	if color == "" {
		color = models.DefaultProjectColor
	}

	project := models.Project{
		Name:        name,
		Description: input.Description,
		IsPublic:    input.IsPublic,
		Color:       color,
	}
	if err := service.projects.Create(&project); err != nil {
		return models.Project{}, err
	}
	return project, nil
}

func (service *ProjectService) Get(projectID uint) (models.Project, error) {
	return service.projects.FindByID(projectID)
}

func (service *ProjectService) Update(projectID uint, input UpdateProjectInput) (models.Project, error) {
	project, err := service.projects.FindByID(projectID)
	if err != nil {
		return models.Project{}, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return models.Project{}, errors.New("project name is required")
		}
		taken, err := service.projects.ExistsByNameExcept(name, projectID)
		if err != nil {
			return models.Project{}, err
		}
		if taken {
			return models.Project{}, ErrProjectNameTaken
		}
		project.Name = name
	}

	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.IsPublic != nil {
		project.IsPublic = *input.IsPublic
	}
	if input.Color != nil && strings.TrimSpace(*input.Color) != "" {
		project.Color = strings.TrimSpace(*input.Color)
	}

	if err := service.projects.Save(&project); err != nil {
		return models.Project{}, err
	}
	return project, nil
}

func (service *ProjectService) Delete(projectID uint) error {
	if _, err := service.projects.FindByID(projectID); err != nil {
		return err
	}
	return service.projects.Delete(projectID)
}

// ListFor returns every project for admins and the public-or-granted subset
// for everyone else.
func (service *ProjectService) ListFor(user *models.User) ([]models.Project, error) {
	if IsAdminUser(user) {
		return service.projects.ListAll()
	}
	return service.projects.ListAccessibleTo(user.ID)
}

// CanAccess is the project visibility predicate: admin role, the public
// flag, or an explicit grant. Nothing else opens a project.
func (service *ProjectService) CanAccess(user *models.User, project models.Project) (bool, error) {
	if IsAdminUser(user) || project.IsPublic {
		return true, nil
	}
	if user == nil {
		return false, nil
	}
	return service.projects.HasExplicitAccess(project.ID, user.ID)
}

// AccessibleIDs lists the project ids the user may see. Admin callers get a
// nil slice meaning "unrestricted".
func (service *ProjectService) AccessibleIDs(user *models.User) ([]uint, error) {
	if IsAdminUser(user) {
		return nil, nil
	}
	return service.projects.AccessibleProjectIDs(user.ID)
}

func (service *ProjectService) Grant(projectID uint, userID string, grantedBy *models.User) error {
	access := models.ProjectAccess{
		ProjectID: projectID,
		UserID:    userID,
		GrantedAt: time.Now(),
	}
	if grantedBy != nil {
		grantedByID := grantedBy.ID
		access.GrantedByID = &grantedByID
	}
	return service.projects.Grant(&access)
}

func (service *ProjectService) Revoke(projectID uint, userID string) error {
	return service.projects.Revoke(projectID, userID)
}

func (service *ProjectService) UsersWithAccess(projectID uint) ([]models.User, error) {
	return service.projects.ListUsersWithAccess(projectID)
}
