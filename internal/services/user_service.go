package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/worklens/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUsernameTaken = errors.New("username already registered")
	ErrInvalidRole   = errors.New("invalid role")
)

type UserDirectoryRepository interface {
	FindByID(userID string) (models.User, error)
	List() ([]models.User, error)
	ExistsByUsername(username string) (bool, error)
	ExistsByUsernameExcept(username string, exceptID string) (bool, error)
	Create(user *models.User) error
	Save(user *models.User) error
	Delete(userID string) error
}

type UserService struct {
	users UserDirectoryRepository
}

func NewUserService(users UserDirectoryRepository) *UserService {
	return &UserService{users: users}
}

type CreateUserInput struct {
	Username       string
	Password       string
	FullName       string
	Role           string
	CanLoadTasks   bool
	CanViewReports bool
	Color          string
}

type UpdateUserInput struct {
	Username       *string
	Password       *string
	FullName       *string
	Role           *string
	CanLoadTasks   *bool
	CanViewReports *bool
	Color          *string
}

func validRole(role string) bool {
	switch role {
	case models.RoleAdmin, models.RoleModerator, models.RoleUser:
		return true
	}
	return false
}

func (service *UserService) Create(input CreateUserInput) (models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return models.User{}, errors.New("username is required")
	}

	role := input.Role
	if role == "" {
		role = models.RoleUser
	}
	if !validRole(role) {
		return models.User{}, ErrInvalidRole
	}

	taken, err := service.users.ExistsByUsername(username)
	if err != nil {
		return models.User{}, err
	}
	if taken {
		return models.User{}, ErrUsernameTaken
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	color := strings.TrimSpace(input.Color)
	if color == "" {
		color = models.DefaultUserColor
	}

	user := models.User{
		ID:             uuid.NewString(),
		Username:       username,
		PasswordHash:   string(passwordHash),
		FullName:       input.FullName,
		Role:           role,
		CanLoadTasks:   input.CanLoadTasks,
		CanViewReports: input.CanViewReports,
		Color:          color,
		CreatedAt:      time.Now(),
	}
	if err := service.users.Create(&user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (service *UserService) List() ([]models.User, error) {
	return service.users.List()
}

func (service *UserService) Get(userID string) (models.User, error) {
	return service.users.FindByID(userID)
}

func (service *UserService) Update(userID string, input UpdateUserInput) (models.User, error) {
	user, err := service.users.FindByID(userID)
	if err != nil {
		return models.User{}, err
	}

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if username == "" {
			return models.User{}, errors.New("username is required")
		}
		taken, err := service.users.ExistsByUsernameExcept(username, userID)
		if err != nil {
			return models.User{}, err
		}
		if taken {
			return models.User{}, ErrUsernameTaken
		}
		user.Username = username
	}

	if input.Password != nil && *input.Password != "" {
		passwordHash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return models.User{}, err
		}
		user.PasswordHash = string(passwordHash)
	}

	if input.FullName != nil {
		user.FullName = *input.FullName
	}

	if input.Role != nil {
		if !validRole(*input.Role) {
			return models.User{}, ErrInvalidRole
		}
		user.Role = *input.Role
	}

	if input.CanLoadTasks != nil {
		user.CanLoadTasks = *input.CanLoadTasks
	}
	if input.CanViewReports != nil {
		user.CanViewReports = *input.CanViewReports
	}
	if input.Color != nil && strings.TrimSpace(*input.Color) != "" {
		user.Color = strings.TrimSpace(*input.Color)
	}

	if err := service.users.Save(&user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (service *UserService) Delete(userID string) error {
	if _, err := service.users.FindByID(userID); err != nil {
		return err
	}
	return service.users.Delete(userID)
}
