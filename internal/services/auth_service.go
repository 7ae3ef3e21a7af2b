package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/worklens/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthUserRepository interface {
	FindByUsername(username string) (models.User, error)
	FindByID(userID string) (models.User, error)
	ExistsByUsername(username string) (bool, error)
	Create(user *models.User) error
}

type AuthService struct {
	users AuthUserRepository
}

func NewAuthService(users AuthUserRepository) *AuthService {
	return &AuthService{users: users}
}

// Authenticate resolves the username and checks the password. Unknown user
// and wrong password collapse into the same error so the response does not
// reveal which usernames exist.
func (service *AuthService) Authenticate(username string, password string) (models.User, error) {
	user, err := service.users.FindByUsername(strings.TrimSpace(username))
	if err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (service *AuthService) FindByID(userID string) (models.User, error) {
	return service.users.FindByID(userID)
}

// EnsureBootstrapAdmin creates the initial administrator account when no
// user with the configured username exists yet. Returns true when the
// account was created by this call.
func (service *AuthService) EnsureBootstrapAdmin(username string, password string, fullName string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return false, errors.New("bootstrap admin username is empty")
	}

	exists, err := service.users.ExistsByUsername(username)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}

	admin := models.User{
		ID:             uuid.NewString(),
		Username:       username,
		PasswordHash:   string(passwordHash),
		FullName:       fullName,
		Role:           models.RoleAdmin,
		CanLoadTasks:   true,
		CanViewReports: true,
		Color:          models.DefaultUserColor,
		CreatedAt:      time.Now(),
	}
	if err := service.users.Create(&admin); err != nil {
		return false, err
	}
	return true, nil
}
