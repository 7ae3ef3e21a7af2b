package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/worklens/internal/services"
)

type createUserRequest struct {
	Username       string `json:"username"`
	Password       string `json:"password"`
	FullName       string `json:"full_name"`
	Role           string `json:"role"`
	CanLoadTasks   bool   `json:"can_load_tasks"`
	CanViewReports bool   `json:"can_view_reports"`
	Color          string `json:"color"`
}

type updateUserRequest struct {
	Username       *string `json:"username"`
	Password       *string `json:"password"`
	FullName       *string `json:"full_name"`
	Role           *string `json:"role"`
	CanLoadTasks   *bool   `json:"can_load_tasks"`
	CanViewReports *bool   `json:"can_view_reports"`
	Color          *string `json:"color"`
}

func (handler *Handler) Me(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return c.JSON(user)
}

func (handler *Handler) CreateUser(c *fiber.Ctx) error {
	var request createUserRequest
	if err := c.BodyParser(&request); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if request.Username == "" || request.Password == "" {
		return apiError(c, fiber.StatusBadRequest, "username and password are required")
	}

	user, err := handler.userService.Create(services.CreateUserInput{
		Username:       request.Username,
		Password:       request.Password,
		FullName:       request.FullName,
		Role:           request.Role,
		CanLoadTasks:   request.CanLoadTasks,
		CanViewReports: request.CanViewReports,
		Color:          request.Color,
	})
	if err != nil {
		if errors.Is(err, services.ErrUsernameTaken) {
			return apiError(c, fiber.StatusBadRequest, "username already registered")
		}
		if errors.Is(err, services.ErrInvalidRole) {
			return apiError(c, fiber.StatusBadRequest, "invalid role")
		}
		return handler.serviceError(c, err, "create user")
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

func (handler *Handler) ListUsers(c *fiber.Ctx) error {
	users, err := handler.userService.List()
	if err != nil {
		return handler.storageError(c, err, "list users")
	}
	return c.JSON(users)
}

func (handler *Handler) GetUser(c *fiber.Ctx) error {
	user, err := handler.userService.Get(c.Params("id"))
	if err != nil {
		if isNotFound(err) {
			return apiError(c, fiber.StatusNotFound, "user not found")
		}
		return handler.storageError(c, err, "get user")
	}
	return c.JSON(user)
}

func (handler *Handler) UpdateUser(c *fiber.Ctx) error {
	var request updateUserRequest
	if err := c.BodyParser(&request); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := handler.userService.Update(c.Params("id"), services.UpdateUserInput{
		Username:       request.Username,
		Password:       request.Password,
		FullName:       request.FullName,
		Role:           request.Role,
		CanLoadTasks:   request.CanLoadTasks,
		CanViewReports: request.CanViewReports,
		Color:          request.Color,
	})
	if err != nil {
		if isNotFound(err) {
			return apiError(c, fiber.StatusNotFound, "user not found")
		}
		if errors.Is(err, services.ErrUsernameTaken) {
			return apiError(c, fiber.StatusBadRequest, "username already registered")
		}
		if errors.Is(err, services.ErrInvalidRole) {
			return apiError(c, fiber.StatusBadRequest, "invalid role")
		}
		return handler.serviceError(c, err, "update user")
	}

	return c.JSON(user)
}

func (handler *Handler) DeleteUser(c *fiber.Ctx) error {
	if err := handler.userService.Delete(c.Params("id")); err != nil {
		if isNotFound(err) {
			return apiError(c, fiber.StatusNotFound, "user not found")
		}
		return handler.storageError(c, err, "delete user")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
