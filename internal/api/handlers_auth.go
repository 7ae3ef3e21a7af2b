package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/worklens/internal/services"
)

func (handler *Handler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Worklens API"})
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy"})
}

// IssueToken exchanges form-encoded credentials for a bearer token.
func (handler *Handler) IssueToken(c *fiber.Ctx) error {
	username := strings.TrimSpace(c.FormValue("username"))
	password := c.FormValue("password")
	if username == "" || password == "" {
		return apiError(c, fiber.StatusBadRequest, "username and password are required")
	}

	user, err := handler.authService.Authenticate(username, password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
			return apiError(c, fiber.StatusUnauthorized, "incorrect username or password")
		}
		return handler.storageError(c, err, "authenticate user")
	}

	token, err := handler.buildToken(user)
	if err != nil {
		return handler.storageError(c, err, "sign auth token")
	}

	return c.JSON(fiber.Map{
		"access_token": token,
		"token_type":   "bearer",
	})
}
