package api

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/worklens/internal/logging"
	"github.com/terraincognita07/worklens/internal/models"
	"github.com/terraincognita07/worklens/internal/services"
	"gorm.io/gorm"
)

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// storageError logs the real failure and hides it behind a generic message.
func (handler *Handler) storageError(c *fiber.Ctx, err error, context string) error {
	logging.Logger.WithError(err).Error(context)
	return apiError(c, fiber.StatusInternalServerError, "database error")
}

// serviceError maps a service failure onto the right status: validation
// problems are client errors naming the offending field, missing rows are
// 404, everything else is a storage error.
func (handler *Handler) serviceError(c *fiber.Ctx, err error, context string) error {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return apiError(c, fiber.StatusBadRequest, validationErr.Message)
	case isNotFound(err):
		return apiError(c, fiber.StatusNotFound, "not found")
	default:
		return handler.storageError(c, err, context)
	}
}

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return uint(value), nil
}

// parseDateRange reads the mandatory date_from/date_to query pair. Both
// bounds are inclusive.
func parseDateRange(c *fiber.Ctx) (models.Date, models.Date, error) {
	rawFrom := strings.TrimSpace(c.Query("date_from"))
	if rawFrom == "" {
		return models.Date{}, models.Date{}, errors.New("date_from is required")
	}
	from, err := models.ParseDate(rawFrom)
	if err != nil {
		return models.Date{}, models.Date{}, errors.New("date_from must be a YYYY-MM-DD date")
	}

	rawTo := strings.TrimSpace(c.Query("date_to"))
	if rawTo == "" {
		return models.Date{}, models.Date{}, errors.New("date_to is required")
	}
	to, err := models.ParseDate(rawTo)
	if err != nil {
		return models.Date{}, models.Date{}, errors.New("date_to must be a YYYY-MM-DD date")
	}

	return from, to, nil
}

func parsePagination(c *fiber.Ctx) (int, int) {
	skip := c.QueryInt("skip", 0)
	if skip < 0 {
		skip = 0
	}
	limit := c.QueryInt("limit", 100)
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}
	return skip, limit
}

func sendPNG(c *fiber.Ctx, image []byte) error {
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(image)
}
