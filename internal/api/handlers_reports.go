package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/worklens/internal/models"
	"github.com/terraincognita07/worklens/internal/services"
)

// ReportGantt returns the per-user gantt rows for a date range.
func (handler *Handler) ReportGantt(c *fiber.Ctx) error {
	userID := strings.TrimSpace(c.Query("user_id"))
	if userID == "" {
		return apiError(c, fiber.StatusBadRequest, "user_id is required")
	}
	from, to, err := parseDateRange(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	rows, err := handler.reportService.Gantt(userID, from, to)
	if err != nil {
		if isNotFound(err) {
			return apiError(c, fiber.StatusNotFound, "user not found")
		}
		return handler.storageError(c, err, "build gantt report")
	}
	return c.JSON(rows)
}

func (handler *Handler) ReportTasksByType(c *fiber.Ctx) error {
	return handler.chartRowReport(c, handler.reportService.TasksByType, "tasks by type report")
}

func (handler *Handler) ReportProjectsByType(c *fiber.Ctx) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	byProject, err := handler.reportService.ProjectsByType(from, to)
	if err != nil {
		return handler.storageError(c, err, "projects by type report")
	}
	return c.JSON(byProject)
}

func (handler *Handler) ReportReviewers(c *fiber.Ctx) error {
	return handler.chartRowReport(c, handler.reportService.Reviewers, "reviewers report")
}

func (handler *Handler) ReportTesters(c *fiber.Ctx) error {
	return handler.chartRowReport(c, handler.reportService.Testers, "testers report")
}

func (handler *Handler) ReportSPByProject(c *fiber.Ctx) error {
	return handler.chartRowReport(c, handler.reportService.SPByProject, "story points by project report")
}

func (handler *Handler) ReportLOCByUser(c *fiber.Ctx) error {
	return handler.chartRowReport(c, handler.reportService.LOCByUser, "loc by user report")
}

func (handler *Handler) ReportSPByUser(c *fiber.Ctx) error {
	return handler.chartRowReport(c, handler.reportService.SPByUser, "story points by user report")
}

func (handler *Handler) ReportTasksByUser(c *fiber.Ctx) error {
	return handler.chartRowReport(c, handler.reportService.TasksByUser, "tasks by user report")
}

func (handler *Handler) ReportSPAvgByUser(c *fiber.Ctx) error {
	return handler.chartRowReport(c, handler.reportService.SPAvgByUser, "average story points report")
}

// ReportAggregateByUser returns the scored users highest first. The image
// variant of the same computation sorts ascending instead.
func (handler *Handler) ReportAggregateByUser(c *fiber.Ctx) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	rows, err := handler.reportService.AggregateByUserDesc(from, to)
	if err != nil {
		return handler.storageError(c, err, "aggregate report")
	}
	return c.JSON(rows)
}

func (handler *Handler) chartRowReport(
	c *fiber.Ctx,
	query func(models.Date, models.Date) ([]services.ChartRow, error),
	context string,
) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	rows, err := query(from, to)
	if err != nil {
		return handler.storageError(c, err, context)
	}
	return c.JSON(rows)
}
