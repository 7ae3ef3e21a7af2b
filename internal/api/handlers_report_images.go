package api

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/worklens/internal/charts"
	"github.com/terraincognita07/worklens/internal/models"
	"github.com/terraincognita07/worklens/internal/services"
)

// Segment colors of the stacked aggregate bars, one per metric.
const (
	aggregateTasksColor = "#1f77b4"
	aggregateLOCColor   = "#ff7f0e"
	aggregateSPSumColor = "#2ca02c"
	aggregateSPAvgColor = "#d62728"
)

func (handler *Handler) ImagePieTasksByType(c *fiber.Ctx) error {
	return handler.pieImage(c, handler.reportService.TasksByType, "Tasks by type")
}

func (handler *Handler) ImagePieReviewers(c *fiber.Ctx) error {
	return handler.pieImage(c, handler.reportService.Reviewers, "Reviews by reviewer")
}

func (handler *Handler) ImagePieTesters(c *fiber.Ctx) error {
	return handler.pieImage(c, handler.reportService.Testers, "Test periods by tester")
}

func (handler *Handler) ImagePieSPByProject(c *fiber.Ctx) error {
	return handler.pieImage(c, handler.reportService.SPByProject, "Story points by project")
}

func (handler *Handler) ImagePieLOCByUser(c *fiber.Ctx) error {
	return handler.pieImage(c, handler.reportService.LOCByUser, "Lines of code by user")
}

func (handler *Handler) ImagePieSPByUser(c *fiber.Ctx) error {
	return handler.pieImage(c, handler.reportService.SPByUser, "Story points by user")
}

func (handler *Handler) ImagePieTasksByUser(c *fiber.Ctx) error {
	return handler.pieImage(c, handler.reportService.TasksByUser, "Tasks by user")
}

// ImageBarSPAvgByUser renders vertical bars of average story points,
// highest first.
func (handler *Handler) ImageBarSPAvgByUser(c *fiber.Ctx) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	rows, err := handler.reportService.SPAvgByUser(from, to)
	if err != nil {
		return handler.storageError(c, err, "average story points image")
	}

	slices := chartRowsToSlices(rows)
	sort.Slice(slices, func(i, j int) bool {
		if slices[i].Value == slices[j].Value {
			return slices[i].Label < slices[j].Label
		}
		return slices[i].Value > slices[j].Value
	})

	image, err := charts.Bar(rangeTitle("Average story points by user", from, to), slices)
	if err != nil {
		return handler.storageError(c, err, "render average story points image")
	}
	return sendPNG(c, image)
}

// ImageBarAggregateByUser renders the aggregate score as one horizontal
// stacked bar per user, lowest score first. The four segments are the
// weighted normalized metrics, so segment widths sum to the score.
func (handler *Handler) ImageBarAggregateByUser(c *fiber.Ctx) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	rows, err := handler.reportService.AggregateByUserAsc(from, to)
	if err != nil {
		return handler.storageError(c, err, "aggregate report image")
	}

	stacked := make([]charts.StackedRow, 0, len(rows))
	for _, row := range rows {
		stacked = append(stacked, charts.StackedRow{
			Label: fmt.Sprintf("%s (%.3f)", row.User, row.Score),
			Segments: []charts.Slice{
				{Label: "tasks", Value: 0.25 * row.NormalizedTasks, Color: aggregateTasksColor},
				{Label: "loc", Value: 0.25 * row.NormalizedLOC, Color: aggregateLOCColor},
				{Label: "sp sum", Value: 0.25 * row.NormalizedSPSum, Color: aggregateSPSumColor},
				{Label: "sp avg", Value: 0.25 * row.NormalizedSPAvg, Color: aggregateSPAvgColor},
			},
		})
	}

	image, err := charts.StackedHorizontalBar(rangeTitle("Aggregate score by user", from, to), stacked)
	if err != nil {
		return handler.storageError(c, err, "render aggregate report image")
	}
	return sendPNG(c, image)
}

// ImageGantt renders one horizontal span per task period of the requested
// user over the range.
func (handler *Handler) ImageGantt(c *fiber.Ctx) error {
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
		return handler.storageError(c, err, "build gantt image")
	}

	bars := make([]charts.RangeBar, 0, len(rows))
	title := rangeTitle("Task schedule", from, to)
	if len(rows) > 0 && rows[0].User.FullName != "" {
		title = rangeTitle(rows[0].User.FullName, from, to)
	}
	for _, row := range rows {
		for _, period := range row.Periods {
			bars = append(bars, charts.RangeBar{
				Label: row.Name,
				Start: period.Start.Time,
				End:   period.End.Time,
			})
		}
	}

	image, err := charts.Gantt(title, bars)
	if err != nil {
		return handler.storageError(c, err, "render gantt image")
	}
	return sendPNG(c, image)
}

func (handler *Handler) pieImage(
	c *fiber.Ctx,
	query func(models.Date, models.Date) ([]services.ChartRow, error),
	title string,
) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	rows, err := query(from, to)
	if err != nil {
		return handler.storageError(c, err, "build "+title+" image")
	}

	image, err := charts.Pie(rangeTitle(title, from, to), chartRowsToSlices(rows))
	if err != nil {
		return handler.storageError(c, err, "render "+title+" image")
	}
	return sendPNG(c, image)
}

func chartRowsToSlices(rows []services.ChartRow) []charts.Slice {
	slices := make([]charts.Slice, 0, len(rows))
	for _, row := range rows {
		slices = append(slices, charts.Slice{Label: row.Label, Value: row.Value, Color: row.Color})
	}
	return slices
}

func rangeTitle(title string, from models.Date, to models.Date) string {
	return fmt.Sprintf("%s (%s - %s)", title, from, to)
}
