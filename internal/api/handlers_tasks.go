package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/worklens/internal/models"
	"github.com/terraincognita07/worklens/internal/services"
)

type periodRequest struct {
	Start    models.Date `json:"start"`
	End      models.Date `json:"end"`
	Type     string      `json:"type"`
	TesterID *string     `json:"tester_id"`
}

type reviewRequest struct {
	ReviewerID string      `json:"reviewer_id"`
	ReviewDate models.Date `json:"review_date"`
}

type taskRequest struct {
	Name        string          `json:"name"`
	TypeID      uint            `json:"type_id"`
	IssueURL    string          `json:"issue_url"`
	IssueDate   models.Date     `json:"issue_date"`
	AssigneeID  *string         `json:"assignee_id"`
	ProjectID   *uint           `json:"project_id"`
	ManagerID   *string         `json:"manager_id"`
	ExtraFields map[string]any  `json:"extra_fields"`
	Periods     []periodRequest `json:"periods"`
	Reviews     []reviewRequest `json:"reviews"`
}

func (request taskRequest) toInput() services.TaskInput {
	input := services.TaskInput{
		Name:        request.Name,
		TypeID:      request.TypeID,
		IssueURL:    request.IssueURL,
		IssueDate:   request.IssueDate,
		AssigneeID:  request.AssigneeID,
		ProjectID:   request.ProjectID,
		ManagerID:   request.ManagerID,
		ExtraFields: request.ExtraFields,
		Periods:     make([]services.PeriodInput, 0, len(request.Periods)),
		Reviews:     make([]services.ReviewInput, 0, len(request.Reviews)),
	}
	for _, period := range request.Periods {
		periodType := period.Type
		if periodType == "" {
			periodType = models.PeriodWork
		}
		input.Periods = append(input.Periods, services.PeriodInput{
			Start:    period.Start,
			End:      period.End,
			Type:     periodType,
			TesterID: period.TesterID,
		})
	}
	for _, review := range request.Reviews {
		input.Reviews = append(input.Reviews, services.ReviewInput{
			ReviewerID: review.ReviewerID,
			ReviewDate: review.ReviewDate,
		})
	}
	return input
}

func (handler *Handler) CreateTask(c *fiber.Ctx) error {
	var request taskRequest
	if err := c.BodyParser(&request); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	actor, _ := currentUser(c)
	task, err := handler.taskService.Create(request.toInput(), actor)
	if err != nil {
		return handler.serviceError(c, err, "create task")
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

// ListTasks applies the project visibility filter for non-admin callers:
// tasks without a project are visible to everyone, the rest only through
// the access predicate.
func (handler *Handler) ListTasks(c *fiber.Ctx) error {
	skip, limit := parsePagination(c)
	user, _ := currentUser(c)

	accessibleIDs, err := handler.projectService.AccessibleIDs(user)
	if err != nil {
		return handler.storageError(c, err, "resolve accessible projects")
	}

	tasks, err := handler.taskService.List(accessibleIDs, services.IsAdminUser(user), skip, limit)
	if err != nil {
		return handler.storageError(c, err, "list tasks")
	}
	return c.JSON(tasks)
}

func (handler *Handler) CountTasks(c *fiber.Ctx) error {
	user, _ := currentUser(c)

	accessibleIDs, err := handler.projectService.AccessibleIDs(user)
	if err != nil {
		return handler.storageError(c, err, "resolve accessible projects")
	}

	count, err := handler.taskService.Count(accessibleIDs, services.IsAdminUser(user))
	if err != nil {
		return handler.storageError(c, err, "count tasks")
	}
	return c.JSON(fiber.Map{"count": count})
}

func (handler *Handler) ListTaskTypes(c *fiber.Ctx) error {
	types, err := handler.repositories.TaskTypes.List()
	if err != nil {
		return handler.storageError(c, err, "list task types")
	}
	return c.JSON(types)
}

func (handler *Handler) GetTask(c *fiber.Ctx) error {
	taskID, err := parseUintParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	task, err := handler.taskService.Get(taskID)
	if err != nil {
		if isNotFound(err) {
			return apiError(c, fiber.StatusNotFound, "task not found")
		}
		return handler.storageError(c, err, "get task")
	}
	return c.JSON(task)
}

func (handler *Handler) UpdateTask(c *fiber.Ctx) error {
	taskID, err := parseUintParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	var request taskRequest
	if err := c.BodyParser(&request); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	actor, _ := currentUser(c)
	task, err := handler.taskService.Update(taskID, request.toInput(), actor)
	if err != nil {
		if isNotFound(err) {
			return apiError(c, fiber.StatusNotFound, "task not found")
		}
		return handler.serviceError(c, err, "update task")
	}
	return c.JSON(task)
}

func (handler *Handler) DeleteTask(c *fiber.Ctx) error {
	taskID, err := parseUintParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := handler.taskService.Delete(taskID); err != nil {
		if isNotFound(err) {
			return apiError(c, fiber.StatusNotFound, "task not found")
		}
		return handler.storageError(c, err, "delete task")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) TaskHistory(c *fiber.Ctx) error {
	taskID, err := parseUintParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	records, err := handler.taskService.History(taskID)
	if err != nil {
		if isNotFound(err) {
			return apiError(c, fiber.StatusNotFound, "task not found")
		}
		return handler.storageError(c, err, "load task history")
	}
	return c.JSON(records)
}

func (handler *Handler) ListTasksByProject(c *fiber.Ctx) error {
	project, ok := handler.accessibleProject(c)
	if !ok {
		return nil
	}

	skip, limit := parsePagination(c)
	tasks, err := handler.taskService.ListByProject(project.ID, skip, limit)
	if err != nil {
		return handler.storageError(c, err, "list project tasks")
	}
	return c.JSON(tasks)
}

func (handler *Handler) CountTasksByProject(c *fiber.Ctx) error {
	project, ok := handler.accessibleProject(c)
	if !ok {
		return nil
	}

	count, err := handler.taskService.CountByProject(project.ID)
	if err != nil {
		return handler.storageError(c, err, "count project tasks")
	}
	return c.JSON(fiber.Map{"count": count})
}

// accessibleProject loads the project named by the project_id route
// parameter and enforces the access predicate. When ok is false the error
// response has already been written and the caller must stop.
func (handler *Handler) accessibleProject(c *fiber.Ctx) (models.Project, bool) {
	projectID, err := parseUintParam(c, "project_id")
	if err != nil {
		apiError(c, fiber.StatusBadRequest, err.Error())
		return models.Project{}, false
	}

	project, err := handler.projectService.Get(projectID)
	if err != nil {
		if isNotFound(err) {
			apiError(c, fiber.StatusNotFound, "project not found")
		} else {
			handler.storageError(c, err, "get project")
		}
		return models.Project{}, false
	}

	user, _ := currentUser(c)
	allowed, err := handler.projectService.CanAccess(user, project)
	if err != nil {
		handler.storageError(c, err, "check project access")
		return models.Project{}, false
	}
	if !allowed {
		apiError(c, fiber.StatusForbidden, "not enough permissions")
		return models.Project{}, false
	}

	return project, true
}
