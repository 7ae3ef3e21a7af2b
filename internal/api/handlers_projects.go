package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/worklens/internal/services"
)

type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
	Color       string `json:"color"`
}

type updateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsPublic    *bool   `json:"is_public"`
	Color       *string `json:"color"`
}

func (handler *Handler) CreateProject(c *fiber.Ctx) error {
	var request createProjectRequest
	if err := c.BodyParser(&request); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	project, err := handler.projectService.Create(services.CreateProjectInput{
		Name:        request.Name,
		Description: request.Description,
		IsPublic:    request.IsPublic,
		Color:       request.Color,
	})
	if err != nil {
		if errors.Is(err, services.ErrProjectNameTaken) {
			return apiError(c, fiber.StatusBadRequest, "project name already exists")
		}
		return handler.serviceError(c, err, "create project")
	}

	return c.Status(fiber.StatusCreated).JSON(project)
}

func (handler *Handler) ListProjects(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	projects, err := handler.projectService.ListFor(user)
	if err != nil {
		return handler.storageError(c, err, "list projects")
	}
	return c.JSON(projects)
}

// GetProject answers 404 for a missing project before any permission
// check, so callers cannot probe private project ids.
func (handler *Handler) GetProject(c *fiber.Ctx) error {
	projectID, err := parseUintParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	project, err := handler.projectService.Get(projectID)
	if err != nil {
		if isNotFound(err) {
			return apiError(c, fiber.StatusNotFound, "project not found")
		}
		return handler.storageError(c, err, "get project")
	}

	user, _ := currentUser(c)
	allowed, err := handler.projectService.CanAccess(user, project)
	if err != nil {
		return handler.storageError(c, err, "check project access")
	}
	if !allowed {
		return apiError(c, fiber.StatusForbidden, "not enough permissions")
	}

	return c.JSON(project)
}

func (handler *Handler) UpdateProject(c *fiber.Ctx) error {
	projectID, err := parseUintParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	var request updateProjectRequest
	if err := c.BodyParser(&request); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	project, err := handler.projectService.Update(projectID, services.UpdateProjectInput{
		Name:        request.Name,
		Description: request.Description,
		IsPublic:    request.IsPublic,
		Color:       request.Color,
	})
	if err != nil {
		if isNotFound(err) {
			return apiError(c, fiber.StatusNotFound, "project not found")
		}
		if errors.Is(err, services.ErrProjectNameTaken) {
			return apiError(c, fiber.StatusBadRequest, "project name already exists")
		}
		return handler.serviceError(c, err, "update project")
	}

	return c.JSON(project)
}

func (handler *Handler) DeleteProject(c *fiber.Ctx) error {
	projectID, err := parseUintParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := handler.projectService.Delete(projectID); err != nil {
		if isNotFound(err) {
			return apiError(c, fiber.StatusNotFound, "project not found")
		}
		return handler.storageError(c, err, "delete project")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GrantProjectAccess records an explicit grant for the user named by the
// user_id query parameter. Granting twice is a no-op.
func (handler *Handler) GrantProjectAccess(c *fiber.Ctx) error {
	projectID, err := parseUintParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	userID := strings.TrimSpace(c.Query("user_id"))
	if userID == "" {
		return apiError(c, fiber.StatusBadRequest, "user_id is required")
	}

	if _, err := handler.projectService.Get(projectID); err != nil {
		if isNotFound(err) {
			return apiError(c, fiber.StatusNotFound, "project not found")
		}
		return handler.storageError(c, err, "get project")
	}

	user, err := handler.userService.Get(userID)
	if err != nil {
		if isNotFound(err) {
			return apiError(c, fiber.StatusNotFound, "user not found")
		}
		return handler.storageError(c, err, "get user")
	}

	actor, _ := currentUser(c)
	if err := handler.projectService.Grant(projectID, userID, actor); err != nil {
		return handler.storageError(c, err, "grant project access")
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// RevokeProjectAccess removes the explicit grant only. A public project
// stays accessible afterwards.
func (handler *Handler) RevokeProjectAccess(c *fiber.Ctx) error {
	projectID, err := parseUintParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	if _, err := handler.projectService.Get(projectID); err != nil {
		if isNotFound(err) {
			return apiError(c, fiber.StatusNotFound, "project not found")
		}
		return handler.storageError(c, err, "get project")
	}

	if err := handler.projectService.Revoke(projectID, c.Params("user_id")); err != nil {
		return handler.storageError(c, err, "revoke project access")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) ListProjectUsers(c *fiber.Ctx) error {
	projectID, err := parseUintParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	if _, err := handler.projectService.Get(projectID); err != nil {
		if isNotFound(err) {
			return apiError(c, fiber.StatusNotFound, "project not found")
		}
		return handler.storageError(c, err, "get project")
	}

	users, err := handler.projectService.UsersWithAccess(projectID)
	if err != nil {
		return handler.storageError(c, err, "list project users")
	}
	return c.JSON(users)
}
