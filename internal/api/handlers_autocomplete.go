package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/worklens/internal/models"
)

const autocompleteLimit = 10

type userSuggestion struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

type projectSuggestion struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func (handler *Handler) AutocompleteUsers(c *fiber.Ctx) error {
	users, err := handler.repositories.Users.SearchByText(c.Query("query"), autocompleteLimit)
	if err != nil {
		return handler.storageError(c, err, "autocomplete users")
	}
	return c.JSON(userSuggestions(users))
}

// AutocompleteManagers suggests administrators only, since managers are
// picked from the admin pool.
func (handler *Handler) AutocompleteManagers(c *fiber.Ctx) error {
	admins, err := handler.repositories.Users.SearchAdminsByText(c.Query("query"), autocompleteLimit)
	if err != nil {
		return handler.storageError(c, err, "autocomplete managers")
	}
	return c.JSON(userSuggestions(admins))
}

// AutocompleteProjects matches the query against the projects the caller
// may actually see.
func (handler *Handler) AutocompleteProjects(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	projects, err := handler.projectService.ListFor(user)
	if err != nil {
		return handler.storageError(c, err, "autocomplete projects")
	}

	query := strings.ToLower(strings.TrimSpace(c.Query("query")))
	suggestions := make([]projectSuggestion, 0, autocompleteLimit)
	for _, project := range projects {
		if query != "" && !strings.Contains(strings.ToLower(project.Name), query) {
			continue
		}
		suggestions = append(suggestions, projectSuggestion{ID: project.ID, Name: project.Name})
		if len(suggestions) == autocompleteLimit {
			break
		}
	}
	return c.JSON(suggestions)
}

func userSuggestions(users []models.User) []userSuggestion {
	suggestions := make([]userSuggestion, 0, len(users))
	for _, user := range users {
		suggestions = append(suggestions, userSuggestion{
			ID:       user.ID,
			Username: user.Username,
			FullName: user.FullName,
		})
	}
	return suggestions
}
