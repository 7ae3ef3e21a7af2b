package api

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/worklens/internal/models"
)

func TestAutocompleteSuggestions(t *testing.T) {
	t.Parallel()

	app, database := newTestApp(t)
	seedAPIUser(t, database, "admin", "Greta Admin", seedUserOptions{role: models.RoleAdmin})
	seedAPIUser(t, database, "ann", "Ann Lee", seedUserOptions{})
	seedAPIUser(t, database, "annette", "Annette Ray", seedUserOptions{})
	adminToken := loginToken(t, app, "admin")
	annToken := loginToken(t, app, "ann")

	type suggestion struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		FullName string `json:"full_name"`
	}

	response, body := doRequest(t, app, jsonRequest(t, fiber.MethodGet, "/api/autocomplete/users?query=ann", annToken, nil))
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("autocomplete users returned %d: %s", response.StatusCode, body)
	}
	users := decodeJSON[[]suggestion](t, body)
	if len(users) != 2 {
		t.Fatalf("user suggestions = %+v, want ann and annette", users)
	}

	// Managers are picked from the admin pool only.
	response, body = doRequest(t, app, jsonRequest(t, fiber.MethodGet, "/api/autocomplete/managers?query=gre", annToken, nil))
	managers := decodeJSON[[]suggestion](t, body)
	if len(managers) != 1 || managers[0].Username != "admin" {
		t.Fatalf("manager suggestions = %+v, want only the admin", managers)
	}
	response, body = doRequest(t, app, jsonRequest(t, fiber.MethodGet, "/api/autocomplete/managers?query=ann", annToken, nil))
	if got := decodeJSON[[]suggestion](t, body); len(got) != 0 {
		t.Fatalf("manager suggestions = %+v, want none for a non-admin match", got)
	}

	// Project suggestions respect the caller's visibility.
	for _, project := range []map[string]any{
		{"name": "CRM Public", "is_public": true},
		{"name": "CRM Private"},
	} {
		response, body = doRequest(t, app, jsonRequest(t, fiber.MethodPost, "/api/projects", adminToken, project))
		if response.StatusCode != fiber.StatusCreated {
			t.Fatalf("create project returned %d: %s", response.StatusCode, body)
		}
	}

	type projectSuggestion struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	}
	response, body = doRequest(t, app, jsonRequest(t, fiber.MethodGet, "/api/autocomplete/projects?query=crm", annToken, nil))
	memberProjects := decodeJSON[[]projectSuggestion](t, body)
	if len(memberProjects) != 1 || memberProjects[0].Name != "CRM Public" {
		t.Fatalf("member project suggestions = %+v, want only the public project", memberProjects)
	}

	response, body = doRequest(t, app, jsonRequest(t, fiber.MethodGet, "/api/autocomplete/projects?query=crm", adminToken, nil))
	if got := decodeJSON[[]projectSuggestion](t, body); len(got) != 2 {
		t.Fatalf("admin project suggestions = %+v, want both projects", got)
	}
}
