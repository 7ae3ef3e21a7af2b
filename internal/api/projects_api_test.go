package api

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/worklens/internal/models"
)

func TestProjectLifecycleAndVisibility(t *testing.T) {
	t.Parallel()

	app, database := newTestApp(t)
	seedAPIUser(t, database, "admin", "Admin User", seedUserOptions{role: models.RoleAdmin})
	member := seedAPIUser(t, database, "member", "Member", seedUserOptions{})
	adminToken := loginToken(t, app, "admin")
	memberToken := loginToken(t, app, "member")

	response, body := doRequest(t, app, jsonRequest(t, fiber.MethodPost, "/api/projects", adminToken, map[string]any{
		"name":      "Public CRM",
		"is_public": true,
	}))
	if response.StatusCode != fiber.StatusCreated {
		t.Fatalf("create public project returned %d: %s", response.StatusCode, body)
	}
	public := decodeJSON[models.Project](t, body)

	response, body = doRequest(t, app, jsonRequest(t, fiber.MethodPost, "/api/projects", adminToken, map[string]any{
		"name": "Private Billing",
	}))
	if response.StatusCode != fiber.StatusCreated {
		t.Fatalf("create private project returned %d: %s", response.StatusCode, body)
	}
	private := decodeJSON[models.Project](t, body)

	response, body = doRequest(t, app, jsonRequest(t, fiber.MethodPost, "/api/projects", adminToken, map[string]any{
		"name": "Public CRM",
	}))
	if response.StatusCode != fiber.StatusBadRequest || errorMessage(t, body) != "project name already exists" {
		t.Fatalf("duplicate project returned %d: %s", response.StatusCode, body)
	}

	// Member sees only the public project.
	response, body = doRequest(t, app, jsonRequest(t, fiber.MethodGet, "/api/projects", memberToken, nil))
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("member listing returned %d", response.StatusCode)
	}
	visible := decodeJSON[[]models.Project](t, body)
	if len(visible) != 1 || visible[0].ID != public.ID {
		t.Fatalf("member sees %+v, want only the public project", visible)
	}

	privatePath := fmt.Sprintf("/api/projects/%d", private.ID)
	response, body = doRequest(t, app, jsonRequest(t, fiber.MethodGet, privatePath, memberToken, nil))
	if response.StatusCode != fiber.StatusForbidden || errorMessage(t, body) != "not enough permissions" {
		t.Fatalf("private project returned %d: %s", response.StatusCode, body)
	}

	// Absent beats forbidden: a missing id is 404 even for non-admins.
	response, _ = doRequest(t, app, jsonRequest(t, fiber.MethodGet, "/api/projects/9999", memberToken, nil))
	if response.StatusCode != fiber.StatusNotFound {
		t.Fatalf("missing project returned %d, want 404", response.StatusCode)
	}

	// Granting access opens the private project, revoking closes it.
	grantPath := fmt.Sprintf("/api/projects/%d/access?user_id=%s", private.ID, member.ID)
	response, body = doRequest(t, app, jsonRequest(t, fiber.MethodPost, grantPath, adminToken, nil))
	if response.StatusCode != fiber.StatusCreated {
		t.Fatalf("grant returned %d: %s", response.StatusCode, body)
	}
	granted := decodeJSON[models.User](t, body)
	if granted.ID != member.ID {
		t.Fatalf("grant returned user %s, want %s", granted.ID, member.ID)
	}

	response, _ = doRequest(t, app, jsonRequest(t, fiber.MethodGet, privatePath, memberToken, nil))
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("granted access returned %d", response.StatusCode)
	}

	usersPath := fmt.Sprintf("/api/projects/%d/users", private.ID)
	response, body = doRequest(t, app, jsonRequest(t, fiber.MethodGet, usersPath, adminToken, nil))
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("project users returned %d", response.StatusCode)
	}
	withAccess := decodeJSON[[]models.User](t, body)
	if len(withAccess) != 1 || withAccess[0].ID != member.ID {
		t.Fatalf("project users = %+v, want only the member", withAccess)
	}

	revokePath := fmt.Sprintf("/api/projects/%d/access/%s", private.ID, member.ID)
	response, _ = doRequest(t, app, jsonRequest(t, fiber.MethodDelete, revokePath, adminToken, nil))
	if response.StatusCode != fiber.StatusNoContent {
		t.Fatalf("revoke returned %d", response.StatusCode)
	}

	response, _ = doRequest(t, app, jsonRequest(t, fiber.MethodGet, privatePath, memberToken, nil))
	if response.StatusCode != fiber.StatusForbidden {
		t.Fatalf("revoked access returned %d, want 403", response.StatusCode)
	}

	// Update and delete stay admin-only.
	response, _ = doRequest(t, app, jsonRequest(t, fiber.MethodPut, privatePath, memberToken, map[string]any{"name": "x"}))
	if response.StatusCode != fiber.StatusForbidden {
		t.Fatalf("member update returned %d, want 403", response.StatusCode)
	}

	response, body = doRequest(t, app, jsonRequest(t, fiber.MethodPut, privatePath, adminToken, map[string]any{
		"description": "billing backend",
	}))
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("admin update returned %d: %s", response.StatusCode, body)
	}
	updated := decodeJSON[models.Project](t, body)
	if updated.Description != "billing backend" || updated.Name != "Private Billing" {
		t.Fatalf("partial update lost fields: %+v", updated)
	}

	response, _ = doRequest(t, app, jsonRequest(t, fiber.MethodDelete, privatePath, adminToken, nil))
	if response.StatusCode != fiber.StatusNoContent {
		t.Fatalf("delete project returned %d", response.StatusCode)
	}
	response, _ = doRequest(t, app, jsonRequest(t, fiber.MethodGet, privatePath, adminToken, nil))
	if response.StatusCode != fiber.StatusNotFound {
		t.Fatalf("deleted project lookup returned %d", response.StatusCode)
	}
}
