package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/terraincognita07/worklens/internal/db"
	"github.com/terraincognita07/worklens/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "worklens.db"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	handler := NewHandler(database, []byte("test-secret"), 30*time.Minute)
	app := fiber.New()
	RegisterRoutes(app, handler)
	return app, database
}

func openSecondaryDatabase(t *testing.T) (*gorm.DB, error) {
	t.Helper()
	return db.OpenSQLite(filepath.Join(t.TempDir(), "worklens-secondary.db"))
}

type seedUserOptions struct {
	role           string
	canLoadTasks   bool
	canViewReports bool
}

func seedAPIUser(t *testing.T, database *gorm.DB, username string, fullName string, options seedUserOptions) models.User {
	t.Helper()

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(username+"-pass"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	role := options.role
	if role == "" {
		role = models.RoleUser
	}
	user := models.User{
		ID:             uuid.NewString(),
		Username:       username,
		PasswordHash:   string(passwordHash),
		FullName:       fullName,
		Role:           role,
		CanLoadTasks:   options.canLoadTasks,
		CanViewReports: options.canViewReports,
		Color:          models.DefaultUserColor,
	}
	if err := database.Create(&user).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return user
}

func loginToken(t *testing.T, app *fiber.App, username string) string {
	t.Helper()

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", username+"-pass")

	request := httptest.NewRequest(fiber.MethodPost, "/api/auth/token", strings.NewReader(form.Encode()))
	request.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("token request: %v", err)
	}
	defer response.Body.Close()
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("token request for %s returned %d", username, response.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.NewDecoder(response.Body).Decode(&body); err != nil {
		t.Fatalf("decode token response: %v", err)
	}
	if body.TokenType != "bearer" || body.AccessToken == "" {
		t.Fatalf("unexpected token response: %+v", body)
	}
	return body.AccessToken
}

func jsonRequest(t *testing.T, method string, target string, token string, payload any) *http.Request {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("encode request body: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, target, body)
	if payload != nil {
		request.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		request.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	return request
}

func doRequest(t *testing.T, app *fiber.App, request *http.Request) (*http.Response, []byte) {
	t.Helper()

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", request.Method, request.URL, err)
	}
	body, err := io.ReadAll(response.Body)
	response.Body.Close()
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return response, body
}

func decodeJSON[T any](t *testing.T, body []byte) T {
	t.Helper()

	var value T
	if err := json.Unmarshal(body, &value); err != nil {
		t.Fatalf("decode %s: %v", string(body), err)
	}
	return value
}

func errorMessage(t *testing.T, body []byte) string {
	t.Helper()
	return decodeJSON[map[string]string](t, body)["error"]
}
