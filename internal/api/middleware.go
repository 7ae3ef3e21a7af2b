package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/terraincognita07/worklens/internal/models"
	"github.com/terraincognita07/worklens/internal/services"
)

const contextUserKey = "current_user"

type authClaims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func currentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(contextUserKey).(*models.User)
	return user, ok
}

func (handler *Handler) buildToken(user models.User) (string, error) {
	now := time.Now()
	claims := authClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(handler.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(handler.secretKey)
}

func (handler *Handler) authenticateRequest(c *fiber.Ctx) (*models.User, error) {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	rawToken, found := strings.CutPrefix(header, "Bearer ")
	if !found || strings.TrimSpace(rawToken) == "" {
		return nil, errors.New("missing bearer token")
	}

	claims := &authClaims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(rawToken), claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return handler.secretKey, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Time.Before(time.Now()) {
		return nil, errors.New("token expired")
	}

	user, err := handler.authService.FindByID(claims.UserID)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	user, err := handler.authenticateRequest(c)
	if err != nil {
		c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	c.Locals(contextUserKey, user)
	return c.Next()
}

func (handler *Handler) AdminOnly(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok || !services.IsAdminUser(user) {
		return apiError(c, fiber.StatusForbidden, "admin role required")
	}
	return c.Next()
}

// ReportAccessRequired admits admins, moderators and users carrying the
// report-viewing flag.
func (handler *Handler) ReportAccessRequired(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok || !services.CanViewReports(user) {
		return apiError(c, fiber.StatusForbidden, "report access required")
	}
	return c.Next()
}

// TaskLoadRequired gates task mutation behind the admin role or the
// task-loading flag.
func (handler *Handler) TaskLoadRequired(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok || !services.CanLoadTasks(user) {
		return apiError(c, fiber.StatusForbidden, "task loading not permitted")
	}
	return c.Next()
}
