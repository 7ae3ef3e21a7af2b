package services

import (
	"testing"

	"github.com/terraincognita07/worklens/internal/models"
)

func TestCapabilityPredicates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		user            *models.User
		wantAdmin       bool
		wantViewReports bool
		wantLoadTasks   bool
	}{
		{
			name: "nil user has nothing",
		},
		{
			name:            "admin has everything",
			user:            &models.User{Role: models.RoleAdmin},
			wantAdmin:       true,
			wantViewReports: true,
			wantLoadTasks:   true,
		},
		{
			name:            "moderator views reports but cannot load tasks",
			user:            &models.User{Role: models.RoleModerator},
			wantViewReports: true,
		},
		{
			name: "plain user without flags",
			user: &models.User{Role: models.RoleUser},
		},
		{
			name:            "user with report flag",
			user:            &models.User{Role: models.RoleUser, CanViewReports: true},
			wantViewReports: true,
		},
		{
			name:          "user with load flag",
			user:          &models.User{Role: models.RoleUser, CanLoadTasks: true},
			wantLoadTasks: true,
		},
		{
			name:            "moderator load flag combines",
			user:            &models.User{Role: models.RoleModerator, CanLoadTasks: true},
			wantViewReports: true,
			wantLoadTasks:   true,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			if got := IsAdminUser(test.user); got != test.wantAdmin {
				t.Fatalf("IsAdminUser = %v, want %v", got, test.wantAdmin)
			}
			if got := CanViewReports(test.user); got != test.wantViewReports {
				t.Fatalf("CanViewReports = %v, want %v", got, test.wantViewReports)
			}
			if got := CanLoadTasks(test.user); got != test.wantLoadTasks {
				t.Fatalf("CanLoadTasks = %v, want %v", got, test.wantLoadTasks)
			}
		})
	}
}
