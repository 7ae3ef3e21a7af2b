package services

import (
	"errors"
	"testing"

	"github.com/terraincognita07/worklens/internal/db"
	"github.com/terraincognita07/worklens/internal/models"
	"gorm.io/gorm"
)

func newProjectServiceForTest(database *gorm.DB) *ProjectService {
	return NewProjectService(db.NewProjectRepository(database))
}

func TestProjectServiceCreateRejectsDuplicateName(t *testing.T) {
	t.Parallel()

	database := openServiceTestDatabase(t)
	service := newProjectServiceForTest(database)

	if _, err := service.Create(CreateProjectInput{Name: "CRM"}); err != nil {
		t.Fatalf("create project: %v", err)
	}
	if _, err := service.Create(CreateProjectInput{Name: "CRM"}); !errors.Is(err, ErrProjectNameTaken) {
		t.Fatalf("expected ErrProjectNameTaken, got %v", err)
	}

	project, err := service.Create(CreateProjectInput{Name: "Billing"})
	if err != nil {
		t.Fatalf("create second project: %v", err)
	}
	if project.Color != models.DefaultProjectColor {
		t.Fatalf("default color = %q, want %q", project.Color, models.DefaultProjectColor)
	}
}

func TestProjectServiceAccessPredicate(t *testing.T) {
	t.Parallel()

	database := openServiceTestDatabase(t)
	service := newProjectServiceForTest(database)
	admin := seedServiceUser(t, database, "admin", "Admin User", models.RoleAdmin)
	member := seedServiceUser(t, database, "member", "Member", models.RoleUser)
	outsider := seedServiceUser(t, database, "outsider", "Outsider", models.RoleUser)
	public := seedServiceProject(t, database, "Public", true)
	private := seedServiceProject(t, database, "Private", false)

	if err := service.Grant(private.ID, member.ID, &admin); err != nil {
		t.Fatalf("grant access: %v", err)
	}
	// Granting twice is a no-op, not an error.
	if err := service.Grant(private.ID, member.ID, &admin); err != nil {
		t.Fatalf("repeated grant: %v", err)
	}

	tests := []struct {
		name    string
		user    *models.User
		project models.Project
		want    bool
	}{
		{"admin sees private", &admin, private, true},
		{"anyone sees public", &outsider, public, true},
		{"grant opens private", &member, private, true},
		{"no grant keeps private closed", &outsider, private, false},
		{"nil user sees public only", nil, public, true},
		{"nil user blocked from private", nil, private, false},
	}
	for _, test := range tests {
		allowed, err := service.CanAccess(test.user, test.project)
		if err != nil {
			t.Fatalf("%s: %v", test.name, err)
		}
		if allowed != test.want {
			t.Fatalf("%s: CanAccess = %v, want %v", test.name, allowed, test.want)
		}
	}

	// Revoking the grant closes the private project again; the public one
	// stays open.
	if err := service.Revoke(private.ID, member.ID); err != nil {
		t.Fatalf("revoke access: %v", err)
	}
	allowed, err := service.CanAccess(&member, private)
	if err != nil {
		t.Fatalf("recheck access: %v", err)
	}
	if allowed {
		t.Fatal("expected access to be closed after revoke")
	}
	allowed, err = service.CanAccess(&member, public)
	if err != nil {
		t.Fatalf("recheck public access: %v", err)
	}
	if !allowed {
		t.Fatal("public project must stay accessible after revoke")
	}
}

func TestProjectServiceListingsFollowVisibility(t *testing.T) {
	t.Parallel()

	database := openServiceTestDatabase(t)
	service := newProjectServiceForTest(database)
	admin := seedServiceUser(t, database, "admin", "Admin User", models.RoleAdmin)
	member := seedServiceUser(t, database, "member", "Member", models.RoleUser)
	public := seedServiceProject(t, database, "Public", true)
	private := seedServiceProject(t, database, "Private", false)
	seedServiceProject(t, database, "Hidden", false)

	if err := service.Grant(private.ID, member.ID, &admin); err != nil {
		t.Fatalf("grant access: %v", err)
	}

	all, err := service.ListFor(&admin)
	if err != nil {
		t.Fatalf("admin listing: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("admin sees %d projects, want 3", len(all))
	}

	visible, err := service.ListFor(&member)
	if err != nil {
		t.Fatalf("member listing: %v", err)
	}
	names := make(map[string]bool, len(visible))
	for _, project := range visible {
		names[project.Name] = true
	}
	if len(visible) != 2 || !names["Public"] || !names["Private"] {
		t.Fatalf("member sees %v, want Public and Private", names)
	}

	adminIDs, err := service.AccessibleIDs(&admin)
	if err != nil {
		t.Fatalf("admin accessible ids: %v", err)
	}
	if adminIDs != nil {
		t.Fatalf("admin accessible ids = %v, want nil (unrestricted)", adminIDs)
	}

	memberIDs, err := service.AccessibleIDs(&member)
	if err != nil {
		t.Fatalf("member accessible ids: %v", err)
	}
	idSet := make(map[uint]bool, len(memberIDs))
	for _, id := range memberIDs {
		idSet[id] = true
	}
	if len(memberIDs) != 2 || !idSet[public.ID] || !idSet[private.ID] {
		t.Fatalf("member accessible ids = %v, want public and granted private", memberIDs)
	}

	users, err := service.UsersWithAccess(private.ID)
	if err != nil {
		t.Fatalf("users with access: %v", err)
	}
	if len(users) != 1 || users[0].Username != "member" {
		t.Fatalf("users with access = %+v, want only member", users)
	}
}
