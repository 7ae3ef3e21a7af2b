package services

import (
	"errors"
	"testing"
	"time"

	"github.com/terraincognita07/worklens/internal/models"
)

func TestTaskServiceCreateRejectsUnknownReferences(t *testing.T) {
	t.Parallel()

	database := openServiceTestDatabase(t)
	service := newTaskServiceForTest(database)
	admin := seedServiceUser(t, database, "admin", "Admin User", models.RoleAdmin)
	typeID := developmentTypeID(t, database)

	ghostUser := "ghost-user"
	ghostProject := uint(999)

	tests := []struct {
		name  string
		input TaskInput
		want  string
	}{
		{
			name:  "missing name",
			input: TaskInput{TypeID: typeID, IssueDate: models.NewDate(2024, time.March, 1)},
			want:  "task name is required",
		},
		{
			name:  "missing issue date",
			input: TaskInput{Name: "t", TypeID: typeID},
			want:  "issue date is required",
		},
		{
			name: "unknown assignee",
			input: TaskInput{
				Name: "t", TypeID: typeID,
				IssueDate:  models.NewDate(2024, time.March, 1),
				AssigneeID: &ghostUser,
			},
			want: "assignee with id ghost-user not found",
		},
		{
			name: "unknown project",
			input: TaskInput{
				Name: "t", TypeID: typeID,
				IssueDate: models.NewDate(2024, time.March, 1),
				ProjectID: &ghostProject,
			},
			want: "project with id 999 not found",
		},
		{
			name: "unknown task type",
			input: TaskInput{
				Name: "t", TypeID: 999,
				IssueDate: models.NewDate(2024, time.March, 1),
			},
			want: "task type with id 999 not found",
		},
		{
			name: "unknown reviewer",
			input: TaskInput{
				Name: "t", TypeID: typeID,
				IssueDate: models.NewDate(2024, time.March, 1),
				Reviews:   []ReviewInput{{ReviewerID: ghostUser, ReviewDate: models.NewDate(2024, time.March, 2)}},
			},
			want: "reviewer with id ghost-user not found",
		},
		{
			name: "invalid period type",
			input: TaskInput{
				Name: "t", TypeID: typeID,
				IssueDate: models.NewDate(2024, time.March, 1),
				Periods: []PeriodInput{{
					Start: models.NewDate(2024, time.March, 1),
					End:   models.NewDate(2024, time.March, 2),
					Type:  "vacation",
				}},
			},
			want: `period type "vacation" is not one of work, test`,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			_, err := service.Create(test.input, &admin)

			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if validationErr.Message != test.want {
				t.Fatalf("error = %q, want %q", validationErr.Message, test.want)
			}
		})
	}

	var count int64
	if err := database.Model(&models.Task{}).Count(&count).Error; err != nil {
		t.Fatalf("count tasks: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no tasks persisted, found %d", count)
	}
}

func TestTaskServiceCreatePersistsDependentsAndHistory(t *testing.T) {
	t.Parallel()

	database := openServiceTestDatabase(t)
	service := newTaskServiceForTest(database)
	admin := seedServiceUser(t, database, "admin", "Admin User", models.RoleAdmin)
	assignee := seedServiceUser(t, database, "ann", "Ann Lee", models.RoleUser)
	project := seedServiceProject(t, database, "CRM", false)
	typeID := developmentTypeID(t, database)

	task, err := service.Create(TaskInput{
		Name:       "Build billing export",
		TypeID:     typeID,
		IssueDate:  models.NewDate(2024, time.March, 1),
		AssigneeID: &assignee.ID,
		ProjectID:  &project.ID,
		ExtraFields: map[string]any{
			models.ExtraFieldStoryPoints: 3.0,
		},
		Periods: []PeriodInput{
			{Start: models.NewDate(2024, time.March, 2), End: models.NewDate(2024, time.March, 6), Type: models.PeriodWork},
			{Start: models.NewDate(2024, time.March, 7), End: models.NewDate(2024, time.March, 7), Type: models.PeriodTest, TesterID: &admin.ID},
		},
		Reviews: []ReviewInput{
			{ReviewerID: admin.ID, ReviewDate: models.NewDate(2024, time.March, 8)},
		},
	}, &admin)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.ID == 0 {
		t.Fatal("expected a persisted task id")
	}

	stored, err := service.Get(task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if len(stored.Periods) != 2 || len(stored.Reviews) != 1 {
		t.Fatalf("stored dependents = %d periods, %d reviews; want 2, 1", len(stored.Periods), len(stored.Reviews))
	}

	records, err := service.History(task.ID)
	if err != nil {
		t.Fatalf("load history: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one history record after create, got %d", len(records))
	}
	if records[0].Field != models.HistoryFieldCreate || records[0].New != "Build billing export" {
		t.Fatalf("unexpected create record: %+v", records[0])
	}
	if records[0].ChangedBy != "admin" {
		t.Fatalf("create record author = %q, want admin", records[0].ChangedBy)
	}
}

func TestTaskServiceIdenticalUpdateAppendsNoHistory(t *testing.T) {
	t.Parallel()

	database := openServiceTestDatabase(t)
	service := newTaskServiceForTest(database)
	admin := seedServiceUser(t, database, "admin", "Admin User", models.RoleAdmin)
	typeID := developmentTypeID(t, database)

	input := TaskInput{
		Name:      "Rotate signing keys",
		TypeID:    typeID,
		IssueDate: models.NewDate(2024, time.April, 1),
		Periods: []PeriodInput{
			{Start: models.NewDate(2024, time.April, 2), End: models.NewDate(2024, time.April, 3), Type: models.PeriodWork},
		},
	}

	task, err := service.Create(input, &admin)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if _, err := service.Update(task.ID, input, &admin); err != nil {
		t.Fatalf("identical update: %v", err)
	}

	records, err := service.History(task.ID)
	if err != nil {
		t.Fatalf("load history: %v", err)
	}
	if len(records) != 1 || records[0].Field != models.HistoryFieldCreate {
		t.Fatalf("expected only the create record, got %+v", records)
	}
}

func TestTaskServiceUpdateRecordsUnpackedHistory(t *testing.T) {
	t.Parallel()

	database := openServiceTestDatabase(t)
	service := newTaskServiceForTest(database)
	admin := seedServiceUser(t, database, "admin", "Admin User", models.RoleAdmin)
	typeID := developmentTypeID(t, database)

	task, err := service.Create(TaskInput{
		Name:      "Initial name",
		TypeID:    typeID,
		IssueDate: models.NewDate(2024, time.April, 1),
	}, &admin)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	_, err = service.Update(task.ID, TaskInput{
		Name:      "Renamed task",
		TypeID:    typeID,
		IssueDate: models.NewDate(2024, time.April, 1),
		Periods: []PeriodInput{
			{Start: models.NewDate(2024, time.April, 2), End: models.NewDate(2024, time.April, 4), Type: models.PeriodWork},
		},
	}, &admin)
	if err != nil {
		t.Fatalf("update task: %v", err)
	}

	records, err := service.History(task.ID)
	if err != nil {
		t.Fatalf("load history: %v", err)
	}
	// Newest entry first: the two changes of the update share one entry,
	// then the create record.
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %+v", records)
	}
	if records[0].Field != "Name" || records[0].Old != "Initial name" || records[0].New != "Renamed task" {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	if records[1].Field != "Periods count" || records[1].Old != "0" || records[1].New != "1" {
		t.Fatalf("unexpected second record: %+v", records[1])
	}
	if records[0].EntryID != records[1].EntryID {
		t.Fatal("update changes should share one history entry")
	}
	if records[2].Field != models.HistoryFieldCreate {
		t.Fatalf("expected create record last, got %+v", records[2])
	}

	stored, err := service.Get(task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if len(stored.Periods) != 1 {
		t.Fatalf("expected replaced period set of 1, got %d", len(stored.Periods))
	}
}

func TestTaskServiceDeleteRemovesDependents(t *testing.T) {
	t.Parallel()

	database := openServiceTestDatabase(t)
	service := newTaskServiceForTest(database)
	admin := seedServiceUser(t, database, "admin", "Admin User", models.RoleAdmin)
	typeID := developmentTypeID(t, database)

	task, err := service.Create(TaskInput{
		Name:      "Short lived",
		TypeID:    typeID,
		IssueDate: models.NewDate(2024, time.May, 1),
		Periods: []PeriodInput{
			{Start: models.NewDate(2024, time.May, 2), End: models.NewDate(2024, time.May, 3), Type: models.PeriodWork},
		},
		Reviews: []ReviewInput{
			{ReviewerID: admin.ID, ReviewDate: models.NewDate(2024, time.May, 4)},
		},
	}, &admin)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if err := service.Delete(task.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}

	for _, table := range []string{"tasks", "periods", "reviews", "task_history"} {
		var count int64
		if err := database.Table(table).Count(&count).Error; err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if count != 0 {
			t.Fatalf("expected %s to be empty after delete, found %d rows", table, count)
		}
	}
}

func TestTaskServiceListAppliesVisibilityFilter(t *testing.T) {
	t.Parallel()

	database := openServiceTestDatabase(t)
	service := newTaskServiceForTest(database)
	admin := seedServiceUser(t, database, "admin", "Admin User", models.RoleAdmin)
	project := seedServiceProject(t, database, "Internal", false)
	typeID := developmentTypeID(t, database)

	if _, err := service.Create(TaskInput{
		Name:      "Unscoped task",
		TypeID:    typeID,
		IssueDate: models.NewDate(2024, time.June, 1),
	}, &admin); err != nil {
		t.Fatalf("create unscoped task: %v", err)
	}
	if _, err := service.Create(TaskInput{
		Name:      "Project task",
		TypeID:    typeID,
		IssueDate: models.NewDate(2024, time.June, 2),
		ProjectID: &project.ID,
	}, &admin); err != nil {
		t.Fatalf("create project task: %v", err)
	}

	restricted, err := service.List(nil, false, 0, 100)
	if err != nil {
		t.Fatalf("list restricted: %v", err)
	}
	if len(restricted) != 1 || restricted[0].Name != "Unscoped task" {
		t.Fatalf("restricted listing = %+v, want only the unscoped task", restricted)
	}

	granted, err := service.List([]uint{project.ID}, false, 0, 100)
	if err != nil {
		t.Fatalf("list granted: %v", err)
	}
	if len(granted) != 2 {
		t.Fatalf("granted listing has %d tasks, want 2", len(granted))
	}

	unrestricted, err := service.List(nil, true, 0, 100)
	if err != nil {
		t.Fatalf("list unrestricted: %v", err)
	}
	if len(unrestricted) != 2 {
		t.Fatalf("unrestricted listing has %d tasks, want 2", len(unrestricted))
	}

	count, err := service.Count(nil, false)
	if err != nil {
		t.Fatalf("count restricted: %v", err)
	}
	if count != 1 {
		t.Fatalf("restricted count = %d, want 1", count)
	}
}
