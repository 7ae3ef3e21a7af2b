package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/worklens/internal/models"
	"gorm.io/gorm"
)

// ValidationError marks input the caller can fix: a malformed field or a
// reference to a row that does not exist. Handlers map it to a client error.
type ValidationError struct {
	Message string
}

func (err *ValidationError) Error() string {
	return err.Message
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

type TaskStoreRepository interface {
	FindByID(taskID uint) (models.Task, error)
	List(skip int, limit int) ([]models.Task, error)
	ListVisible(projectIDs []uint, skip int, limit int) ([]models.Task, error)
	Count() (int64, error)
	CountVisible(projectIDs []uint) (int64, error)
	ListByProject(projectID uint, skip int, limit int) ([]models.Task, error)
	CountByProject(projectID uint) (int64, error)
	CreateWithDependents(task *models.Task, entry *models.TaskHistory) error
	UpdateWithDependents(task *models.Task, entry *models.TaskHistory) error
	DeleteWithDependents(taskID uint) error
	History(taskID uint) ([]models.TaskHistory, error)
}

type TaskUserLookup interface {
	FindByID(userID string) (models.User, error)
	ListByIDs(userIDs []string) (map[string]models.User, error)
}

type TaskProjectLookup interface {
	FindByID(projectID uint) (models.Project, error)
}

type TaskTypeLookup interface {
	FindByID(typeID uint) (models.TaskType, error)
}

type TaskService struct {
	tasks    TaskStoreRepository
	users    TaskUserLookup
	projects TaskProjectLookup
	types    TaskTypeLookup
}

func NewTaskService(tasks TaskStoreRepository, users TaskUserLookup, projects TaskProjectLookup, types TaskTypeLookup) *TaskService {
	return &TaskService{tasks: tasks, users: users, projects: projects, types: types}
}

type PeriodInput struct {
	Start    models.Date
	End      models.Date
	Type     string
	TesterID *string
}

type ReviewInput struct {
	ReviewerID string
	ReviewDate models.Date
}

type TaskInput struct {
	Name        string
	TypeID      uint
	IssueURL    string
	IssueDate   models.Date
	AssigneeID  *string
	ProjectID   *uint
	ManagerID   *string
	ExtraFields map[string]any
	Periods     []PeriodInput
	Reviews     []ReviewInput
}

// validate checks every referenced row before anything is written. Each
// missing reference produces its own error naming the offending id.
func (service *TaskService) validate(input TaskInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return validationErrorf("task name is required")
	}
	if input.IssueDate.IsZero() {
		return validationErrorf("issue date is required")
	}

	if input.AssigneeID != nil {
		if _, err := service.users.FindByID(*input.AssigneeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return validationErrorf("assignee with id %s not found", *input.AssigneeID)
			}
			return err
		}
	}
	if input.ManagerID != nil {
		if _, err := service.users.FindByID(*input.ManagerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return validationErrorf("manager with id %s not found", *input.ManagerID)
			}
			return err
		}
	}
	if input.ProjectID != nil {
		if _, err := service.projects.FindByID(*input.ProjectID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return validationErrorf("project with id %d not found", *input.ProjectID)
			}
			return err
		}
	}
	if _, err := service.types.FindByID(input.TypeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return validationErrorf("task type with id %d not found", input.TypeID)
		}
		return err
	}

	for _, period := range input.Periods {
		if period.Type != models.PeriodWork && period.Type != models.PeriodTest {
			return validationErrorf("period type %q is not one of work, test", period.Type)
		}
		if period.TesterID != nil {
			if _, err := service.users.FindByID(*period.TesterID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return validationErrorf("tester with id %s not found", *period.TesterID)
				}
				return err
			}
		}
	}
	for _, review := range input.Reviews {
		if _, err := service.users.FindByID(review.ReviewerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return validationErrorf("reviewer with id %s not found", review.ReviewerID)
			}
			return err
		}
	}

	return nil
}

func materializeTask(input TaskInput) models.Task {
	task := models.Task{
		TypeID:      input.TypeID,
		Name:        strings.TrimSpace(input.Name),
		IssueURL:    strings.TrimSpace(input.IssueURL),
		IssueDate:   input.IssueDate,
		AssigneeID:  input.AssigneeID,
		ProjectID:   input.ProjectID,
		ManagerID:   input.ManagerID,
		ExtraFields: input.ExtraFields,
		Periods:     make([]models.Period, 0, len(input.Periods)),
		Reviews:     make([]models.Review, 0, len(input.Reviews)),
	}
	for _, period := range input.Periods {
		task.Periods = append(task.Periods, models.Period{
			Start:    period.Start,
			End:      period.End,
			Type:     period.Type,
			TesterID: period.TesterID,
		})
	}
	for _, review := range input.Reviews {
		task.Reviews = append(task.Reviews, models.Review{
			ReviewerID: review.ReviewerID,
			ReviewDate: review.ReviewDate,
		})
	}
	return task
}

func (service *TaskService) Create(input TaskInput, actor *models.User) (models.Task, error) {
	if err := service.validate(input); err != nil {
		return models.Task{}, err
	}

	task := materializeTask(input)
	entry := &models.TaskHistory{
		ChangedAt: time.Now(),
		Field:     models.HistoryFieldCreate,
		NewValue:  task.Name,
	}
	if actor != nil {
		actorID := actor.ID
		entry.ChangedByID = &actorID
	}

	if err := service.tasks.CreateWithDependents(&task, entry); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// Update validates the new shape, diffs it against the stored task, replaces
// the full period and review sets, and appends a single history entry
// holding every change from this call. An update that changes nothing
// appends no history entry at all.
func (service *TaskService) Update(taskID uint, input TaskInput, actor *models.User) (models.Task, error) {
	existing, err := service.tasks.FindByID(taskID)
	if err != nil {
		return models.Task{}, err
	}

	if err := service.validate(input); err != nil {
		return models.Task{}, err
	}

	next := materializeTask(input)
	next.ID = existing.ID

	var entry *models.TaskHistory
	if changes := BuildTaskDiff(existing, next); len(changes) > 0 {
		encoded, err := json.Marshal(changes)
		if err != nil {
			return models.Task{}, err
		}
		entry = &models.TaskHistory{
			ChangedAt: time.Now(),
			Field:     models.HistoryFieldUpdate,
			NewValue:  string(encoded),
		}
		if actor != nil {
			actorID := actor.ID
			entry.ChangedByID = &actorID
		}
	}

	if err := service.tasks.UpdateWithDependents(&next, entry); err != nil {
		return models.Task{}, err
	}
	return next, nil
}

func (service *TaskService) Delete(taskID uint) error {
	if _, err := service.tasks.FindByID(taskID); err != nil {
		return err
	}
	return service.tasks.DeleteWithDependents(taskID)
}

func (service *TaskService) Get(taskID uint) (models.Task, error) {
	return service.tasks.FindByID(taskID)
}

// List returns tasks visible to the caller. A nil project id set means
// unrestricted (admin); otherwise tasks without a project plus tasks in the
// listed projects are returned.
func (service *TaskService) List(accessibleProjectIDs []uint, unrestricted bool, skip int, limit int) ([]models.Task, error) {
	if unrestricted {
		return service.tasks.List(skip, limit)
	}
	return service.tasks.ListVisible(accessibleProjectIDs, skip, limit)
}

func (service *TaskService) Count(accessibleProjectIDs []uint, unrestricted bool) (int64, error) {
	if unrestricted {
		return service.tasks.Count()
	}
	return service.tasks.CountVisible(accessibleProjectIDs)
}

func (service *TaskService) ListByProject(projectID uint, skip int, limit int) ([]models.Task, error) {
	return service.tasks.ListByProject(projectID, skip, limit)
}

func (service *TaskService) CountByProject(projectID uint) (int64, error) {
	return service.tasks.CountByProject(projectID)
}

// HistoryRecord is one unpacked change. Records coming from the same
// "update" entry share the entry id, author and timestamp.
type HistoryRecord struct {
	EntryID   uint      `json:"entry_id"`
	ChangedBy string    `json:"changed_by"`
	ChangedAt time.Time `json:"changed_at"`
	Field     string    `json:"field"`
	Old       string    `json:"old"`
	New       string    `json:"new"`
}

// History returns the change log newest entry first, with every "update"
// entry's JSON change list unpacked into individual records.
func (service *TaskService) History(taskID uint) ([]HistoryRecord, error) {
	if _, err := service.tasks.FindByID(taskID); err != nil {
		return nil, err
	}

	entries, err := service.tasks.History(taskID)
	if err != nil {
		return nil, err
	}

	authorIDs := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.ChangedByID != nil {
			authorIDs = append(authorIDs, *entry.ChangedByID)
		}
	}
	authors, err := service.users.ListByIDs(authorIDs)
	if err != nil {
		return nil, err
	}

	records := make([]HistoryRecord, 0, len(entries))
	for _, entry := range entries {
		changedBy := ""
		if entry.ChangedByID != nil {
			if author, ok := authors[*entry.ChangedByID]; ok {
				changedBy = author.Username
			}
		}

		if entry.Field == models.HistoryFieldUpdate {
			changes := make([]FieldChange, 0)
			if err := json.Unmarshal([]byte(entry.NewValue), &changes); err != nil {
				// A malformed entry still shows up as a single opaque record.
				records = append(records, HistoryRecord{
					EntryID:   entry.ID,
					ChangedBy: changedBy,
					ChangedAt: entry.ChangedAt,
					Field:     entry.Field,
					Old:       entry.OldValue,
					New:       entry.NewValue,
				})
				continue
			}
			for _, change := range changes {
				records = append(records, HistoryRecord{
					EntryID:   entry.ID,
					ChangedBy: changedBy,
					ChangedAt: entry.ChangedAt,
					Field:     change.Field,
					Old:       change.Old,
					New:       change.New,
				})
			}
			continue
		}

		records = append(records, HistoryRecord{
			EntryID:   entry.ID,
			ChangedBy: changedBy,
			ChangedAt: entry.ChangedAt,
			Field:     entry.Field,
			Old:       entry.OldValue,
			New:       entry.NewValue,
		})
	}

	return records, nil
}
