package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/worklens/internal/db"
	"github.com/terraincognita07/worklens/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Importer loads the legacy spreadsheet exports. Each file runs in its own
// transaction; dry-run rolls the transaction back after counting.
type Importer struct {
	database *gorm.DB
	dryRun   bool
}

type Summary struct {
	File     string
	Imported int
	Skipped  int
	Errors   int
}

func (s Summary) String() string {
	return fmt.Sprintf("%s: %d imported, %d skipped, %d errors", s.File, s.Imported, s.Skipped, s.Errors)
}

// errDryRun forces the surrounding transaction to roll back.
var errDryRun = errors.New("dry run rollback")

// fallbackTypeCode receives any type label the mapping does not know.
const fallbackTypeCode = "development"

// taskTypeCodes maps the spreadsheet type labels onto the seeded task-type
// codes. Unknown labels fall back to development.
var taskTypeCodes = map[string]string{
	"interface prototype": "development",
	"feature":             "development",
	"refactoring":         "development",
	"backend":             "development",
	"frontend":            "development",
	"development":         "development",
	"deployment":          "management",
	"documentation":       "management",
	"devops":              "management",
	"bug":                 "research",
	"mockups":             "research",
	"research":            "research",
}

func New(database *gorm.DB, dryRun bool) *Importer {
	return &Importer{database: database, dryRun: dryRun}
}

// Run imports projects, users and tasks in that order, so task rows can
// resolve the entities the earlier files created.
func (imp *Importer) Run(dir string) ([]Summary, error) {
	summaries := make([]Summary, 0, 3)

	steps := []struct {
		file string
		load func(tx *gorm.DB, rows []row) (Summary, error)
	}{
		{"projects.csv", imp.importProjects},
		{"users.csv", imp.importUsers},
		{"tasks.csv", imp.importTasks},
	}

	for _, step := range steps {
		summary, err := imp.runFile(filepath.Join(dir, step.file), step.file, step.load)
		if err != nil {
			return summaries, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (imp *Importer) runFile(
	path string,
	name string,
	importFile func(tx *gorm.DB, rows []row) (Summary, error),
) (Summary, error) {
	rows, err := readRows(path)
	if err != nil {
		return Summary{}, fmt.Errorf("read %s: %w", name, err)
	}

	var summary Summary
	err = imp.database.Transaction(func(tx *gorm.DB) error {
		summary, err = importFile(tx, rows)
		if err != nil {
			return err
		}
		if imp.dryRun {
			return errDryRun
		}
		return nil
	})
	if errors.Is(err, errDryRun) {
		err = nil
	}
	if err != nil {
		return Summary{}, fmt.Errorf("import %s: %w", name, err)
	}
	summary.File = name
	return summary, nil
}

func (imp *Importer) importProjects(tx *gorm.DB, rows []row) (Summary, error) {
	repos := db.NewRepositories(tx)
	var summary Summary

	for _, record := range rows {
		name := record.get("project")
		if skipLabel(name) {
			summary.Skipped++
			continue
		}

		exists, err := repos.Projects.ExistsByName(name)
		if err != nil {
			return summary, err
		}
		if exists {
			summary.Skipped++
			continue
		}

		project := models.Project{Name: name, Color: randomColor()}
		if err := repos.Projects.Create(&project); err != nil {
			return summary, err
		}
		summary.Imported++
	}
	return summary, nil
}

func (imp *Importer) importUsers(tx *gorm.DB, rows []row) (Summary, error) {
	repos := db.NewRepositories(tx)
	var summary Summary

	for _, record := range rows {
		fullName := record.get("assignee")
		if skipLabel(fullName) {
			summary.Skipped++
			continue
		}

		if _, err := findUserByFullName(tx, fullName); err == nil {
			summary.Skipped++
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return summary, err
		}

		username := strings.ToLower(strings.ReplaceAll(fullName, " ", "_"))
		passwordHash, err := bcrypt.GenerateFromPassword([]byte(username), bcrypt.DefaultCost)
		if err != nil {
			return summary, err
		}

		user := models.User{
			ID:             uuid.NewString(),
			Username:       username,
			PasswordHash:   string(passwordHash),
			FullName:       fullName,
			Role:           models.RoleUser,
			CanLoadTasks:   true,
			CanViewReports: true,
			Color:          randomColor(),
		}
		if err := repos.Users.Create(&user); err != nil {
			return summary, err
		}
		summary.Imported++
	}
	return summary, nil
}

func (imp *Importer) importTasks(tx *gorm.DB, rows []row) (Summary, error) {
	repos := db.NewRepositories(tx)
	var summary Summary

	manager, err := findManager(tx)
	if err != nil {
		return summary, err
	}

	for index, record := range rows {
		name := record.get("task")
		if skipLabel(name) {
			summary.Skipped++
			continue
		}

		task, ok, err := imp.buildTask(tx, repos, record, name, manager)
		if err != nil {
			return summary, err
		}
		if !ok {
			logrus.WithFields(logrus.Fields{"row": index + 2, "task": name}).Warn("task row skipped")
			summary.Errors++
			continue
		}
		if task == nil {
			summary.Skipped++
			continue
		}

		if err := repos.Tasks.CreateWithDependents(task, nil); err != nil {
			return summary, err
		}
		summary.Imported++
	}
	return summary, nil
}

// buildTask returns (nil, true, nil) for a duplicate row and (nil, false, nil)
// for a row that cannot be imported at all.
func (imp *Importer) buildTask(
	tx *gorm.DB,
	repos *db.Repositories,
	record row,
	name string,
	manager *models.User,
) (*models.Task, bool, error) {
	var assigneeID *string
	if assigneeName := record.get("assignee"); !skipLabel(assigneeName) {
		assignee, err := findUserByFullName(tx, assigneeName)
		if err == nil {
			assigneeID = &assignee.ID
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, err
		} else {
			logrus.WithField("assignee", assigneeName).Warn("assignee not found")
		}
	}

	var projectID *uint
	if projectName := record.get("project"); !skipLabel(projectName) {
		var project models.Project
		err := tx.Where("name = ?", projectName).First(&project).Error
		if err == nil {
			projectID = &project.ID
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, err
		} else {
			logrus.WithField("project", projectName).Warn("project not found")
		}
	}

	typeCode, known := taskTypeCodes[strings.ToLower(record.get("type"))]
	if !known {
		typeCode = fallbackTypeCode
	}
	taskType, err := repos.TaskTypes.FindByName(typeCode)
	if errors.Is(err, gorm.ErrRecordNotFound) && typeCode != fallbackTypeCode {
		taskType, err = repos.TaskTypes.FindByName(fallbackTypeCode)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	issueDate, ok := parseDate(record.get("issued"))
	if !ok {
		logrus.WithField("task", name).Warn("unparseable issue date, using today")
		issueDate = models.DateOf(time.Now())
	}

	duplicate, err := taskExists(tx, name, issueDate, assigneeID)
	if err != nil {
		return nil, false, err
	}
	if duplicate {
		return nil, true, nil
	}

	task := models.Task{
		Name:        name,
		TypeID:      taskType.ID,
		IssueURL:    record.get("link"),
		IssueDate:   issueDate,
		AssigneeID:  assigneeID,
		ProjectID:   projectID,
		ExtraFields: extraFields(record),
	}
	if manager != nil {
		task.ManagerID = &manager.ID
	}

	if start, ok := parseDate(record.get("work start")); ok {
		if end, ok := parseDate(record.get("work end")); ok {
			task.Periods = append(task.Periods, models.Period{
				Start: start,
				End:   end,
				Type:  models.PeriodWork,
			})
		}
	}

	if testStart, ok := parseDate(record.get("testing")); ok {
		period := models.Period{Start: testStart, End: testStart, Type: models.PeriodTest}
		if testerName := record.get("tester"); !skipLabel(testerName) {
			if tester, err := findUserByFullName(tx, testerName); err == nil {
				period.TesterID = &tester.ID
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, false, err
			}
		}
		task.Periods = append(task.Periods, period)
	}

	if reviewDate, ok := parseDate(record.get("review")); ok {
		if reviewerName := record.get("reviewer"); !skipLabel(reviewerName) {
			reviewer, err := findUserByFullName(tx, reviewerName)
			if err == nil {
				task.Reviews = append(task.Reviews, models.Review{
					ReviewerID: reviewer.ID,
					ReviewDate: reviewDate,
				})
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, false, err
			} else {
				logrus.WithField("reviewer", reviewerName).Warn("reviewer not found")
			}
		}
	}

	return &task, true, nil
}

func extraFields(record row) map[string]any {
	fields := map[string]any{}
	columns := map[string]string{
		models.ExtraFieldLOCAdded:    "loc (+)",
		models.ExtraFieldLOCRemoved:  "loc (-)",
		"loc":                        "loc",
		models.ExtraFieldStoryPoints: "sp",
		"pr":                         "pr",
	}
	for key, column := range columns {
		raw := record.get(column)
		if skipLabel(raw) {
			continue
		}
		if number, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64); err == nil {
			fields[key] = number
		} else {
			fields[key] = raw
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func taskExists(tx *gorm.DB, name string, issueDate models.Date, assigneeID *string) (bool, error) {
	query := tx.Model(&models.Task{}).Where("name = ? AND issue_date = ?", name, issueDate)
	if assigneeID == nil {
		query = query.Where("assignee_id IS NULL")
	} else {
		query = query.Where("assignee_id = ?", *assigneeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func findUserByFullName(tx *gorm.DB, fullName string) (models.User, error) {
	var user models.User
	err := tx.Where("full_name = ?", fullName).First(&user).Error
	return user, err
}

// findManager picks the first administrator, falling back to the first user.
// Imported tasks get no manager when the database holds no users at all.
func findManager(tx *gorm.DB) (*models.User, error) {
	var manager models.User
	err := tx.Where("role = ?", models.RoleAdmin).Order("created_at").First(&manager).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = tx.Order("created_at").First(&manager).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &manager, nil
}

func randomColor() string {
	return fmt.Sprintf("#%06x", rand.Intn(0x1000000))
}

// row is a header-keyed CSV record. Lookups are case-insensitive and ignore
// surrounding whitespace in both headers and values.
type row map[string]string

func (r row) get(column string) string {
	return r[column]
}

func skipLabel(value string) bool {
	lowered := strings.ToLower(value)
	return lowered == "" || lowered == "nan" || lowered == "-" || strings.HasPrefix(lowered, "total")
}

var dateLayouts = []string{"2006-01-02", "02.01.2006"}

func parseDate(value string) (models.Date, bool) {
	if skipLabel(value) || value == "NaT" {
		return models.Date{}, false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return models.DateOf(parsed), true
		}
	}
	logrus.WithField("value", value).Warn("unparseable date")
	return models.Date{}, false
}

func readRows(path string) ([]row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for index := range header {
		header[index] = strings.ToLower(strings.TrimSpace(header[index]))
	}

	var rows []row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		mapped := row{}
		for index, value := range record {
			if index >= len(header) {
				break
			}
			mapped[header[index]] = strings.TrimSpace(value)
		}
		rows = append(rows, mapped)
	}
	return rows, nil
}
