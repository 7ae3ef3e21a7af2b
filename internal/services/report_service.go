package services

import (
	"sort"

	"github.com/terraincognita07/worklens/internal/db"
	"github.com/terraincognita07/worklens/internal/models"
)

type ReportQueryRepository interface {
	TasksInRange(from models.Date, to models.Date) ([]models.Task, error)
	TasksForUserInRange(userID string, from models.Date, to models.Date) ([]models.Task, error)
	TypeCounts(from models.Date, to models.Date) ([]db.LabeledValue, error)
	ProjectTypeCounts(from models.Date, to models.Date) ([]db.ProjectTypeCount, error)
	ReviewerCounts(from models.Date, to models.Date) ([]db.LabeledValue, error)
	TesterCounts(from models.Date, to models.Date) ([]db.LabeledValue, error)
}

type ReportUserLookup interface {
	FindByID(userID string) (models.User, error)
	ListByIDs(userIDs []string) (map[string]models.User, error)
}

type ReportProjectLookup interface {
	ListByIDs(projectIDs []uint) (map[uint]models.Project, error)
}

type ReportService struct {
	reports  ReportQueryRepository
	users    ReportUserLookup
	projects ReportProjectLookup
}

func NewReportService(reports ReportQueryRepository, users ReportUserLookup, projects ReportProjectLookup) *ReportService {
	return &ReportService{reports: reports, users: users, projects: projects}
}

// ChartRow is one {label, value} pair of a grouped report, with the display
// color of the grouped entity when the dimension has one.
type ChartRow struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Color string  `json:"color,omitempty"`
}

// MinMaxNormalize scales values into [0,1]. Empty input yields empty
// output; when every value is equal, every key maps to 1.0.
func MinMaxNormalize(values map[string]float64) map[string]float64 {
	if len(values) == 0 {
		return map[string]float64{}
	}

	first := true
	var minValue, maxValue float64
	for _, value := range values {
		if first {
			minValue, maxValue = value, value
			first = false
			continue
		}
		if value < minValue {
			minValue = value
		}
		if value > maxValue {
			maxValue = value
		}
	}

	normalized := make(map[string]float64, len(values))
	if maxValue == minValue {
		for key := range values {
			normalized[key] = 1.0
		}
		return normalized
	}
	for key, value := range values {
		normalized[key] = (value - minValue) / (maxValue - minValue)
	}
	return normalized
}

// userMetrics are the four per-user measures feeding the aggregate score,
// keyed by assignee id.
type userMetrics struct {
	tasks        map[string]float64
	loc          map[string]float64
	spSum        map[string]float64
	spCount      map[string]float64
	spAvg        map[string]float64
	projectTasks map[string]map[uint]int
}

// extractUserMetrics builds the per-user measures from the tasks of a date
// range. Tasks without an assignee never register; with requireProject set,
// tasks without a project are skipped too (the aggregate report joins both
// dimensions). Non-numeric or missing extra-field values contribute zero.
func extractUserMetrics(tasks []models.Task, requireProject bool) userMetrics {
	metrics := userMetrics{
		tasks:        make(map[string]float64),
		loc:          make(map[string]float64),
		spSum:        make(map[string]float64),
		spCount:      make(map[string]float64),
		spAvg:        make(map[string]float64),
		projectTasks: make(map[string]map[uint]int),
	}

	for _, task := range tasks {
		if task.AssigneeID == nil {
			continue
		}
		if requireProject && task.ProjectID == nil {
			continue
		}
		userID := *task.AssigneeID

		metrics.tasks[userID]++
		if task.ProjectID != nil {
			if metrics.projectTasks[userID] == nil {
				metrics.projectTasks[userID] = make(map[uint]int)
			}
			metrics.projectTasks[userID][*task.ProjectID]++
		}

		locAdded, _ := numericExtraField(task.ExtraFields, models.ExtraFieldLOCAdded)
		locRemoved, _ := numericExtraField(task.ExtraFields, models.ExtraFieldLOCRemoved)
		if total := locAdded + locRemoved; total > 0 {
			metrics.loc[userID] += total
		}

		if storyPoints, ok := numericExtraField(task.ExtraFields, models.ExtraFieldStoryPoints); ok {
			metrics.spSum[userID] += storyPoints
			if storyPoints != 0 {
				metrics.spCount[userID]++
			}
		}
	}

	for userID, sum := range metrics.spSum {
		if count := metrics.spCount[userID]; count > 0 {
			metrics.spAvg[userID] = sum / count
		} else {
			metrics.spAvg[userID] = 0
		}
	}

	return metrics
}

func numericExtraField(fields map[string]any, key string) (float64, bool) {
	if fields == nil {
		return 0, false
	}
	switch value := fields[key].(type) {
	case float64:
		return value, true
	case float32:
		return float64(value), true
	case int:
		return float64(value), true
	case int64:
		return float64(value), true
	default:
		return 0, false
	}
}

// AggregateRow is one scored user of the aggregate report: the four raw
// metrics, their normalized forms and the equally weighted combination.
type AggregateRow struct {
	User            string         `json:"user"`
	Score           float64        `json:"score"`
	Tasks           int            `json:"tasks"`
	LOC             float64        `json:"loc"`
	SPSum           float64        `json:"sp_sum"`
	SPAvg           float64        `json:"sp_avg"`
	NormalizedTasks float64        `json:"normalize_tasks"`
	NormalizedLOC   float64        `json:"normalize_loc"`
	NormalizedSPSum float64        `json:"normalize_sp_sum"`
	NormalizedSPAvg float64        `json:"normalize_sp_avg"`
	ProjectTasks    map[string]int `json:"project_tasks"`
	Color           string         `json:"-"`
}

// AggregateByUserDesc is the JSON presentation of the aggregate score,
// highest score first.
func (service *ReportService) AggregateByUserDesc(from models.Date, to models.Date) ([]AggregateRow, error) {
	return service.aggregateByUser(from, to, false)
}

// AggregateByUserAsc is the chart presentation of the same computation,
// lowest score first. The two orders are deliberate: the source system
// shipped them inconsistently and both are kept as-is.
func (service *ReportService) AggregateByUserAsc(from models.Date, to models.Date) ([]AggregateRow, error) {
	return service.aggregateByUser(from, to, true)
}

func (service *ReportService) aggregateByUser(from models.Date, to models.Date, ascending bool) ([]AggregateRow, error) {
	tasks, err := service.reports.TasksInRange(from, to)
	if err != nil {
		return nil, err
	}
	metrics := extractUserMetrics(tasks, true)

	normTasks := MinMaxNormalize(metrics.tasks)
	normLOC := MinMaxNormalize(metrics.loc)
	normSPSum := MinMaxNormalize(metrics.spSum)
	normSPAvg := MinMaxNormalize(metrics.spAvg)

	userIDs := make(map[string]struct{})
	for userID := range metrics.tasks {
		userIDs[userID] = struct{}{}
	}
	for userID := range metrics.loc {
		userIDs[userID] = struct{}{}
	}
	for userID := range metrics.spSum {
		userIDs[userID] = struct{}{}
	}
	for userID := range metrics.spAvg {
		userIDs[userID] = struct{}{}
	}

	ids := make([]string, 0, len(userIDs))
	for userID := range userIDs {
		ids = append(ids, userID)
	}
	users, err := service.users.ListByIDs(ids)
	if err != nil {
		return nil, err
	}

	projectIDs := make(map[uint]struct{})
	for _, perProject := range metrics.projectTasks {
		for projectID := range perProject {
			projectIDs[projectID] = struct{}{}
		}
	}
	projectIDList := make([]uint, 0, len(projectIDs))
	for projectID := range projectIDs {
		projectIDList = append(projectIDList, projectID)
	}
	projects, err := service.projects.ListByIDs(projectIDList)
	if err != nil {
		return nil, err
	}

	rows := make([]AggregateRow, 0, len(userIDs))
	for userID := range userIDs {
		score := 0.25*normTasks[userID] + 0.25*normLOC[userID] +
			0.25*normSPSum[userID] + 0.25*normSPAvg[userID]
		if score <= 0 {
			continue
		}

		projectCounts := make(map[string]int)
		for projectID, count := range metrics.projectTasks[userID] {
			name := ""
			if project, ok := projects[projectID]; ok {
				name = project.Name
			}
			projectCounts[name] += count
		}

		row := AggregateRow{
			User:            userID,
			Score:           score,
			Tasks:           int(metrics.tasks[userID]),
			LOC:             metrics.loc[userID],
			SPSum:           metrics.spSum[userID],
			SPAvg:           metrics.spAvg[userID],
			NormalizedTasks: normTasks[userID],
			NormalizedLOC:   normLOC[userID],
			NormalizedSPSum: normSPSum[userID],
			NormalizedSPAvg: normSPAvg[userID],
			ProjectTasks:    projectCounts,
			Color:           models.DefaultUserColor,
		}
		if user, ok := users[userID]; ok {
			row.User = userDisplayName(user)
			row.Color = user.Color
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score == rows[j].Score {
			return rows[i].User < rows[j].User
		}
		if ascending {
			return rows[i].Score < rows[j].Score
		}
		return rows[i].Score > rows[j].Score
	})

	return rows, nil
}

// GanttRow is one task of the per-user gantt report with its periods.
type GanttRow struct {
	TaskID    uint          `json:"task_id"`
	Name      string        `json:"name"`
	IssueDate models.Date   `json:"issue_date"`
	Periods   []GanttPeriod `json:"periods"`
	User      GanttUser     `json:"user"`
}

type GanttPeriod struct {
	Start models.Date `json:"start"`
	End   models.Date `json:"end"`
}

type GanttUser struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}

func (service *ReportService) Gantt(userID string, from models.Date, to models.Date) ([]GanttRow, error) {
	user, err := service.users.FindByID(userID)
	if err != nil {
		return nil, err
	}

	tasks, err := service.reports.TasksForUserInRange(userID, from, to)
	if err != nil {
		return nil, err
	}

	rows := make([]GanttRow, 0, len(tasks))
	for _, task := range tasks {
		periods := make([]GanttPeriod, 0, len(task.Periods))
		for _, period := range task.Periods {
			periods = append(periods, GanttPeriod{Start: period.Start, End: period.End})
		}
		rows = append(rows, GanttRow{
			TaskID:    task.ID,
			Name:      task.Name,
			IssueDate: task.IssueDate,
			Periods:   periods,
			User:      GanttUser{ID: user.ID, FullName: user.FullName},
		})
	}
	return rows, nil
}

func (service *ReportService) TasksByType(from models.Date, to models.Date) ([]ChartRow, error) {
	rows, err := service.reports.TypeCounts(from, to)
	if err != nil {
		return nil, err
	}
	return labeledToChartRows(rows), nil
}

// ProjectsByType keys the type breakdown by project name. Projects without
// tasks in the range simply do not appear.
func (service *ReportService) ProjectsByType(from models.Date, to models.Date) (map[string][]ChartRow, error) {
	rows, err := service.reports.ProjectTypeCounts(from, to)
	if err != nil {
		return nil, err
	}

	byProject := make(map[string][]ChartRow)
	for _, row := range rows {
		byProject[row.Project] = append(byProject[row.Project], ChartRow{Label: row.Label, Value: row.Value})
	}
	return byProject, nil
}

func (service *ReportService) Reviewers(from models.Date, to models.Date) ([]ChartRow, error) {
	rows, err := service.reports.ReviewerCounts(from, to)
	if err != nil {
		return nil, err
	}
	return labeledToChartRows(rows), nil
}

func (service *ReportService) Testers(from models.Date, to models.Date) ([]ChartRow, error) {
	rows, err := service.reports.TesterCounts(from, to)
	if err != nil {
		return nil, err
	}
	return labeledToChartRows(rows), nil
}

// SPByProject sums story points over the range per project.
func (service *ReportService) SPByProject(from models.Date, to models.Date) ([]ChartRow, error) {
	tasks, err := service.reports.TasksInRange(from, to)
	if err != nil {
		return nil, err
	}

	spByProject := make(map[uint]float64)
	for _, task := range tasks {
		if task.ProjectID == nil {
			continue
		}
		if storyPoints, ok := numericExtraField(task.ExtraFields, models.ExtraFieldStoryPoints); ok {
			spByProject[*task.ProjectID] += storyPoints
		}
	}

	projectIDs := make([]uint, 0, len(spByProject))
	for projectID := range spByProject {
		projectIDs = append(projectIDs, projectID)
	}
	projects, err := service.projects.ListByIDs(projectIDs)
	if err != nil {
		return nil, err
	}

	rows := make([]ChartRow, 0, len(spByProject))
	for projectID, total := range spByProject {
		row := ChartRow{Value: total, Color: models.DefaultProjectColor}
		if project, ok := projects[projectID]; ok {
			row.Label = project.Name
			row.Color = project.Color
		}
		rows = append(rows, row)
	}
	sortChartRows(rows)
	return rows, nil
}

func (service *ReportService) LOCByUser(from models.Date, to models.Date) ([]ChartRow, error) {
	metrics, err := service.rangeMetrics(from, to)
	if err != nil {
		return nil, err
	}
	return service.userValuesToChartRows(metrics.loc)
}

func (service *ReportService) SPByUser(from models.Date, to models.Date) ([]ChartRow, error) {
	metrics, err := service.rangeMetrics(from, to)
	if err != nil {
		return nil, err
	}
	return service.userValuesToChartRows(metrics.spSum)
}

func (service *ReportService) TasksByUser(from models.Date, to models.Date) ([]ChartRow, error) {
	metrics, err := service.rangeMetrics(from, to)
	if err != nil {
		return nil, err
	}
	return service.userValuesToChartRows(metrics.tasks)
}

// SPAvgByUser reports the average story points per user, leaving out users
// without a single non-zero estimate in the range.
func (service *ReportService) SPAvgByUser(from models.Date, to models.Date) ([]ChartRow, error) {
	metrics, err := service.rangeMetrics(from, to)
	if err != nil {
		return nil, err
	}

	averages := make(map[string]float64)
	for userID, average := range metrics.spAvg {
		if metrics.spCount[userID] > 0 {
			averages[userID] = average
		}
	}
	return service.userValuesToChartRows(averages)
}

func (service *ReportService) rangeMetrics(from models.Date, to models.Date) (userMetrics, error) {
	tasks, err := service.reports.TasksInRange(from, to)
	if err != nil {
		return userMetrics{}, err
	}
	return extractUserMetrics(tasks, false), nil
}

func (service *ReportService) userValuesToChartRows(values map[string]float64) ([]ChartRow, error) {
	userIDs := make([]string, 0, len(values))
	for userID := range values {
		userIDs = append(userIDs, userID)
	}
	users, err := service.users.ListByIDs(userIDs)
	if err != nil {
		return nil, err
	}

	rows := make([]ChartRow, 0, len(values))
	for userID, value := range values {
		row := ChartRow{Label: userID, Value: value, Color: models.DefaultUserColor}
		if user, ok := users[userID]; ok {
			row.Label = userDisplayName(user)
			row.Color = user.Color
		}
		rows = append(rows, row)
	}
	sortChartRows(rows)
	return rows, nil
}

func userDisplayName(user models.User) string {
	if user.FullName != "" {
		return user.FullName
	}
	return user.Username
}

func labeledToChartRows(rows []db.LabeledValue) []ChartRow {
	chartRows := make([]ChartRow, 0, len(rows))
	for _, row := range rows {
		chartRows = append(chartRows, ChartRow{Label: row.Label, Value: row.Value, Color: row.Color})
	}
	return chartRows
}

func sortChartRows(rows []ChartRow) {
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Label < rows[j].Label
	})
}
