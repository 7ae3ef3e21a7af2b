package services

import (
	"encoding/json"
	"fmt"

	"github.com/terraincognita07/worklens/internal/models"
)

// FieldChange is one entry of an update diff. A full update produces a list
// of these, serialized together into a single history row.
type FieldChange struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

const notSetValue = "not set"

// BuildTaskDiff compares the stored task against its updated shape and
// returns one change record per differing field. Periods and reviews are
// compared pairwise by position up to the shorter list, so reordering
// entries without changing their content still registers as changes.
func BuildTaskDiff(previous models.Task, next models.Task) []FieldChange {
	changes := make([]FieldChange, 0)

	if previous.Name != next.Name {
		changes = append(changes, FieldChange{Field: "Name", Old: previous.Name, New: next.Name})
	}
	if previous.TypeID != next.TypeID {
		changes = append(changes, FieldChange{
			Field: "Task type",
			Old:   fmt.Sprintf("task type id: %d", previous.TypeID),
			New:   fmt.Sprintf("task type id: %d", next.TypeID),
		})
	}
	if previous.IssueURL != next.IssueURL {
		changes = append(changes, FieldChange{
			Field: "Issue URL",
			Old:   stringOrNotSet(previous.IssueURL),
			New:   stringOrNotSet(next.IssueURL),
		})
	}
	if !previous.IssueDate.Equal(next.IssueDate.Time) {
		changes = append(changes, FieldChange{
			Field: "Issue date",
			Old:   previous.IssueDate.String(),
			New:   next.IssueDate.String(),
		})
	}
	if !equalOptionalString(previous.AssigneeID, next.AssigneeID) {
		changes = append(changes, FieldChange{
			Field: "Assignee",
			Old:   optionalStringValue(previous.AssigneeID),
			New:   optionalStringValue(next.AssigneeID),
		})
	}
	if !equalOptionalUint(previous.ProjectID, next.ProjectID) {
		changes = append(changes, FieldChange{
			Field: "Project",
			Old:   optionalUintValue(previous.ProjectID),
			New:   optionalUintValue(next.ProjectID),
		})
	}
	if !equalOptionalString(previous.ManagerID, next.ManagerID) {
		changes = append(changes, FieldChange{
			Field: "Manager",
			Old:   optionalStringValue(previous.ManagerID),
			New:   optionalStringValue(next.ManagerID),
		})
	}

	previousExtra := stringifyExtraFields(previous.ExtraFields)
	nextExtra := stringifyExtraFields(next.ExtraFields)
	if previousExtra != nextExtra {
		changes = append(changes, FieldChange{Field: "Extra fields", Old: previousExtra, New: nextExtra})
	}

	changes = append(changes, diffPeriods(previous.Periods, next.Periods)...)
	changes = append(changes, diffReviews(previous.Reviews, next.Reviews)...)

	return changes
}

func diffPeriods(previous []models.Period, next []models.Period) []FieldChange {
	changes := make([]FieldChange, 0)

	if len(previous) != len(next) {
		changes = append(changes, FieldChange{
			Field: "Periods count",
			Old:   fmt.Sprintf("%d", len(previous)),
			New:   fmt.Sprintf("%d", len(next)),
		})
	}

	shared := min(len(previous), len(next))
	for index := 0; index < shared; index++ {
		if !previous[index].Start.Equal(next[index].Start.Time) {
			changes = append(changes, FieldChange{
				Field: fmt.Sprintf("period_%d_start", index+1),
				Old:   previous[index].Start.String(),
				New:   next[index].Start.String(),
			})
		}
		if !previous[index].End.Equal(next[index].End.Time) {
			changes = append(changes, FieldChange{
				Field: fmt.Sprintf("period_%d_end", index+1),
				Old:   previous[index].End.String(),
				New:   next[index].End.String(),
			})
		}
		if previous[index].Type != next[index].Type {
			changes = append(changes, FieldChange{
				Field: fmt.Sprintf("period_%d_type", index+1),
				Old:   previous[index].Type,
				New:   next[index].Type,
			})
		}
	}

	return changes
}

func diffReviews(previous []models.Review, next []models.Review) []FieldChange {
	changes := make([]FieldChange, 0)

	if len(previous) != len(next) {
		changes = append(changes, FieldChange{
			Field: "Reviews count",
			Old:   fmt.Sprintf("%d", len(previous)),
			New:   fmt.Sprintf("%d", len(next)),
		})
	}

	shared := min(len(previous), len(next))
	for index := 0; index < shared; index++ {
		if !previous[index].ReviewDate.Equal(next[index].ReviewDate.Time) {
			changes = append(changes, FieldChange{
				Field: fmt.Sprintf("review_%d_date", index+1),
				Old:   previous[index].ReviewDate.String(),
				New:   next[index].ReviewDate.String(),
			})
		}
	}

	return changes
}

// stringifyExtraFields renders the whole mapping as canonical JSON so two
// mappings compare equal exactly when their JSON forms match. encoding/json
// sorts object keys, which keeps the rendering stable.
func stringifyExtraFields(fields map[string]any) string {
	if len(fields) == 0 {
		return notSetValue
	}
	encoded, err := json.Marshal(fields)
	if err != nil {
		return notSetValue
	}
	return string(encoded)
}

func stringOrNotSet(value string) string {
	if value == "" {
		return notSetValue
	}
	return value
}

func optionalStringValue(value *string) string {
	if value == nil || *value == "" {
		return notSetValue
	}
	return *value
}

func optionalUintValue(value *uint) string {
	if value == nil {
		return notSetValue
	}
	return fmt.Sprintf("%d", *value)
}

func equalOptionalString(a *string, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func equalOptionalUint(a *uint, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
