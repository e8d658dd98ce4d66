// Package tasks creates and edits Task records. Status is not editable
// here; it only changes through the workflow engine.
package tasks

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/taskboard/internal/assignment"
	"github.com/yukikurage/taskboard/internal/models"
)

// ValidationError reports malformed task input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidationError reports whether err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Actor identifies the user creating a task.
type Actor struct {
	ID   string
	Name string
}

type CreateInput struct {
	Title       string
	Description string
	Assignee    models.Assignee
	DueDate     *time.Time
	Priority    models.TaskPriority
	Tags        []string
}

// Create builds a new task in the todo column.
func Create(input CreateInput, actor Actor, roster assignment.Roster, now time.Time) (models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return models.Task{}, &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if actor.ID == "" {
		return models.Task{}, &ValidationError{Field: "created_by", Reason: "actor is required"}
	}

	name, err := resolveAssignee(input.Assignee, roster)
	if err != nil {
		return models.Task{}, err
	}

	priority := input.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}
	if !priority.IsValid() {
		return models.Task{}, &ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown priority %q", priority)}
	}

	task := models.Task{
		ID:            uuid.NewString(),
		Title:         title,
		Description:   input.Description,
		Assignee:      input.Assignee,
		AssigneeName:  name,
		CreatedBy:     actor.ID,
		CreatedByName: actor.Name,
		DueDate:       copyTime(input.DueDate),
		Priority:      priority,
		Status:        models.TaskStatusTodo,
		Tags:          NormalizeTags(input.Tags),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return task.Clone(), nil
}

// Patch lists the editable fields. Nil pointers leave a field untouched.
type Patch struct {
	Title        *string
	Description  *string
	DueDate      *time.Time
	ClearDueDate bool
	Tags         *[]string
	Priority     *models.TaskPriority
	Assignee     models.Assignee
}

// Edit applies patch to a copy of task and bumps UpdatedAt.
func Edit(task models.Task, patch Patch, roster assignment.Roster, now time.Time) (models.Task, error) {
	out := task.Clone()

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return task, &ValidationError{Field: "title", Reason: "must not be empty"}
		}
		out.Title = title
	}
	if patch.Description != nil {
		out.Description = *patch.Description
	}
	if patch.ClearDueDate {
		out.DueDate = nil
	} else if patch.DueDate != nil {
		out.DueDate = copyTime(patch.DueDate)
	}
	if patch.Tags != nil {
		out.Tags = NormalizeTags(*patch.Tags)
	}
	if patch.Priority != nil {
		if !patch.Priority.IsValid() {
			return task, &ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown priority %q", *patch.Priority)}
		}
		out.Priority = *patch.Priority
	}
	if patch.Assignee != nil {
		name, err := resolveAssignee(patch.Assignee, roster)
		if err != nil {
			return task, err
		}
		out.Assignee = patch.Assignee
		out.AssigneeName = name
	}

	out.UpdatedAt = now
	return out, nil
}

// RefreshAssigneeName recomputes the cached label. It reports whether the
// label changed.
func RefreshAssigneeName(task *models.Task, roster assignment.Roster) bool {
	name := assignment.ResolveName(task.Assignee, roster)
	if name == task.AssigneeName {
		return false
	}
	task.AssigneeName = name
	return true
}

// NormalizeTags trims tags and drops blanks and duplicates, keeping the
// first occurrence order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func resolveAssignee(a models.Assignee, roster assignment.Roster) (string, error) {
	if a == nil {
		return "", &ValidationError{Field: "assignee", Reason: "is required"}
	}
	if err := a.Validate(); err != nil {
		return "", &ValidationError{Field: "assignee", Reason: err.Error()}
	}
	name := assignment.ResolveName(a, roster)
	if name == "" {
		return "", &ValidationError{Field: "assignee", Reason: "references an unknown user or team"}
	}
	return name, nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
