package models

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

type TaskStatus string

const (
	TaskStatusTodo          TaskStatus = "todo"
	TaskStatusInProgress    TaskStatus = "in-progress"
	TaskStatusPendingReview TaskStatus = "pending-review"
	TaskStatusBlocked       TaskStatus = "blocked"
	TaskStatusDone          TaskStatus = "done"
)

// TaskStatuses lists every status in board column order.
var TaskStatuses = []TaskStatus{
	TaskStatusTodo,
	TaskStatusInProgress,
	TaskStatusPendingReview,
	TaskStatusBlocked,
	TaskStatusDone,
}

// IsValid reports whether s is one of the fixed statuses.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusPendingReview,
		TaskStatusBlocked, TaskStatusDone:
		return true
	default:
		return false
	}
}

// Label returns the column heading for the status.
func (s TaskStatus) Label() string {
	switch s {
	case TaskStatusTodo:
		return "To Do"
	case TaskStatusInProgress:
		return "In Progress"
	case TaskStatusPendingReview:
		return "Pending Review"
	case TaskStatusBlocked:
		return "Blocked"
	case TaskStatusDone:
		return "Done"
	default:
		return string(s)
	}
}

// ParseTaskStatus converts user input into a TaskStatus.
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("unknown task status %q", s)
	}
	return status, nil
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// IsValid reports whether p is one of the fixed priorities.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	default:
		return false
	}
}

// Rank orders priorities: high > medium > low. Unknown values rank lowest.
func (p TaskPriority) Rank() int {
	switch p {
	case TaskPriorityHigh:
		return 3
	case TaskPriorityMedium:
		return 2
	case TaskPriorityLow:
		return 1
	default:
		return 0
	}
}

// ParseTaskPriority converts user input into a TaskPriority.
func ParseTaskPriority(s string) (TaskPriority, error) {
	priority := TaskPriority(s)
	if !priority.IsValid() {
		return "", fmt.Errorf("unknown task priority %q", s)
	}
	return priority, nil
}

// Task is a unit of work on the board. Status changes go through the
// workflow engine; every other field is edited through the tasks package.
type Task struct {
	ID            string
	Title         string
	Description   string
	Assignee      Assignee
	AssigneeName  string
	CreatedBy     string
	CreatedByName string
	DueDate       *time.Time
	Priority      TaskPriority
	Status        TaskStatus
	Tags          []string
	CompletedBy   string
	ReviewedBy    string
	ReviewComment string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Clone returns a deep copy so callers can mutate without aliasing slices.
func (t Task) Clone() Task {
	out := t
	out.Tags = slices.Clone(t.Tags)
	if t.DueDate != nil {
		due := *t.DueDate
		out.DueDate = &due
	}
	if t.Assignee != nil {
		out.Assignee = t.Assignee.clone()
	}
	return out
}

// HasTag reports whether the task carries tag.
func (t Task) HasTag(tag string) bool {
	return slices.Contains(t.Tags, tag)
}

type taskJSON struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Assignee      *AssigneeJSON `json:"assignee"`
	AssigneeName  string        `json:"assignee_name"`
	CreatedBy     string        `json:"created_by"`
	CreatedByName string        `json:"created_by_name"`
	DueDate       *time.Time    `json:"due_date"`
	Priority      TaskPriority  `json:"priority"`
	Status        TaskStatus    `json:"status"`
	Tags          []string      `json:"tags"`
	CompletedBy   string        `json:"completed_by,omitempty"`
	ReviewedBy    string        `json:"reviewed_by,omitempty"`
	ReviewComment string        `json:"review_comment,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// MarshalJSON encodes the assignee union with an explicit kind tag.
func (t Task) MarshalJSON() ([]byte, error) {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(taskJSON{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		Assignee:      EncodeAssignee(t.Assignee),
		AssigneeName:  t.AssigneeName,
		CreatedBy:     t.CreatedBy,
		CreatedByName: t.CreatedByName,
		DueDate:       t.DueDate,
		Priority:      t.Priority,
		Status:        t.Status,
		Tags:          tags,
		CompletedBy:   t.CompletedBy,
		ReviewedBy:    t.ReviewedBy,
		ReviewComment: t.ReviewComment,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	})
}

// UnmarshalJSON decodes a task and rejects unknown statuses or assignee kinds.
func (t *Task) UnmarshalJSON(data []byte) error {
	var raw taskJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !raw.Status.IsValid() {
		return fmt.Errorf("task %s: unknown status %q", raw.ID, raw.Status)
	}

	var assignee Assignee
	if raw.Assignee != nil {
		decoded, err := raw.Assignee.Decode()
		if err != nil {
			return fmt.Errorf("task %s: %w", raw.ID, err)
		}
		assignee = decoded
	}

	*t = Task{
		ID:            raw.ID,
		Title:         raw.Title,
		Description:   raw.Description,
		Assignee:      assignee,
		AssigneeName:  raw.AssigneeName,
		CreatedBy:     raw.CreatedBy,
		CreatedByName: raw.CreatedByName,
		DueDate:       raw.DueDate,
		Priority:      raw.Priority,
		Status:        raw.Status,
		Tags:          raw.Tags,
		CompletedBy:   raw.CompletedBy,
		ReviewedBy:    raw.ReviewedBy,
		ReviewComment: raw.ReviewComment,
		CreatedAt:     raw.CreatedAt,
		UpdatedAt:     raw.UpdatedAt,
	}
	return nil
}
