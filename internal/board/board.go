// Package board arranges tasks into the five status columns of a kanban
// board.
package board

import (
	"cmp"
	"slices"

	"github.com/yukikurage/taskboard/internal/models"
)

// Column is one status bucket, already filtered and sorted.
type Column struct {
	Status models.TaskStatus `json:"status"`
	Label  string            `json:"label"`
	Tasks  []models.Task     `json:"tasks"`
}

// Columns always holds one Column per status, in board order.
type Columns []Column

// Get returns the tasks in the column for status.
func (c Columns) Get(status models.TaskStatus) []models.Task {
	for _, col := range c {
		if col.Status == status {
			return col.Tasks
		}
	}
	return nil
}

// Total counts the tasks across all columns.
func (c Columns) Total() int {
	n := 0
	for _, col := range c {
		n += len(col.Tasks)
	}
	return n
}

// GroupByStatus filters tasks for the viewer and splits them into sorted
// columns. Empty columns are still present.
func GroupByStatus(tasks []models.Task, f Filter, v Viewer) Columns {
	buckets := make(map[models.TaskStatus][]models.Task, len(models.TaskStatuses))
	for _, task := range tasks {
		if !f.Match(task, v) {
			continue
		}
		buckets[task.Status] = append(buckets[task.Status], task)
	}

	columns := make(Columns, 0, len(models.TaskStatuses))
	for _, status := range models.TaskStatuses {
		bucket := buckets[status]
		if bucket == nil {
			bucket = []models.Task{}
		}
		Sort(bucket, f.SortKey)
		columns = append(columns, Column{Status: status, Label: status.Label(), Tasks: bucket})
	}
	return columns
}

// Sort orders tasks in place: higher priority first, then earlier due date
// with undated tasks last, then newest by key, then id.
func Sort(tasks []models.Task, key SortKey) {
	slices.SortStableFunc(tasks, func(a, b models.Task) int {
		return Compare(a, b, key)
	})
}

// Compare is the column ordering used by Sort.
func Compare(a, b models.Task, key SortKey) int {
	if c := cmp.Compare(b.Priority.Rank(), a.Priority.Rank()); c != 0 {
		return c
	}
	if c := compareDue(a, b); c != 0 {
		return c
	}
	at, bt := a.CreatedAt, b.CreatedAt
	if key == SortByUpdated {
		at, bt = a.UpdatedAt, b.UpdatedAt
	}
	if c := bt.Compare(at); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func compareDue(a, b models.Task) int {
	switch {
	case a.DueDate == nil && b.DueDate == nil:
		return 0
	case a.DueDate == nil:
		return 1
	case b.DueDate == nil:
		return -1
	default:
		return a.DueDate.Compare(*b.DueDate)
	}
}
