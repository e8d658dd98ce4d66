// Package workflow is the only place a task's status changes. It owns the
// transition table, the actor checks that gate each move, and the audit
// fields a move writes.
package workflow

import "github.com/yukikurage/taskboard/internal/models"

// allowedTransitions defines the permitted status changes.
var allowedTransitions = map[models.TaskStatus]map[models.TaskStatus]struct{}{
	models.TaskStatusTodo: {
		models.TaskStatusInProgress: {},
		models.TaskStatusBlocked:    {},
	},
	models.TaskStatusInProgress: {
		models.TaskStatusTodo:          {},
		models.TaskStatusPendingReview: {},
		models.TaskStatusBlocked:       {},
	},
	models.TaskStatusPendingReview: {
		models.TaskStatusInProgress: {},
		models.TaskStatusDone:       {},
	},
	models.TaskStatusDone: {
		models.TaskStatusInProgress: {},
	},
	models.TaskStatusBlocked: {
		models.TaskStatusTodo:       {},
		models.TaskStatusInProgress: {},
	},
}

// IsLegal reports whether the table allows moving from one status to
// another. A move to the same status is never legal.
func IsLegal(from, to models.TaskStatus) bool {
	allowed, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// Targets returns the statuses reachable from from, in board column order.
func Targets(from models.TaskStatus) []models.TaskStatus {
	var out []models.TaskStatus
	for _, to := range models.TaskStatuses {
		if IsLegal(from, to) {
			out = append(out, to)
		}
	}
	return out
}

type gate int

const (
	gateParticipant gate = iota
	gateAssignee
	gateReviewer
)

type edge struct {
	from, to models.TaskStatus
}

// plainAdvances are moves reserved for the people the task is assigned to.
var plainAdvances = map[edge]struct{}{
	{models.TaskStatusTodo, models.TaskStatusInProgress}:          {},
	{models.TaskStatusInProgress, models.TaskStatusPendingReview}: {},
	{models.TaskStatusBlocked, models.TaskStatusInProgress}:       {},
	{models.TaskStatusBlocked, models.TaskStatusTodo}:             {},
}

func gateFor(from, to models.TaskStatus) gate {
	if from == models.TaskStatusPendingReview &&
		(to == models.TaskStatusDone || to == models.TaskStatusInProgress) {
		return gateReviewer
	}
	if _, ok := plainAdvances[edge{from, to}]; ok {
		return gateAssignee
	}
	return gateParticipant
}
