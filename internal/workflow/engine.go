package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/taskboard/internal/assignment"
	"github.com/yukikurage/taskboard/internal/models"
)

// DefaultCompletionComment is recorded when a task is submitted for review
// without a comment.
const DefaultCompletionComment = "Marked as complete"

// Actor is the user asking for a transition.
type Actor struct {
	ID   string
	Role models.UserRole
}

// Request describes a transition. Comment carries the completion note,
// approval note, rejection reason or block reason depending on the move.
type Request struct {
	Actor   Actor
	To      models.TaskStatus
	Comment string
}

// Result is the outcome of a transition. Applied is false when the task was
// already in the requested status; Task is then returned untouched.
type Result struct {
	Task    models.Task
	From    models.TaskStatus
	To      models.TaskStatus
	Applied bool
}

type Option func(*Engine)

// WithClock overrides the time source used for UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// Engine applies status transitions.
type Engine struct {
	roster assignment.Roster
	now    func() time.Time
}

// NewEngine creates an Engine that resolves assignees and team leaders
// through roster.
func NewEngine(roster assignment.Roster, opts ...Option) *Engine {
	e := &Engine{
		roster: roster,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Transition moves task to req.To. The input task is never modified; on
// any error the returned Result carries the original task.
func (e *Engine) Transition(task models.Task, req Request) (Result, error) {
	from := task.Status
	to := req.To
	result := Result{Task: task, From: from, To: to}

	if !to.IsValid() {
		return result, fmt.Errorf("%w: %q", ErrUnknownStatus, to)
	}
	if req.Actor.ID == "" {
		return result, ErrNoActor
	}
	if from == to {
		return result, nil
	}

	if err := e.Authorize(task, req.Actor, to); err != nil {
		return result, err
	}
	if !IsLegal(from, to) {
		return result, &IllegalTransitionError{From: from, To: to}
	}

	out := task.Clone()
	if err := applySideEffects(&out, from, to, req); err != nil {
		return result, err
	}
	out.Status = to
	out.UpdatedAt = e.now()

	result.Task = out
	result.Applied = true
	return result, nil
}

// Authorize checks whether actor may move task to the given status.
func (e *Engine) Authorize(task models.Task, actor Actor, to models.TaskStatus) error {
	from := task.Status
	forbid := func(reason string) error {
		return &ForbiddenTransitionError{ActorID: actor.ID, From: from, To: to, Reason: reason}
	}

	member := assignment.IsMember(task.Assignee, actor.ID, e.roster)
	reviewer := e.IsReviewer(task, actor)

	switch gateFor(from, to) {
	case gateAssignee:
		if !member {
			return forbid("only assignees can move this task")
		}
	case gateReviewer:
		if !reviewer {
			return forbid("only reviewers can approve or reject work")
		}
		if task.CompletedBy != "" && task.CompletedBy == actor.ID {
			return forbid("you cannot review your own work")
		}
	default:
		if !member && !reviewer {
			return forbid("you are not assigned to or reviewing this task")
		}
	}
	return nil
}

// IsReviewer reports whether actor may approve or reject task: admins and
// managers review everything, team leaders review their team's tasks.
func (e *Engine) IsReviewer(task models.Task, actor Actor) bool {
	switch actor.Role {
	case models.RoleAdmin, models.RoleManager:
		return true
	}
	teamID, ok := assignment.TeamID(task.Assignee)
	if !ok {
		return false
	}
	team, ok := e.roster.Team(teamID)
	return ok && team.LeaderID != "" && team.LeaderID == actor.ID
}

// Allowed returns the statuses actor may move task to right now.
func (e *Engine) Allowed(task models.Task, actor Actor) []models.TaskStatus {
	var out []models.TaskStatus
	for _, to := range Targets(task.Status) {
		if e.Authorize(task, actor, to) == nil {
			out = append(out, to)
		}
	}
	return out
}

func applySideEffects(t *models.Task, from, to models.TaskStatus, req Request) error {
	comment := strings.TrimSpace(req.Comment)

	switch {
	case to == models.TaskStatusBlocked:
		if comment == "" {
			return ErrReasonRequired
		}
		t.ReviewComment = comment

	case from == models.TaskStatusInProgress && to == models.TaskStatusPendingReview:
		if comment == "" {
			comment = DefaultCompletionComment
		}
		t.CompletedBy = req.Actor.ID
		t.ReviewedBy = ""
		t.ReviewComment = comment

	case from == models.TaskStatusPendingReview && to == models.TaskStatusDone:
		t.ReviewedBy = req.Actor.ID
		if comment != "" {
			t.ReviewComment = comment
		}

	case from == models.TaskStatusPendingReview && to == models.TaskStatusInProgress:
		if comment == "" {
			return ErrReasonRequired
		}
		t.ReviewedBy = req.Actor.ID
		t.ReviewComment = comment
		t.CompletedBy = ""

	case from == models.TaskStatusDone && to == models.TaskStatusInProgress:
		t.CompletedBy = ""
		t.ReviewedBy = ""
	}
	return nil
}
