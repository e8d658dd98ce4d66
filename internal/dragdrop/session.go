// Package dragdrop holds the transient pick-up/drop state of the board. It
// never stores tasks; it only remembers which task is in hand and where it
// came from, then hands the drop to a Mover.
package dragdrop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/workflow"
)

var (
	ErrInvalidDrop = errors.New("invalid drop target")
	ErrNotDragging = errors.New("no task is being dragged")
	// ErrStaleDrag means the task changed column after it was picked up.
	ErrStaleDrag = errors.New("task moved since it was picked up")
)

type State string

const (
	StateIdle     State = "idle"
	StateDragging State = "dragging"
)

// Move is what a Mover reports back after applying a drop.
type Move struct {
	workflow.Result
	// Warning is set when the move was applied but could not be saved.
	Warning string
}

// Mover applies an authorized status change to a stored task. The move must
// fail with ErrStaleDrag when the task is no longer in status from.
type Mover interface {
	MoveTaskFrom(ctx context.Context, taskID string, actor workflow.Actor, from, to models.TaskStatus, comment string) (*Move, error)
}

// Drag describes the task in hand.
type Drag struct {
	TaskID    string            `json:"task_id"`
	Title     string            `json:"title"`
	Origin    models.TaskStatus `json:"origin"`
	StartedAt time.Time         `json:"started_at"`
}

// Session is one user's drag state. It is not safe for concurrent use; the
// Registry serialises access per user.
type Session struct {
	state State
	drag  Drag
}

// NewSession returns an idle session.
func NewSession() *Session {
	return &Session{state: StateIdle}
}

func (s *Session) State() State {
	return s.state
}

// Current returns the drag in progress, if any.
func (s *Session) Current() (Drag, bool) {
	if s.state != StateDragging {
		return Drag{}, false
	}
	return s.drag, true
}

// BeginDrag picks up task. Starting a new drag replaces any drag in hand.
func (s *Session) BeginDrag(task models.Task, now time.Time) {
	s.state = StateDragging
	s.drag = Drag{
		TaskID:    task.ID,
		Title:     task.Title,
		Origin:    task.Status,
		StartedAt: now,
	}
}

// CanDropOn reports whether target is a legal column for the task in hand.
// It has no side effects.
func (s *Session) CanDropOn(target models.TaskStatus) bool {
	if s.state != StateDragging {
		return false
	}
	return target != s.drag.Origin && workflow.IsLegal(s.drag.Origin, target)
}

// DropTargets lists the legal columns for the task in hand.
func (s *Session) DropTargets() []models.TaskStatus {
	if s.state != StateDragging {
		return nil
	}
	return workflow.Targets(s.drag.Origin)
}

// CompleteDrop hands the drop to mover. The session is idle afterwards
// whatever the outcome.
func (s *Session) CompleteDrop(ctx context.Context, mover Mover, target models.TaskStatus, actor workflow.Actor, comment string) (*Move, error) {
	defer s.CancelDrag()

	if s.state != StateDragging {
		return nil, ErrNotDragging
	}
	if !s.CanDropOn(target) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDrop,
			&workflow.IllegalTransitionError{From: s.drag.Origin, To: target})
	}
	return mover.MoveTaskFrom(ctx, s.drag.TaskID, actor, s.drag.Origin, target, comment)
}

// CancelDrag drops whatever is in hand without touching any task. It is
// always safe to call.
func (s *Session) CancelDrag() {
	s.state = StateIdle
	s.drag = Drag{}
}
