package workflow

import (
	"errors"
	"fmt"

	"github.com/yukikurage/taskboard/internal/models"
)

var (
	ErrReasonRequired = errors.New("a reason is required for this transition")
	ErrUnknownStatus  = errors.New("unknown task status")
	ErrNoActor        = errors.New("an acting user is required")
)

// IllegalTransitionError is returned when the transition table does not
// allow the requested move.
type IllegalTransitionError struct {
	From models.TaskStatus
	To   models.TaskStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("cannot move task from %q to %q", e.From, e.To)
}

// ForbiddenTransitionError is returned when the move is legal in principle
// but the acting user may not make it.
type ForbiddenTransitionError struct {
	ActorID string
	From    models.TaskStatus
	To      models.TaskStatus
	Reason  string
}

func (e *ForbiddenTransitionError) Error() string {
	return fmt.Sprintf("user %s may not move task from %q to %q: %s", e.ActorID, e.From, e.To, e.Reason)
}

// IsIllegal reports whether err is or wraps an IllegalTransitionError.
func IsIllegal(err error) bool {
	var target *IllegalTransitionError
	return errors.As(err, &target)
}

// IsForbidden reports whether err is or wraps a ForbiddenTransitionError.
func IsForbidden(err error) bool {
	var target *ForbiddenTransitionError
	return errors.As(err, &target)
}
