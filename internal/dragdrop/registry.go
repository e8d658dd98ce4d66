package dragdrop

import (
	"context"
	"sync"
	"time"

	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/workflow"
)

// Registry keeps one Session per user in memory.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	mover    Mover
	now      func() time.Time
}

func NewRegistry(mover Mover) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		mover:    mover,
		now:      time.Now,
	}
}

// Begin starts a drag of task for userID.
func (r *Registry) Begin(userID string, task models.Task) Drag {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[userID]
	if !ok {
		s = NewSession()
		r.sessions[userID] = s
	}
	s.BeginDrag(task, r.now())
	d, _ := s.Current()
	return d
}

// Current returns the user's drag in progress and its legal targets.
func (r *Registry) Current(userID string) (Drag, []models.TaskStatus, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[userID]
	if !ok {
		return Drag{}, nil, false
	}
	d, ok := s.Current()
	if !ok {
		return Drag{}, nil, false
	}
	return d, s.DropTargets(), true
}

// CanDropOn reports whether userID's drag may land on target.
func (r *Registry) CanDropOn(userID string, target models.TaskStatus) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[userID]
	return ok && s.CanDropOn(target)
}

// Drop completes userID's drag on target. The session is detached before
// the mover runs so a slow move never blocks other users.
func (r *Registry) Drop(ctx context.Context, userID string, target models.TaskStatus, actor workflow.Actor, comment string) (*Move, error) {
	r.mu.Lock()
	s, ok := r.sessions[userID]
	delete(r.sessions, userID)
	r.mu.Unlock()

	if !ok {
		return nil, ErrNotDragging
	}
	return s.CompleteDrop(ctx, r.mover, target, actor, comment)
}

// Cancel abandons userID's drag, if any.
func (r *Registry) Cancel(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
}
