package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/yukikurage/taskboard/internal/assignment"
	"github.com/yukikurage/taskboard/internal/board"
	"github.com/yukikurage/taskboard/internal/dragdrop"
	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/notify"
	"github.com/yukikurage/taskboard/internal/repository"
	"github.com/yukikurage/taskboard/internal/tasks"
	"github.com/yukikurage/taskboard/internal/workflow"
	"go.uber.org/zap"
)

// TaskService owns the task collection. The in-memory collection is the
// source of truth; every change is saved afterwards on a best-effort basis
// and never rolled back when the save fails.
type TaskService struct {
	mu       sync.Mutex
	tasks    []models.Task
	repo     repository.TaskRepository
	roster   *Roster
	engine   *workflow.Engine
	notifier notify.Notifier
	log      *zap.Logger
	now      func() time.Time
}

var _ dragdrop.Mover = (*TaskService)(nil)

type TaskServiceOption func(*TaskService)

// WithTaskClock overrides the time source.
func WithTaskClock(now func() time.Time) TaskServiceOption {
	return func(s *TaskService) {
		s.now = now
	}
}

// NewTaskService creates a new TaskService
func NewTaskService(repo repository.TaskRepository, roster *Roster, notifier notify.Notifier, log *zap.Logger, opts ...TaskServiceOption) *TaskService {
	s := &TaskService{
		tasks:    []models.Task{},
		repo:     repo,
		roster:   roster,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = workflow.NewEngine(roster, workflow.WithClock(s.now))
	return s
}

// Engine exposes the transition engine bound to this service's roster.
func (s *TaskService) Engine() *workflow.Engine {
	return s.engine
}

// Load replaces the collection with the saved one. A missing or corrupt
// document starts an empty board.
func (s *TaskService) Load(ctx context.Context) error {
	loaded, err := s.repo.LoadAll(ctx)
	switch {
	case errors.Is(err, repository.ErrCorruptValue):
		s.log.Warn("saved tasks are corrupt, starting with an empty board", zap.Error(err))
	case err != nil && !errors.Is(err, repository.ErrKeyNotFound):
		return fmt.Errorf("failed to load tasks: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = loaded
	s.log.Info("tasks loaded", zap.Int("count", len(loaded)))
	return nil
}

// Mutation is the result of a change: the task as stored in memory and, if
// saving failed, a warning for the caller.
type Mutation struct {
	Task    models.Task
	Warning string
}

// Snapshot returns a deep copy of every task.
func (s *TaskService) Snapshot() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Viewer models.User
	Filter board.Filter
}

// ListTasks returns tasks matching the filter, newest first.
func (s *TaskService) ListTasks(input ListTasksInput) []models.Task {
	viewer := board.Viewer{User: input.Viewer, Roster: s.roster, Now: s.now()}

	var out []models.Task
	for _, t := range s.Snapshot() {
		if input.Filter.Match(t, viewer) {
			out = append(out, t)
		}
	}
	key := input.Filter.SortKey
	slices.SortStableFunc(out, func(a, b models.Task) int {
		at, bt := a.CreatedAt, b.CreatedAt
		if key == board.SortByUpdated {
			at, bt = a.UpdatedAt, b.UpdatedAt
		}
		if c := bt.Compare(at); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if out == nil {
		out = []models.Task{}
	}
	return out
}

// GetTask returns one task by id.
func (s *TaskService) GetTask(id string) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.Task{}, ErrTaskNotFound
	}
	return s.tasks[i].Clone(), nil
}

// CreateTask adds a task to the todo column.
func (s *TaskService) CreateTask(ctx context.Context, input tasks.CreateInput, actor models.User) (*Mutation, error) {
	task, err := tasks.Create(input, tasks.Actor{ID: actor.ID, Name: actor.DisplayName()}, s.roster, s.now())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.tasks = append(s.tasks, task)
	warning := s.persistLocked(ctx)
	s.mu.Unlock()

	s.notifier.Notify("New task", fmt.Sprintf("%s assigned %q to %s", actor.DisplayName(), task.Title, task.AssigneeName))
	return &Mutation{Task: task.Clone(), Warning: warning}, nil
}

// UpdateTask applies patch to the task. Only the creator, an assignee or a
// reviewer may edit.
func (s *TaskService) UpdateTask(ctx context.Context, id string, patch tasks.Patch, actor models.User) (*Mutation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, ErrTaskNotFound
	}
	if !s.canModify(s.tasks[i], actor) {
		return nil, ErrTaskAccessDenied
	}

	updated, err := tasks.Edit(s.tasks[i], patch, s.roster, s.now())
	if err != nil {
		return nil, err
	}
	s.tasks[i] = updated
	return &Mutation{Task: updated.Clone(), Warning: s.persistLocked(ctx)}, nil
}

// DeleteTask removes a task.
func (s *TaskService) DeleteTask(ctx context.Context, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return "", ErrTaskNotFound
	}
	s.tasks = slices.Delete(s.tasks, i, i+1)
	return s.persistLocked(ctx), nil
}

// MoveTask runs a status transition through the workflow engine, saves the
// collection and notifies about the change.
func (s *TaskService) MoveTask(ctx context.Context, taskID string, actor workflow.Actor, to models.TaskStatus, comment string) (*dragdrop.Move, error) {
	return s.move(ctx, taskID, actor, "", to, comment)
}

// MoveTaskFrom is MoveTask for a drop: it fails with dragdrop.ErrStaleDrag
// unless the task is still in status from.
func (s *TaskService) MoveTaskFrom(ctx context.Context, taskID string, actor workflow.Actor, from, to models.TaskStatus, comment string) (*dragdrop.Move, error) {
	return s.move(ctx, taskID, actor, from, to, comment)
}

// move applies the transition. An empty from accepts any current status.
func (s *TaskService) move(ctx context.Context, taskID string, actor workflow.Actor, from, to models.TaskStatus, comment string) (*dragdrop.Move, error) {
	s.mu.Lock()
	i := s.indexOf(taskID)
	if i < 0 {
		s.mu.Unlock()
		return nil, ErrTaskNotFound
	}
	if current := s.tasks[i].Status; from != "" && current != from {
		s.mu.Unlock()
		s.log.Info("stale drop rejected",
			zap.String("task_id", taskID),
			zap.String("actor_id", actor.ID),
			zap.String("picked_up_in", string(from)),
			zap.String("now_in", string(current)),
		)
		return nil, fmt.Errorf("%w: picked up in %s, now in %s", dragdrop.ErrStaleDrag, from, current)
	}

	result, err := s.engine.Transition(s.tasks[i], workflow.Request{Actor: actor, To: to, Comment: comment})
	if err != nil {
		s.mu.Unlock()
		s.log.Info("transition rejected",
			zap.String("task_id", taskID),
			zap.String("actor_id", actor.ID),
			zap.String("to", string(to)),
			zap.Error(err),
		)
		return nil, err
	}
	if !result.Applied {
		s.mu.Unlock()
		return &dragdrop.Move{Result: result}, nil
	}

	s.tasks[i] = result.Task
	warning := s.persistLocked(ctx)
	s.mu.Unlock()

	s.log.Info("task moved",
		zap.String("task_id", taskID),
		zap.String("actor_id", actor.ID),
		zap.String("from", string(result.From)),
		zap.String("to", string(result.To)),
	)
	s.notifier.Notify(transitionTitle(result.From, result.To), s.transitionMessage(actor.ID, result))

	result.Task = result.Task.Clone()
	return &dragdrop.Move{Result: result, Warning: warning}, nil
}

// AllowedTransitions lists the statuses actor may move the task to.
func (s *TaskService) AllowedTransitions(taskID string, actor workflow.Actor) ([]models.TaskStatus, error) {
	task, err := s.GetTask(taskID)
	if err != nil {
		return nil, err
	}
	allowed := s.engine.Allowed(task, actor)
	if allowed == nil {
		allowed = []models.TaskStatus{}
	}
	return allowed, nil
}

// RefreshAssigneeNames recomputes every cached assignee label against the
// current roster and returns how many changed.
func (s *TaskService) RefreshAssigneeNames(ctx context.Context) int {
	snapshot := s.roster.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for i := range s.tasks {
		if tasks.RefreshAssigneeName(&s.tasks[i], snapshot) {
			changed++
		}
	}
	if changed > 0 {
		s.persistLocked(ctx)
		s.log.Info("assignee names refreshed", zap.Int("changed", changed))
	}
	return changed
}

// CanModify reports whether user may edit the task.
func (s *TaskService) CanModify(task models.Task, user models.User) bool {
	return s.canModify(task, user)
}

func (s *TaskService) canModify(task models.Task, user models.User) bool {
	if task.CreatedBy == user.ID {
		return true
	}
	actor := workflow.Actor{ID: user.ID, Role: user.Role}
	return assignment.IsMember(task.Assignee, user.ID, s.roster) || s.engine.IsReviewer(task, actor)
}

func (s *TaskService) indexOf(id string) int {
	return slices.IndexFunc(s.tasks, func(t models.Task) bool { return t.ID == id })
}

// persistLocked saves the collection. Callers hold s.mu. A failure is logged
// and returned as a warning; the in-memory change stays.
func (s *TaskService) persistLocked(ctx context.Context) string {
	out := make([]models.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	if err := s.repo.SaveAll(ctx, out); err != nil {
		s.log.Warn("tasks changed in memory but could not be saved", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrPersistence, err).Error()
	}
	return ""
}

func transitionTitle(from, to models.TaskStatus) string {
	switch {
	case to == models.TaskStatusPendingReview:
		return "Task ready for review"
	case from == models.TaskStatusPendingReview && to == models.TaskStatusDone:
		return "Task approved"
	case from == models.TaskStatusPendingReview && to == models.TaskStatusInProgress:
		return "Task sent back"
	case to == models.TaskStatusBlocked:
		return "Task blocked"
	default:
		return "Task moved"
	}
}

func (s *TaskService) transitionMessage(actorID string, r workflow.Result) string {
	name := actorID
	if u, ok := s.roster.User(actorID); ok {
		name = u.DisplayName()
	}
	msg := fmt.Sprintf("%s moved %q from %s to %s", name, r.Task.Title, r.From.Label(), r.To.Label())
	if r.To == models.TaskStatusBlocked || (r.From == models.TaskStatusPendingReview && r.To == models.TaskStatusInProgress) {
		msg += ": " + r.Task.ReviewComment
	}
	return msg
}
