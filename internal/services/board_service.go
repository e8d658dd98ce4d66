package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yukikurage/taskboard/internal/board"
	"github.com/yukikurage/taskboard/internal/dragdrop"
	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/repository"
	"github.com/yukikurage/taskboard/internal/workflow"
	"go.uber.org/zap"
)

// BoardService renders the kanban board, keeps saved filters and runs the
// drag protocol for each user.
type BoardService struct {
	tasks  *TaskService
	roster *Roster
	prefs  repository.PreferenceRepository
	drags  *dragdrop.Registry
	log    *zap.Logger
	now    func() time.Time
}

// NewBoardService creates a new BoardService. Drops are applied through
// taskService.
func NewBoardService(taskService *TaskService, roster *Roster, prefs repository.PreferenceRepository, log *zap.Logger) *BoardService {
	return &BoardService{
		tasks:  taskService,
		roster: roster,
		prefs:  prefs,
		drags:  dragdrop.NewRegistry(taskService),
		log:    log,
		now:    taskService.now,
	}
}

// BoardView is a rendered board and the instant it was rendered at, which
// urgency labels are computed against.
type BoardView struct {
	Columns    board.Columns
	RenderedAt time.Time
}

// Board groups the tasks visible to user under filter into columns.
func (s *BoardService) Board(user models.User, filter board.Filter) (*BoardView, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	now := s.now()
	viewer := board.Viewer{User: user, Roster: s.roster.Snapshot(), Now: now}
	return &BoardView{
		Columns:    board.GroupByStatus(s.tasks.Snapshot(), filter, viewer),
		RenderedAt: now,
	}, nil
}

// SavedFilter returns the user's stored filter. Users without one, or with
// an unreadable one, get the empty filter.
func (s *BoardService) SavedFilter(ctx context.Context, userID string) (board.Filter, error) {
	f, err := s.prefs.LoadFilter(ctx, userID)
	if err == nil {
		return f, nil
	}
	if repository.IsMissing(err) {
		return board.Filter{}, nil
	}
	return board.Filter{}, fmt.Errorf("failed to load filter: %w", err)
}

// SaveFilter stores filter as the user's default board view.
func (s *BoardService) SaveFilter(ctx context.Context, userID string, filter board.Filter) error {
	if err := filter.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	if err := s.prefs.SaveFilter(ctx, userID, filter); err != nil {
		s.log.Warn("filter could not be saved", zap.String("user_id", userID), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// BeginDrag picks up a task for user. Any drag already in progress for the
// user is replaced.
func (s *BoardService) BeginDrag(user models.User, taskID string) (dragdrop.Drag, []models.TaskStatus, error) {
	task, err := s.tasks.GetTask(taskID)
	if err != nil {
		return dragdrop.Drag{}, nil, err
	}
	s.drags.Begin(user.ID, task)
	drag, targets, _ := s.drags.Current(user.ID)
	return drag, targets, nil
}

// CurrentDrag returns the user's drag in progress.
func (s *BoardService) CurrentDrag(userID string) (dragdrop.Drag, []models.TaskStatus, bool) {
	return s.drags.Current(userID)
}

// Drop lands the user's drag on target and ends it whatever the outcome.
func (s *BoardService) Drop(ctx context.Context, user models.User, target models.TaskStatus, comment string) (*dragdrop.Move, error) {
	actor := workflow.Actor{ID: user.ID, Role: user.Role}
	return s.drags.Drop(ctx, user.ID, target, actor, comment)
}

// CancelDrag abandons the user's drag.
func (s *BoardService) CancelDrag(userID string) {
	s.drags.Cancel(userID)
}
