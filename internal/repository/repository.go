package repository

import (
	"context"

	"github.com/yukikurage/taskboard/internal/board"
	"github.com/yukikurage/taskboard/internal/models"
)

// TaskRepository persists the whole task collection as one document.
type TaskRepository interface {
	// LoadAll returns the saved tasks. A missing or corrupt document yields
	// an empty slice together with the underlying error.
	LoadAll(ctx context.Context) ([]models.Task, error)

	// SaveAll replaces the saved collection.
	SaveAll(ctx context.Context, tasks []models.Task) error
}

// UserRepository persists the user roster.
type UserRepository interface {
	LoadAll(ctx context.Context) ([]models.User, error)
	SaveAll(ctx context.Context, users []models.User) error
}

// TeamRepository persists the team roster.
type TeamRepository interface {
	LoadAll(ctx context.Context) ([]models.Team, error)
	SaveAll(ctx context.Context, teams []models.Team) error
}

// PreferenceRepository persists per-user board filters.
type PreferenceRepository interface {
	// LoadFilter returns the user's saved filter, or an empty filter and the
	// underlying error when none is usable.
	LoadFilter(ctx context.Context, userID string) (board.Filter, error)

	SaveFilter(ctx context.Context, userID string, f board.Filter) error
}
