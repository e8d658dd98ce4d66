package repository

import (
	"context"

	"github.com/yukikurage/taskboard/internal/board"
)

// StorePreferenceRepository keeps one filter document per user.
type StorePreferenceRepository struct {
	store Store
}

// NewPreferenceRepository creates a new PreferenceRepository
func NewPreferenceRepository(store Store) PreferenceRepository {
	return &StorePreferenceRepository{store: store}
}

func (r *StorePreferenceRepository) LoadFilter(ctx context.Context, userID string) (board.Filter, error) {
	var f board.Filter
	if err := r.store.Load(ctx, FilterKey(userID), &f); err != nil {
		return board.Filter{}, err
	}
	return f, nil
}

func (r *StorePreferenceRepository) SaveFilter(ctx context.Context, userID string, f board.Filter) error {
	return r.store.Save(ctx, FilterKey(userID), f)
}
