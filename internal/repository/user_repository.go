package repository

import (
	"context"

	"github.com/yukikurage/taskboard/internal/models"
)

// StoreUserRepository keeps users under KeyUsers.
type StoreUserRepository struct {
	store Store
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(store Store) UserRepository {
	return &StoreUserRepository{store: store}
}

func (r *StoreUserRepository) LoadAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.store.Load(ctx, KeyUsers, &users); err != nil {
		return []models.User{}, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (r *StoreUserRepository) SaveAll(ctx context.Context, users []models.User) error {
	if users == nil {
		users = []models.User{}
	}
	return r.store.Save(ctx, KeyUsers, users)
}
