package repository

import (
	"context"

	"github.com/yukikurage/taskboard/internal/models"
)

// StoreTaskRepository keeps tasks under KeyTasks.
type StoreTaskRepository struct {
	store Store
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(store Store) TaskRepository {
	return &StoreTaskRepository{store: store}
}

func (r *StoreTaskRepository) LoadAll(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.store.Load(ctx, KeyTasks, &tasks); err != nil {
		return []models.Task{}, err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

func (r *StoreTaskRepository) SaveAll(ctx context.Context, tasks []models.Task) error {
	if tasks == nil {
		tasks = []models.Task{}
	}
	return r.store.Save(ctx, KeyTasks, tasks)
}
