package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskboard/internal/board"
	"github.com/yukikurage/taskboard/internal/models"
)

func TestTaskRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	repo := NewTaskRepository(store)

	tasks, err := repo.LoadAll(ctx)
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.Empty(t, tasks)

	due := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	saved := []models.Task{{
		ID:           "t-1",
		Title:        "Migrate",
		Assignee:     models.UserTeamAssignee{UserID: "u1", TeamID: "t1"},
		AssigneeName: "Alice (Ops)",
		Priority:     models.TaskPriorityHigh,
		Status:       models.TaskStatusBlocked,
		Tags:         []string{"db"},
		DueDate:      &due,
		CreatedAt:    due,
		UpdatedAt:    due,
	}}
	require.NoError(t, repo.SaveAll(ctx, saved))

	loaded, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestTaskRepository_CorruptDocumentReadsAsEmpty(t *testing.T) {
	store := NewMemoryStore()
	store.Put(KeyTasks, []byte(`[{"id":"x","status":"archived"}]`))

	tasks, err := NewTaskRepository(store).LoadAll(context.Background())
	assert.ErrorIs(t, err, ErrCorruptValue)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestRosterRepositories(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	users := NewUserRepository(store)
	require.NoError(t, users.SaveAll(ctx, []models.User{{ID: "u1", Username: "alice", Role: models.RoleAdmin}}))
	loadedUsers, err := users.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", loadedUsers[0].Username)

	teams := NewTeamRepository(store)
	require.NoError(t, teams.SaveAll(ctx, nil))
	loadedTeams, err := teams.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Team{}, loadedTeams)
}

func TestPreferenceRepository_PerUserKeys(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	prefs := NewPreferenceRepository(store)

	require.NoError(t, prefs.SaveFilter(ctx, "u1", board.Filter{Scope: board.ScopeMine, Search: "api"}))

	f, err := prefs.LoadFilter(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, board.ScopeMine, f.Scope)
	assert.Equal(t, "api", f.Search)

	_, err = prefs.LoadFilter(ctx, "u2")
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.Equal(t, "filters:u1", FilterKey("u1"))
}
