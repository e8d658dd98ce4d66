package repository

import (
	"context"

	"github.com/yukikurage/taskboard/internal/models"
)

// StoreTeamRepository keeps teams under KeyTeams.
type StoreTeamRepository struct {
	store Store
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(store Store) TeamRepository {
	return &StoreTeamRepository{store: store}
}

func (r *StoreTeamRepository) LoadAll(ctx context.Context) ([]models.Team, error) {
	var teams []models.Team
	if err := r.store.Load(ctx, KeyTeams, &teams); err != nil {
		return []models.Team{}, err
	}
	if teams == nil {
		teams = []models.Team{}
	}
	return teams, nil
}

func (r *StoreTeamRepository) SaveAll(ctx context.Context, teams []models.Team) error {
	if teams == nil {
		teams = []models.Team{}
	}
	return r.store.Save(ctx, KeyTeams, teams)
}
