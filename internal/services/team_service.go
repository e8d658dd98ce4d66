package services

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/utils"
)

// TeamService provides business logic for team administration.
type TeamService struct {
	roster    *Roster
	refresher NameRefresher
	now       func() time.Time
}

// NewTeamService creates a new TeamService.
func NewTeamService(roster *Roster, refresher NameRefresher) *TeamService {
	return &TeamService{
		roster:    roster,
		refresher: refresher,
		now:       time.Now,
	}
}

// CreateTeamInput represents parameters to create a new team.
type CreateTeamInput struct {
	Name     string
	LeaderID string
}

// CreateTeam creates a team led by input.LeaderID.
func (s *TeamService) CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidTeamName
	}

	inviteCode, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, ErrInviteCodeGenerationFailed
	}

	now := s.now()
	team := models.Team{
		ID:         uuid.NewString(),
		Name:       name,
		MemberIDs:  []string{},
		LeaderID:   input.LeaderID,
		InviteCode: inviteCode,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = s.roster.Update(ctx, func(tx *RosterTx) error {
		if team.LeaderID != "" {
			leader, ok := tx.User(team.LeaderID)
			if !ok {
				return ErrUserNotFound
			}
			team.MemberIDs = append(team.MemberIDs, leader.ID)
			leader.TeamIDs = appendUnique(leader.TeamIDs, team.ID)
			tx.PutUser(leader)
		}
		tx.PutTeam(team)
		return nil
	})
	if err != nil && !errors.Is(err, ErrPersistence) {
		return nil, err
	}
	return &team, err
}

// ListTeams returns every team.
func (s *TeamService) ListTeams() []models.Team {
	return s.roster.Teams()
}

// GetTeamWithMembers returns a team and its member records.
func (s *TeamService) GetTeamWithMembers(teamID string) (*models.Team, []models.User, error) {
	team, ok := s.roster.Team(teamID)
	if !ok {
		return nil, nil, ErrTeamNotFound
	}

	members := make([]models.User, 0, len(team.MemberIDs))
	for _, id := range team.MemberIDs {
		if u, ok := s.roster.User(id); ok {
			members = append(members, u)
		}
	}
	return &team, members, nil
}

// RenameTeam updates a team's name and refreshes task labels.
func (s *TeamService) RenameTeam(ctx context.Context, teamID, name string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidTeamName
	}

	team, err := s.updateTeam(ctx, teamID, func(tx *RosterTx, team *models.Team) error {
		team.Name = name
		return nil
	})
	if team != nil {
		s.refresh(ctx)
	}
	return team, err
}

// DeleteTeam removes a team and its memberships. Tasks still assigned to
// it keep their assignee but lose their label.
func (s *TeamService) DeleteTeam(ctx context.Context, teamID string) error {
	err := s.roster.Update(ctx, func(tx *RosterTx) error {
		team, ok := tx.Team(teamID)
		if !ok {
			return ErrTeamNotFound
		}
		for _, id := range append(slices.Clone(team.MemberIDs), team.LeaderID) {
			user, ok := tx.User(id)
			if !ok || !user.InTeam(teamID) {
				continue
			}
			user.TeamIDs = remove(user.TeamIDs, teamID)
			tx.PutUser(user)
		}
		tx.DeleteTeam(teamID)
		return nil
	})
	if err != nil && !errors.Is(err, ErrPersistence) {
		return err
	}
	s.refresh(ctx)
	return err
}

// AddMember adds userID to the team.
func (s *TeamService) AddMember(ctx context.Context, teamID, userID string) (*models.Team, error) {
	team, err := s.updateTeam(ctx, teamID, func(tx *RosterTx, team *models.Team) error {
		return addMember(tx, team, userID)
	})
	if team != nil {
		s.refresh(ctx)
	}
	return team, err
}

// RemoveMember removes userID from the team. The leader must be replaced
// before they can leave.
func (s *TeamService) RemoveMember(ctx context.Context, teamID, userID string) (*models.Team, error) {
	team, err := s.updateTeam(ctx, teamID, func(tx *RosterTx, team *models.Team) error {
		if team.LeaderID == userID {
			return ErrCannotRemoveLeader
		}
		if !slices.Contains(team.MemberIDs, userID) {
			return ErrNotTeamMember
		}
		team.MemberIDs = remove(team.MemberIDs, userID)
		if user, ok := tx.User(userID); ok {
			user.TeamIDs = remove(user.TeamIDs, teamID)
			tx.PutUser(user)
		}
		return nil
	})
	if team != nil {
		s.refresh(ctx)
	}
	return team, err
}

// SetLeader makes userID the team leader, adding them as a member if needed.
func (s *TeamService) SetLeader(ctx context.Context, teamID, userID string) (*models.Team, error) {
	return s.updateTeam(ctx, teamID, func(tx *RosterTx, team *models.Team) error {
		if !slices.Contains(team.MemberIDs, userID) {
			if err := addMember(tx, team, userID); err != nil {
				return err
			}
		}
		team.LeaderID = userID
		return nil
	})
}

// JoinByInviteCode adds userID to the team holding code.
func (s *TeamService) JoinByInviteCode(ctx context.Context, userID, code string) (*models.Team, error) {
	target, ok := s.roster.TeamByInviteCode(utils.NormalizeInviteCode(code))
	if !ok {
		return nil, ErrInvalidInviteCode
	}
	return s.AddMember(ctx, target.ID, userID)
}

// RegenerateInviteCode replaces the team's invite code.
func (s *TeamService) RegenerateInviteCode(ctx context.Context, teamID string) (*models.Team, error) {
	inviteCode, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, ErrInviteCodeGenerationFailed
	}
	return s.updateTeam(ctx, teamID, func(tx *RosterTx, team *models.Team) error {
		team.InviteCode = inviteCode
		return nil
	})
}

func (s *TeamService) updateTeam(ctx context.Context, teamID string, fn func(tx *RosterTx, team *models.Team) error) (*models.Team, error) {
	var updated models.Team
	err := s.roster.Update(ctx, func(tx *RosterTx) error {
		team, ok := tx.Team(teamID)
		if !ok {
			return ErrTeamNotFound
		}
		if err := fn(tx, &team); err != nil {
			return err
		}
		team.UpdatedAt = s.now()
		tx.PutTeam(team)
		updated = team
		return nil
	})
	if err != nil && !errors.Is(err, ErrPersistence) {
		return nil, err
	}
	return &updated, err
}

func (s *TeamService) refresh(ctx context.Context) {
	if s.refresher != nil {
		s.refresher.RefreshAssigneeNames(ctx)
	}
}

func addMember(tx *RosterTx, team *models.Team, userID string) error {
	user, ok := tx.User(userID)
	if !ok {
		return ErrUserNotFound
	}
	if slices.Contains(team.MemberIDs, userID) {
		return ErrAlreadyTeamMember
	}
	team.MemberIDs = append(team.MemberIDs, userID)
	user.TeamIDs = appendUnique(user.TeamIDs, team.ID)
	tx.PutUser(user)
	return nil
}

func appendUnique(values []string, v string) []string {
	if slices.Contains(values, v) {
		return values
	}
	return append(values, v)
}

func remove(values []string, v string) []string {
	return slices.DeleteFunc(slices.Clone(values), func(s string) bool { return s == v })
}
