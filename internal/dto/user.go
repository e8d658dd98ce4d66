package dto

import (
	"time"

	"github.com/yukikurage/taskboard/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       string          `json:"id"`
	Username string          `json:"username"`
	Name     string          `json:"name"`
	Role     models.UserRole `json:"role"`
	TeamIDs  []string        `json:"team_ids"`
}

// TeamDTO represents a team in API responses
type TeamDTO struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	LeaderID   string    `json:"leader_id"`
	MemberIDs  []string  `json:"member_ids"`
	InviteCode string    `json:"invite_code,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// TeamDetailDTO represents a team with its member records
type TeamDetailDTO struct {
	TeamDTO
	Members []UserDTO `json:"members"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	teamIDs := user.TeamIDs
	if teamIDs == nil {
		teamIDs = []string{}
	}
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
		Name:     user.DisplayName(),
		Role:     user.Role,
		TeamIDs:  teamIDs,
	}
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	out := make([]UserDTO, len(users))
	for i, u := range users {
		out[i] = ToUserDTO(u)
	}
	return out
}

// ToTeamDTO converts a Team model. The invite code is only included for
// callers allowed to share it.
func ToTeamDTO(team models.Team, includeInviteCode bool) TeamDTO {
	memberIDs := team.MemberIDs
	if memberIDs == nil {
		memberIDs = []string{}
	}
	dto := TeamDTO{
		ID:        team.ID,
		Name:      team.Name,
		LeaderID:  team.LeaderID,
		MemberIDs: memberIDs,
		CreatedAt: team.CreatedAt,
	}
	if includeInviteCode {
		dto.InviteCode = team.InviteCode
	}
	return dto
}

// ToTeamDetailDTO converts a team with members to TeamDetailDTO
func ToTeamDetailDTO(team models.Team, members []models.User, includeInviteCode bool) TeamDetailDTO {
	return TeamDetailDTO{
		TeamDTO: ToTeamDTO(team, includeInviteCode),
		Members: ToUserDTOs(members),
	}
}

// UserResponse is a changed user with an optional persistence warning
type UserResponse struct {
	UserDTO
	Warning string `json:"warning,omitempty"`
}

// TeamResponse is a changed team with an optional persistence warning
type TeamResponse struct {
	TeamDetailDTO
	Warning string `json:"warning,omitempty"`
}
