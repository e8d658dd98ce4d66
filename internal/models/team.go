package models

import (
	"slices"
	"time"
)

type Team struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	MemberIDs  []string  `json:"member_ids"`
	LeaderID   string    `json:"leader_id"`
	InviteCode string    `json:"invite_code"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// HasMember reports whether userID is a member or the leader of the team.
func (t Team) HasMember(userID string) bool {
	return t.LeaderID == userID || slices.Contains(t.MemberIDs, userID)
}
