// Package assignment turns a task's assignee selection into the people and
// label it stands for, given a snapshot of users and teams.
package assignment

import (
	"fmt"
	"slices"
	"strings"

	"github.com/yukikurage/taskboard/internal/models"
)

// Roster is a read-only view of users and teams.
type Roster interface {
	User(id string) (models.User, bool)
	Team(id string) (models.Team, bool)
}

// ResolveName returns the display label for an assignee. It returns an
// empty string when any referenced user or team is unknown.
func ResolveName(a models.Assignee, roster Roster) string {
	switch v := a.(type) {
	case models.IndividualAssignee:
		names := make([]string, 0, len(v.UserIDs))
		for _, id := range v.UserIDs {
			user, ok := roster.User(id)
			if !ok {
				return ""
			}
			names = append(names, user.DisplayName())
		}
		return strings.Join(names, ", ")
	case models.TeamAssignee:
		team, ok := roster.Team(v.TeamID)
		if !ok {
			return ""
		}
		return team.Name
	case models.UserTeamAssignee:
		user, userOK := roster.User(v.UserID)
		team, teamOK := roster.Team(v.TeamID)
		if !userOK || !teamOK {
			return ""
		}
		return fmt.Sprintf("%s (%s)", user.DisplayName(), team.Name)
	default:
		return ""
	}
}

// Members returns the ids of the users responsible for a task with this
// assignee. Team variants include every member and the leader.
func Members(a models.Assignee, roster Roster) []string {
	var ids []string
	switch v := a.(type) {
	case models.IndividualAssignee:
		ids = slices.Clone(v.UserIDs)
	case models.TeamAssignee:
		ids = teamMembers(v.TeamID, roster)
	case models.UserTeamAssignee:
		ids = append([]string{v.UserID}, teamMembers(v.TeamID, roster)...)
	}
	return unique(ids)
}

// IsMember reports whether userID is one of the assignee's members.
func IsMember(a models.Assignee, userID string, roster Roster) bool {
	return userID != "" && slices.Contains(Members(a, roster), userID)
}

// TeamID returns the team named by the assignee, if any.
func TeamID(a models.Assignee) (string, bool) {
	switch v := a.(type) {
	case models.TeamAssignee:
		return v.TeamID, true
	case models.UserTeamAssignee:
		return v.TeamID, true
	default:
		return "", false
	}
}

func teamMembers(teamID string, roster Roster) []string {
	team, ok := roster.Team(teamID)
	if !ok {
		return nil
	}
	ids := slices.Clone(team.MemberIDs)
	if team.LeaderID != "" {
		ids = append(ids, team.LeaderID)
	}
	return ids
}

func unique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}
