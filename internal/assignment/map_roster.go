package assignment

import "github.com/yukikurage/taskboard/internal/models"

// MapRoster is a Roster backed by plain maps. It is a snapshot: callers
// must not mutate it while it is being read concurrently.
type MapRoster struct {
	Users map[string]models.User
	Teams map[string]models.Team
}

// NewMapRoster builds a MapRoster from slices of users and teams.
func NewMapRoster(users []models.User, teams []models.Team) *MapRoster {
	r := &MapRoster{
		Users: make(map[string]models.User, len(users)),
		Teams: make(map[string]models.Team, len(teams)),
	}
	for _, u := range users {
		r.Users[u.ID] = u
	}
	for _, t := range teams {
		r.Teams[t.ID] = t
	}
	return r
}

func (r *MapRoster) User(id string) (models.User, bool) {
	u, ok := r.Users[id]
	return u, ok
}

func (r *MapRoster) Team(id string) (models.Team, bool) {
	t, ok := r.Teams[id]
	return t, ok
}
