// Package permissions maps user roles onto the board features they may use.
// Status changes are not listed here; the workflow engine checks those
// against the task itself.
package permissions

import "github.com/yukikurage/taskboard/internal/models"

type Feature string

const (
	CreateTask      Feature = "create_task"
	EditTask        Feature = "edit_task"
	DeleteTask      Feature = "delete_task"
	ManageTeams     Feature = "manage_teams"
	ManageUsers     Feature = "manage_users"
	ConvertMessages Feature = "convert_messages"
)

var roleFeatures = map[models.UserRole]map[Feature]struct{}{
	models.RoleMember: {
		CreateTask:      {},
		EditTask:        {},
		ConvertMessages: {},
	},
	models.RoleManager: {
		CreateTask:      {},
		EditTask:        {},
		DeleteTask:      {},
		ManageTeams:     {},
		ConvertMessages: {},
	},
	models.RoleAdmin: {
		CreateTask:      {},
		EditTask:        {},
		DeleteTask:      {},
		ManageTeams:     {},
		ManageUsers:     {},
		ConvertMessages: {},
	},
}

// Allowed reports whether role grants feature.
func Allowed(role models.UserRole, feature Feature) bool {
	_, ok := roleFeatures[role][feature]
	return ok
}

// Checker answers permission questions for the signed-in user.
type Checker interface {
	CurrentUser() (models.User, bool)
	HasPermission(feature Feature) bool
}

type userChecker struct {
	user *models.User
}

// ForUser returns a Checker for user. A nil user has no permissions.
func ForUser(user *models.User) Checker {
	return userChecker{user: user}
}

func (c userChecker) CurrentUser() (models.User, bool) {
	if c.user == nil {
		return models.User{}, false
	}
	return *c.user, true
}

func (c userChecker) HasPermission(feature Feature) bool {
	return c.user != nil && Allowed(c.user.Role, feature)
}
