package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/taskboard/internal/models"
)

func TestAllowed(t *testing.T) {
	tests := []struct {
		role    models.UserRole
		feature Feature
		want    bool
	}{
		{models.RoleMember, CreateTask, true},
		{models.RoleMember, DeleteTask, false},
		{models.RoleMember, ManageTeams, false},
		{models.RoleManager, DeleteTask, true},
		{models.RoleManager, ManageUsers, false},
		{models.RoleAdmin, ManageUsers, true},
		{"guest", CreateTask, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Allowed(tt.role, tt.feature), "%s/%s", tt.role, tt.feature)
	}
}

func TestForUser(t *testing.T) {
	anon := ForUser(nil)
	_, ok := anon.CurrentUser()
	assert.False(t, ok)
	assert.False(t, anon.HasPermission(CreateTask))

	u := &models.User{ID: "u1", Role: models.RoleManager}
	c := ForUser(u)
	got, ok := c.CurrentUser()
	assert.True(t, ok)
	assert.Equal(t, "u1", got.ID)
	assert.True(t, c.HasPermission(ManageTeams))
}
