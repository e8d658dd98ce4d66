package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/repository"
	"github.com/yukikurage/taskboard/internal/tasks"
	"go.uber.org/zap"
)

func newEmptyAuthService(t *testing.T) (*AuthService, *Roster) {
	t.Helper()
	store := repository.NewMemoryStore()
	roster := NewRoster(repository.NewUserRepository(store), repository.NewTeamRepository(store), zap.NewNop())
	require.NoError(t, roster.Load(context.Background()))
	return NewAuthService(roster, nil), roster
}

func TestSignup_FirstUserBecomesAdmin(t *testing.T) {
	auth, _ := newEmptyAuthService(t)
	ctx := context.Background()

	first, err := auth.Signup(ctx, SignupInput{Username: "alice", Name: "Alice", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, first.Role)
	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, "password123", first.PasswordHash)

	second, err := auth.Signup(ctx, SignupInput{Username: "bob", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, second.Role)
	assert.Equal(t, "bob", second.DisplayName())
}

func TestSignup_Validation(t *testing.T) {
	auth, roster := newEmptyAuthService(t)
	ctx := context.Background()

	_, err := auth.Signup(ctx, SignupInput{Username: " ", Password: "password123"})
	assert.ErrorIs(t, err, ErrUsernameRequired)

	_, err = auth.Signup(ctx, SignupInput{Username: "alice", Password: "short"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = auth.Signup(ctx, SignupInput{Username: "alice", Password: "password123"})
	require.NoError(t, err)
	_, err = auth.Signup(ctx, SignupInput{Username: "alice", Password: "password456"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	assert.Equal(t, 1, roster.UserCount())
}

func TestLogin(t *testing.T) {
	auth, _ := newEmptyAuthService(t)
	ctx := context.Background()

	created, err := auth.Signup(ctx, SignupInput{Username: "alice", Password: "password123"})
	require.NoError(t, err)

	user, err := auth.Login(LoginInput{Username: "alice", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = auth.Login(LoginInput{Username: "alice", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.Login(LoginInput{Username: "nobody", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

type AuthServiceTestSuite struct {
	serviceSuite
}

func (suite *AuthServiceTestSuite) TestChangeRole() {
	updated, err := suite.auth.ChangeRole(suite.ctx, "u1", models.RoleManager)
	suite.Require().NoError(err)
	suite.Equal(models.RoleManager, updated.Role)

	_, err = suite.auth.ChangeRole(suite.ctx, "u1", models.UserRole("owner"))
	suite.ErrorIs(err, ErrInvalidRole)

	_, err = suite.auth.ChangeRole(suite.ctx, "missing", models.RoleMember)
	suite.ErrorIs(err, ErrUserNotFound)
}

func (suite *AuthServiceTestSuite) TestChangeRole_KeepsLastAdmin() {
	_, err := suite.auth.ChangeRole(suite.ctx, "u5", models.RoleMember)
	suite.ErrorIs(err, ErrLastAdmin)

	root, ok := suite.roster.User("u5")
	suite.Require().True(ok)
	suite.Equal(models.RoleAdmin, root.Role)
}

func (suite *AuthServiceTestSuite) TestUpdateProfile_RefreshesAssigneeNames() {
	m, err := suite.tasks.CreateTask(suite.ctx, tasks.CreateInput{
		Title:    "Ship it",
		Assignee: models.IndividualAssignee{UserIDs: []string{"u1"}},
	}, suite.user("bob"))
	suite.Require().NoError(err)

	_, err = suite.auth.UpdateProfile(suite.ctx, "u1", "Alice Liddell")
	suite.Require().NoError(err)

	got, err := suite.tasks.GetTask(m.Task.ID)
	suite.Require().NoError(err)
	suite.Equal("Alice Liddell", got.AssigneeName)
}

func (suite *AuthServiceTestSuite) TestUpdateProfile_SaveFailureIsWarning() {
	suite.store.failing.Store(true)

	updated, err := suite.auth.UpdateProfile(suite.ctx, "u1", "Alice Liddell")
	suite.ErrorIs(err, ErrPersistence)
	suite.NotEmpty(Warning(err))
	suite.Require().NotNil(updated)

	user, ok := suite.roster.User("u1")
	suite.Require().True(ok)
	suite.Equal("Alice Liddell", user.Name)
}

func (suite *AuthServiceTestSuite) TestListUsers_SortedByUsername() {
	var names []string
	for _, u := range suite.auth.ListUsers() {
		names = append(names, u.Username)
	}
	suite.Equal([]string{"alice", "bob", "carol", "dave", "root"}, names)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
