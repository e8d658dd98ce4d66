package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/repository"
	"github.com/yukikurage/taskboard/internal/workflow"
	"go.uber.org/zap"
)

// flakyStore fails every Save while failing is set.
type flakyStore struct {
	repository.Store
	failing atomic.Bool
}

func (s *flakyStore) Save(ctx context.Context, key string, value any) error {
	if s.failing.Load() {
		return errors.New("disk full")
	}
	return s.Store.Save(ctx, key, value)
}

type sentNote struct {
	Title   string
	Message string
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []sentNote
}

func (n *recordingNotifier) Notify(title, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, sentNote{Title: title, Message: message})
}

func (n *recordingNotifier) Titles() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.notes))
	for i, note := range n.notes {
		out[i] = note.Title
	}
	return out
}

// serviceSuite wires every service over one in-memory store with a fixed
// clock. Seeded users: alice (member), bob (manager), carol (member),
// dave (member, leader of Platform), root (admin). Platform has alice.
type serviceSuite struct {
	suite.Suite
	ctx      context.Context
	clock    time.Time
	store    *flakyStore
	notifier *recordingNotifier
	roster   *Roster
	tasks    *TaskService
	auth     *AuthService
	teams    *TeamService
	board    *BoardService
	users    map[string]models.User
	platform models.Team
}

func (suite *serviceSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.clock = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	suite.store = &flakyStore{Store: repository.NewMemoryStore()}
	suite.notifier = &recordingNotifier{}
	log := zap.NewNop()

	suite.roster = NewRoster(repository.NewUserRepository(suite.store), repository.NewTeamRepository(suite.store), log)
	suite.tasks = NewTaskService(repository.NewTaskRepository(suite.store), suite.roster, suite.notifier, log,
		WithTaskClock(func() time.Time { return suite.clock }))
	suite.auth = NewAuthService(suite.roster, suite.tasks)
	suite.teams = NewTeamService(suite.roster, suite.tasks)
	suite.board = NewBoardService(suite.tasks, suite.roster, repository.NewPreferenceRepository(suite.store), log)

	suite.users = map[string]models.User{
		"alice": {ID: "u1", Username: "alice", Name: "Alice", Role: models.RoleMember},
		"bob":   {ID: "u2", Username: "bob", Name: "Bob", Role: models.RoleManager},
		"carol": {ID: "u3", Username: "carol", Name: "Carol", Role: models.RoleMember},
		"dave":  {ID: "u4", Username: "dave", Name: "Dave", Role: models.RoleMember},
		"root":  {ID: "u5", Username: "root", Name: "Root", Role: models.RoleAdmin},
	}
	suite.platform = models.Team{ID: "t1", Name: "Platform", MemberIDs: []string{"u1", "u4"}, LeaderID: "u4", InviteCode: "ABCD-EFGH-JKMN"}

	err := suite.roster.Update(suite.ctx, func(tx *RosterTx) error {
		for _, u := range suite.users {
			if u.ID == "u1" || u.ID == "u4" {
				u.TeamIDs = []string{"t1"}
			}
			tx.PutUser(u)
		}
		tx.PutTeam(suite.platform)
		return nil
	})
	suite.Require().NoError(err)
	for name := range suite.users {
		u, ok := suite.roster.UserByUsername(name)
		suite.Require().True(ok)
		suite.users[name] = u
	}
}

func (suite *serviceSuite) user(name string) models.User {
	u, ok := suite.users[name]
	suite.Require().True(ok, "unknown fixture user %s", name)
	return u
}

func (suite *serviceSuite) actor(name string) workflow.Actor {
	u := suite.user(name)
	return workflow.Actor{ID: u.ID, Role: u.Role}
}
