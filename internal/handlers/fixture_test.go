package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/taskboard/internal/constants"
	"github.com/yukikurage/taskboard/internal/middleware"
	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/notify"
	"github.com/yukikurage/taskboard/internal/permissions"
	"github.com/yukikurage/taskboard/internal/repository"
	"github.com/yukikurage/taskboard/internal/services"
	"github.com/yukikurage/taskboard/internal/tasks"
	"go.uber.org/zap"
)

const testUserHeader = "X-Test-User"

// handlerSuite serves the handlers over in-memory services. Requests pick
// their caller with the X-Test-User header instead of a session.
// Seeded users: alice (member of Platform), bob (manager), carol (member),
// dave (member, leader of Platform).
type handlerSuite struct {
	suite.Suite
	ctx    context.Context
	clock  time.Time
	roster *services.Roster
	tasks  *services.TaskService
	auth   *services.AuthService
	teams  *services.TeamService
	board  *services.BoardService
	router *gin.Engine
}

func (suite *handlerSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.ctx = context.Background()
	suite.clock = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	store := repository.NewMemoryStore()
	log := zap.NewNop()

	suite.roster = services.NewRoster(repository.NewUserRepository(store), repository.NewTeamRepository(store), log)
	suite.tasks = services.NewTaskService(repository.NewTaskRepository(store), suite.roster, notify.Nop{}, log,
		services.WithTaskClock(func() time.Time { return suite.clock }))
	suite.auth = services.NewAuthService(suite.roster, suite.tasks)
	suite.teams = services.NewTeamService(suite.roster, suite.tasks)
	suite.board = services.NewBoardService(suite.tasks, suite.roster, repository.NewPreferenceRepository(store), log)

	err := suite.roster.Update(suite.ctx, func(tx *services.RosterTx) error {
		tx.PutUser(models.User{ID: "u1", Username: "alice", Name: "Alice", Role: models.RoleMember, TeamIDs: []string{"t1"}})
		tx.PutUser(models.User{ID: "u2", Username: "bob", Name: "Bob", Role: models.RoleManager})
		tx.PutUser(models.User{ID: "u3", Username: "carol", Name: "Carol", Role: models.RoleMember})
		tx.PutUser(models.User{ID: "u4", Username: "dave", Name: "Dave", Role: models.RoleMember, TeamIDs: []string{"t1"}})
		tx.PutTeam(models.Team{ID: "t1", Name: "Platform", MemberIDs: []string{"u1", "u4"}, LeaderID: "u4", InviteCode: "ABCD-EFGH-JKMN"})
		return nil
	})
	suite.Require().NoError(err)

	suite.router = suite.newRouter()
}

func (suite *handlerSuite) newRouter() *gin.Engine {
	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	r.Use(func(c *gin.Context) {
		if name := c.GetHeader(testUserHeader); name != "" {
			if u, ok := suite.roster.UserByUsername(name); ok {
				c.Set(constants.ContextKeyUserID, u.ID)
				c.Set(constants.ContextKeyUser, u)
			}
		}
		c.Next()
	})

	taskHandler := NewTaskHandler(suite.tasks, services.NewMessageConverter(services.HeuristicExtractor{}, suite.tasks, suite.roster, zap.NewNop()))
	boardHandler := NewBoardHandler(suite.board)
	teamHandler := NewTeamHandler(suite.teams)
	requireTask := middleware.RequireTask(suite.tasks)

	r.GET("/api/tasks", taskHandler.ListTasks)
	r.POST("/api/tasks", taskHandler.CreateTask)
	r.POST("/api/tasks/convert", taskHandler.ConvertMessage)
	r.GET("/api/tasks/:id", requireTask, taskHandler.GetTask)
	r.PATCH("/api/tasks/:id", requireTask, taskHandler.UpdateTask)
	r.DELETE("/api/tasks/:id", requireTask, taskHandler.DeleteTask)
	r.POST("/api/tasks/:id/move", requireTask, taskHandler.MoveTask)
	r.GET("/api/tasks/:id/transitions", requireTask, taskHandler.Transitions)

	r.GET("/api/board", boardHandler.GetBoard)
	r.GET("/api/board/filters", boardHandler.GetFilter)
	r.PUT("/api/board/filters", boardHandler.SaveFilter)
	r.POST("/api/board/drag", boardHandler.BeginDrag)
	r.GET("/api/board/drag", boardHandler.CurrentDrag)
	r.DELETE("/api/board/drag", boardHandler.CancelDrag)
	r.POST("/api/board/drop", boardHandler.Drop)

	r.POST("/api/teams", middleware.RequirePermission(permissions.ManageTeams), teamHandler.CreateTeam)
	r.GET("/api/teams", teamHandler.ListTeams)
	r.POST("/api/teams/join", teamHandler.JoinTeam)
	r.GET("/api/teams/:id", teamHandler.GetTeam)
	r.PUT("/api/teams/:id", middleware.RequireTeamManager(suite.teams), teamHandler.RenameTeam)
	r.POST("/api/teams/:id/members", middleware.RequireTeamManager(suite.teams), teamHandler.AddMember)
	r.DELETE("/api/teams/:id/members/:userId", middleware.RequireTeamManager(suite.teams), teamHandler.RemoveMember)
	return r
}

// do sends a JSON request as the named user; an empty name is anonymous.
func (suite *handlerSuite) do(method, url, as string, body any) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		req = httptest.NewRequest(method, url, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	if as != "" {
		req.Header.Set(testUserHeader, as)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *handlerSuite) decode(w *httptest.ResponseRecorder, dest any) {
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), dest), w.Body.String())
}

func (suite *handlerSuite) user(name string) models.User {
	u, ok := suite.roster.UserByUsername(name)
	suite.Require().True(ok, "unknown fixture user %s", name)
	return u
}

// createTask creates a task as the named user through the service.
func (suite *handlerSuite) createTask(as, title string, assignee models.Assignee) models.Task {
	m, err := suite.tasks.CreateTask(suite.ctx, tasks.CreateInput{Title: title, Assignee: assignee}, suite.user(as))
	suite.Require().NoError(err)
	return m.Task
}

func (suite *handlerSuite) errorCode(w *httptest.ResponseRecorder) string {
	var body struct {
		Code string `json:"code"`
	}
	suite.decode(w, &body)
	return body.Code
}

func patchDue(due time.Time) tasks.Patch {
	return tasks.Patch{DueDate: &due}
}
