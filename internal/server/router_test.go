package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/taskboard/internal/dto"
	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/notify"
	"github.com/yukikurage/taskboard/internal/repository"
	"github.com/yukikurage/taskboard/internal/services"
	"go.uber.org/zap"
)

type RouterTestSuite struct {
	suite.Suite
	router  *gin.Engine
	auth    *services.AuthService
	cookies map[string][]*http.Cookie
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func (suite *RouterTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	store := repository.NewMemoryStore()
	log := zap.NewNop()

	roster := services.NewRoster(repository.NewUserRepository(store), repository.NewTeamRepository(store), log)
	taskService := services.NewTaskService(repository.NewTaskRepository(store), roster, notify.Nop{}, log)
	suite.auth = services.NewAuthService(roster, taskService)

	suite.router = NewRouter(log, cookie.NewStore([]byte("secret")), Services{
		Auth:      suite.auth,
		Teams:     services.NewTeamService(roster, taskService),
		Tasks:     taskService,
		Board:     services.NewBoardService(taskService, roster, repository.NewPreferenceRepository(store), log),
		Converter: services.NewMessageConverter(services.HeuristicExtractor{}, taskService, roster, log),
	})
	suite.cookies = map[string][]*http.Cookie{}
}

func (suite *RouterTestSuite) do(method, url, as string, body any) *httptest.ResponseRecorder {
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		suite.Require().NoError(err)
	}
	req := httptest.NewRequest(method, url, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range suite.cookies[as] {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// signup registers and logs in username, keeping its session cookie.
func (suite *RouterTestSuite) signup(username string) dto.UserDTO {
	creds := map[string]string{"username": username, "password": "supersecret"}
	w := suite.do(http.MethodPost, "/api/auth/signup", "", creds)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = suite.do(http.MethodPost, "/api/auth/login", "", creds)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.cookies[username] = w.Result().Cookies()

	var user dto.UserDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &user))
	return user
}

func (suite *RouterTestSuite) TestHealth() {
	w := suite.do(http.MethodGet, "/health", "", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.NotEmpty(w.Header().Get("X-Request-ID"))
}

func (suite *RouterTestSuite) TestProtectedRoutesNeedSession() {
	for _, url := range []string{"/api/tasks", "/api/board", "/api/teams", "/api/users", "/api/auth/me"} {
		w := suite.do(http.MethodGet, url, "", nil)
		suite.Equal(http.StatusUnauthorized, w.Code, url)
	}
}

func (suite *RouterTestSuite) TestTaskLifecycle() {
	admin := suite.signup("admin")
	member := suite.signup("member")
	suite.Equal(models.RoleAdmin, admin.Role)

	w := suite.do(http.MethodPost, "/api/tasks", "admin", map[string]any{
		"title":    "Ship it",
		"assignee": map[string]any{"kind": "individual", "user_ids": []string{member.ID}},
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var created dto.TaskResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))
	taskURL := "/api/tasks/" + created.Task.ID

	w = suite.do(http.MethodPost, "/api/board/drag", "member", map[string]any{"task_id": created.Task.ID})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	w = suite.do(http.MethodPost, "/api/board/drop", "member", map[string]any{"status": "in-progress"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = suite.do(http.MethodPost, taskURL+"/move", "member", map[string]any{"status": "pending-review", "comment": "Done"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = suite.do(http.MethodPost, taskURL+"/move", "member", map[string]any{"status": "done"})
	suite.Equal(http.StatusForbidden, w.Code, "members cannot approve")

	w = suite.do(http.MethodPost, taskURL+"/move", "admin", map[string]any{"status": "done"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = suite.do(http.MethodGet, "/api/board?status=done", "member", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var b dto.BoardResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &b))
	suite.Equal(1, b.Total)

	w = suite.do(http.MethodDelete, taskURL, "member", nil)
	suite.Equal(http.StatusForbidden, w.Code)
	w = suite.do(http.MethodDelete, taskURL, "admin", nil)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *RouterTestSuite) TestTeamRoutes() {
	suite.signup("admin")
	member := suite.signup("member")

	w := suite.do(http.MethodPost, "/api/teams", "member", map[string]any{"name": "Ops"})
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.do(http.MethodPost, "/api/teams", "admin", map[string]any{"name": "Ops"})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var team dto.TeamResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &team))

	w = suite.do(http.MethodPost, "/api/teams/join", "member", map[string]any{"invite_code": team.InviteCode})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	u, err := suite.auth.GetUser(member.ID)
	suite.Require().NoError(err)
	suite.Contains(u.TeamIDs, team.ID)

	w = suite.do(http.MethodPut, "/api/users/"+member.ID+"/role", "admin", map[string]any{"role": "manager"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = suite.do(http.MethodPost, "/api/teams/"+team.ID+"/regenerate-code", "member", nil)
	suite.Require().Equal(http.StatusOK, w.Code, "managers may manage any team")

}
