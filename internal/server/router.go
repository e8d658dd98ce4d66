// Package server assembles the HTTP routes.
package server

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskboard/internal/constants"
	"github.com/yukikurage/taskboard/internal/handlers"
	"github.com/yukikurage/taskboard/internal/middleware"
	"github.com/yukikurage/taskboard/internal/permissions"
	"github.com/yukikurage/taskboard/internal/services"
	"go.uber.org/zap"
)

// Services are the collaborators the routes call into. Converter may be nil.
type Services struct {
	Auth      *services.AuthService
	Teams     *services.TeamService
	Tasks     *services.TaskService
	Board     *services.BoardService
	Converter *services.MessageConverter
}

// NewRouter builds the gin engine with sessions, logging and every route.
func NewRouter(log *zap.Logger, store sessions.Store, svc Services) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(log), middleware.Recovery(log))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	authHandler := handlers.NewAuthHandler(svc.Auth)
	teamHandler := handlers.NewTeamHandler(svc.Teams)
	taskHandler := handlers.NewTaskHandler(svc.Tasks, svc.Converter)
	boardHandler := handlers.NewBoardHandler(svc.Board)

	requireAuth := middleware.RequireAuth(svc.Auth)
	requireTask := middleware.RequireTask(svc.Tasks)
	requireTeamManager := middleware.RequireTeamManager(svc.Teams)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Taskboard API is running",
		})
	})

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
			auth.PUT("/me", requireAuth, authHandler.UpdateProfile)
		}

		users := api.Group("/users")
		users.Use(requireAuth)
		{
			users.GET("", authHandler.ListUsers)
			users.PUT("/:id/role", middleware.RequirePermission(permissions.ManageUsers), authHandler.ChangeRole)
		}

		teams := api.Group("/teams")
		teams.Use(requireAuth)
		{
			teams.POST("", middleware.RequirePermission(permissions.ManageTeams), teamHandler.CreateTeam)
			teams.GET("", teamHandler.ListTeams)
			teams.POST("/join", teamHandler.JoinTeam)
			teams.GET("/:id", teamHandler.GetTeam)
			teams.PUT("/:id", requireTeamManager, teamHandler.RenameTeam)
			teams.DELETE("/:id", middleware.RequirePermission(permissions.ManageTeams), teamHandler.DeleteTeam)
			teams.POST("/:id/members", requireTeamManager, teamHandler.AddMember)
			teams.DELETE("/:id/members/:userId", requireTeamManager, teamHandler.RemoveMember)
			teams.PUT("/:id/leader", middleware.RequirePermission(permissions.ManageTeams), teamHandler.SetLeader)
			teams.POST("/:id/regenerate-code", requireTeamManager, teamHandler.RegenerateInviteCode)
		}

		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", middleware.RequirePermission(permissions.CreateTask), taskHandler.CreateTask)
			tasks.POST("/convert", middleware.RequirePermission(permissions.ConvertMessages), taskHandler.ConvertMessage)
			tasks.GET("/:id", requireTask, taskHandler.GetTask)
			tasks.PATCH("/:id", middleware.RequirePermission(permissions.EditTask), requireTask, taskHandler.UpdateTask)
			tasks.DELETE("/:id", requireTask, taskHandler.DeleteTask)
			tasks.POST("/:id/move", requireTask, taskHandler.MoveTask)
			tasks.GET("/:id/transitions", requireTask, taskHandler.Transitions)
		}

		boardRoutes := api.Group("/board")
		boardRoutes.Use(requireAuth)
		{
			boardRoutes.GET("", boardHandler.GetBoard)
			boardRoutes.GET("/filters", boardHandler.GetFilter)
			boardRoutes.PUT("/filters", boardHandler.SaveFilter)
			boardRoutes.POST("/drag", boardHandler.BeginDrag)
			boardRoutes.GET("/drag", boardHandler.CurrentDrag)
			boardRoutes.DELETE("/drag", boardHandler.CancelDrag)
			boardRoutes.POST("/drop", boardHandler.Drop)
		}
	}

	return r
}
