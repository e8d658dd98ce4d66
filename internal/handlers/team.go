package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskboard/internal/dto"
	apierrors "github.com/yukikurage/taskboard/internal/errors"
	"github.com/yukikurage/taskboard/internal/middleware"
	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/permissions"
	"github.com/yukikurage/taskboard/internal/services"
)

// TeamHandler serves team administration.
type TeamHandler struct {
	teamService *services.TeamService
}

func NewTeamHandler(teamService *services.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

// CreateTeam creates a team. The leader defaults to the caller.
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req struct {
		Name     string `json:"name" binding:"required,max=100"`
		LeaderID string `json:"leader_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	if req.LeaderID == "" {
		req.LeaderID = user.ID
	}

	team, err := h.teamService.CreateTeam(c.Request.Context(), services.CreateTeamInput{
		Name:     req.Name,
		LeaderID: req.LeaderID,
	})
	if abortOnError(c, err) {
		return
	}
	h.respondTeam(c, http.StatusCreated, team, err)
}

// ListTeams returns every team without invite codes.
func (h *TeamHandler) ListTeams(c *gin.Context) {
	teams := h.teamService.ListTeams()
	out := make([]dto.TeamDTO, len(teams))
	for i, t := range teams {
		out[i] = dto.ToTeamDTO(t, false)
	}
	c.JSON(http.StatusOK, gin.H{"teams": out})
}

// GetTeam returns a team and its members. Members and managers also see the
// invite code.
func (h *TeamHandler) GetTeam(c *gin.Context) {
	team, members, err := h.teamService.GetTeamWithMembers(c.Param("id"))
	if abortOnError(c, err) {
		return
	}
	c.JSON(http.StatusOK, dto.ToTeamDetailDTO(*team, members, canSeeInviteCode(c, *team)))
}

// RenameTeam changes a team's name.
func (h *TeamHandler) RenameTeam(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required,max=100"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	team, err := h.teamService.RenameTeam(c.Request.Context(), c.Param("id"), req.Name)
	if abortOnError(c, err) {
		return
	}
	h.respondTeam(c, http.StatusOK, team, err)
}

// DeleteTeam removes a team.
func (h *TeamHandler) DeleteTeam(c *gin.Context) {
	err := h.teamService.DeleteTeam(c.Request.Context(), c.Param("id"))
	if abortOnError(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Team deleted successfully",
		"warning": services.Warning(err),
	})
}

// AddMember adds a user to the team.
func (h *TeamHandler) AddMember(c *gin.Context) {
	var req struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	team, err := h.teamService.AddMember(c.Request.Context(), c.Param("id"), req.UserID)
	if abortOnError(c, err) {
		return
	}
	h.respondTeam(c, http.StatusOK, team, err)
}

// RemoveMember removes the user in :userId from the team.
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	team, err := h.teamService.RemoveMember(c.Request.Context(), c.Param("id"), c.Param("userId"))
	if abortOnError(c, err) {
		return
	}
	h.respondTeam(c, http.StatusOK, team, err)
}

// SetLeader makes a member the team leader.
func (h *TeamHandler) SetLeader(c *gin.Context) {
	var req struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	team, err := h.teamService.SetLeader(c.Request.Context(), c.Param("id"), req.UserID)
	if abortOnError(c, err) {
		return
	}
	h.respondTeam(c, http.StatusOK, team, err)
}

// JoinTeam adds the caller to the team holding the invite code.
func (h *TeamHandler) JoinTeam(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req struct {
		InviteCode string `json:"invite_code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	team, err := h.teamService.JoinByInviteCode(c.Request.Context(), user.ID, req.InviteCode)
	if abortOnError(c, err) {
		return
	}
	h.respondTeam(c, http.StatusOK, team, err)
}

// RegenerateInviteCode replaces the team's invite code.
func (h *TeamHandler) RegenerateInviteCode(c *gin.Context) {
	team, err := h.teamService.RegenerateInviteCode(c.Request.Context(), c.Param("id"))
	if abortOnError(c, err) {
		return
	}
	h.respondTeam(c, http.StatusOK, team, err)
}

func (h *TeamHandler) respondTeam(c *gin.Context, status int, team *models.Team, err error) {
	_, members, lookupErr := h.teamService.GetTeamWithMembers(team.ID)
	if lookupErr != nil {
		members = nil
	}
	c.JSON(status, dto.TeamResponse{
		TeamDetailDTO: dto.ToTeamDetailDTO(*team, members, canSeeInviteCode(c, *team)),
		Warning:       services.Warning(err),
	})
}

func canSeeInviteCode(c *gin.Context, team models.Team) bool {
	checker := middleware.Checker(c)
	user, ok := checker.CurrentUser()
	return ok && (team.HasMember(user.ID) || checker.HasPermission(permissions.ManageTeams))
}
