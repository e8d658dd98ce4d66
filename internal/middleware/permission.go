package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/taskboard/internal/errors"
	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/permissions"
)

// RequirePermission rejects users whose role lacks feature.
func RequirePermission(feature permissions.Feature) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Checker(c).HasPermission(feature) {
			apierrors.RespondWithError(c, http.StatusForbidden, apierrors.NewAPIErrorWithDetails(
				apierrors.ErrCodeInsufficientPermissions,
				"Your role does not allow this action",
				gin.H{"feature": feature},
			))
			c.Abort()
			return
		}
		c.Next()
	}
}

// TeamLookup resolves the team named in the URL.
type TeamLookup interface {
	GetTeamWithMembers(teamID string) (*models.Team, []models.User, error)
}

// RequireTeamManager lets the team's leader through, as well as anyone whose
// role may manage teams.
func RequireTeamManager(teams TeamLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		team, _, err := teams.GetTeamWithMembers(c.Param("id"))
		if err != nil {
			apierrors.Respond(c, err)
			c.Abort()
			return
		}

		checker := Checker(c)
		user, _ := checker.CurrentUser()
		if team.LeaderID != user.ID && !checker.HasPermission(permissions.ManageTeams) {
			apierrors.Forbidden(c, "Only the team leader or a manager can perform this action")
			c.Abort()
			return
		}
		c.Next()
	}
}
