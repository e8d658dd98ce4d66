package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskboard/internal/constants"
	apierrors "github.com/yukikurage/taskboard/internal/errors"
	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/permissions"
)

// UserLookup resolves the user stored in a session.
type UserLookup interface {
	GetUser(id string) (*models.User, error)
}

// RequireAuth checks if the user is authenticated via session and loads the
// user record. Sessions pointing at a deleted user are cleared.
func RequireAuth(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := session.Get(constants.SessionKeyUserID).(string)
		if !ok || userID == "" {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		user, err := users.GetUser(userID)
		if err != nil {
			session.Clear()
			_ = session.Save()
			apierrors.Unauthorized(c, "Session is no longer valid")
			c.Abort()
			return
		}

		// Store user in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyUser, *user)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok && id != ""
}

// CurrentUser retrieves the authenticated user from context
func CurrentUser(c *gin.Context) (models.User, bool) {
	v, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}

// Checker returns the permission checker for the request's user.
func Checker(c *gin.Context) permissions.Checker {
	user, ok := CurrentUser(c)
	if !ok {
		return permissions.ForUser(nil)
	}
	return permissions.ForUser(&user)
}
