package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskboard/internal/constants"
	"github.com/yukikurage/taskboard/internal/dto"
	apierrors "github.com/yukikurage/taskboard/internal/errors"
	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Signup registers a new user.
func (h *AuthHandler) Signup(c *gin.Context) {
	type SignupRequest struct {
		Username string `json:"username" binding:"required,min=3,max=50"`
		Name     string `json:"name" binding:"max=100"`
		Password string `json:"password" binding:"required"`
	}

	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), services.SignupInput{
		Username: req.Username,
		Name:     req.Name,
		Password: req.Password,
	})
	if respondAuthError(c, err) {
		return
	}

	c.JSON(http.StatusCreated, dto.UserResponse{UserDTO: dto.ToUserDTO(*user), Warning: services.Warning(err)})
}

// Login authenticates a user and initializes the session.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Login(services.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if respondAuthError(c, err) {
		return
	}

	session := sessions.Default(c)
	session.Set(constants.SessionKeyUserID, user.ID)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// Logout removes the authentication session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTO(user))
}

// UpdateProfile changes the current user's display name.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name" binding:"max=100"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.authService.UpdateProfile(c.Request.Context(), user.ID, req.Name)
	if respondAuthError(c, err) {
		return
	}
	c.JSON(http.StatusOK, dto.UserResponse{UserDTO: dto.ToUserDTO(*updated), Warning: services.Warning(err)})
}

// ListUsers returns every user, for assignee pickers.
func (h *AuthHandler) ListUsers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"users": dto.ToUserDTOs(h.authService.ListUsers()),
	})
}

// ChangeRole sets another user's role.
func (h *AuthHandler) ChangeRole(c *gin.Context) {
	var req struct {
		Role models.UserRole `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.authService.ChangeRole(c.Request.Context(), c.Param("id"), req.Role)
	if respondAuthError(c, err) {
		return
	}
	c.JSON(http.StatusOK, dto.UserResponse{UserDTO: dto.ToUserDTO(*updated), Warning: services.Warning(err)})
}

func respondAuthError(c *gin.Context, err error) bool {
	if errors.Is(err, services.ErrPasswordTooShort) {
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
		return true
	}
	return abortOnError(c, err)
}
