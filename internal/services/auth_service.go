package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/taskboard/internal/constants"
	"github.com/yukikurage/taskboard/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// NameRefresher recomputes cached assignee labels after the roster changed.
type NameRefresher interface {
	RefreshAssigneeNames(ctx context.Context) int
}

// AuthService handles accounts, credentials and roles.
type AuthService struct {
	roster    *Roster
	refresher NameRefresher
	now       func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(roster *Roster, refresher NameRefresher) *AuthService {
	return &AuthService{
		roster:    roster,
		refresher: refresher,
		now:       time.Now,
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Username string
	Name     string
	Password string
}

// Signup registers a user. The very first account becomes an admin so the
// board can be administered; later accounts are members.
// A persistence failure is reported with the created user.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	now := s.now()
	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Name:         strings.TrimSpace(input.Name),
		Role:         models.RoleMember,
		TeamIDs:      []string{},
		PasswordHash: string(hashedPassword),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.roster.Update(ctx, func(tx *RosterTx) error {
		users := tx.Users()
		for _, u := range users {
			if u.Username == username {
				return ErrUsernameTaken
			}
		}
		if len(users) == 0 {
			user.Role = models.RoleAdmin
		}
		tx.PutUser(user)
		return nil
	})
	if err != nil && !errors.Is(err, ErrPersistence) {
		return nil, err
	}
	return &user, err
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(input LoginInput) (*models.User, error) {
	user, ok := s.roster.UserByUsername(strings.TrimSpace(input.Username))
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id string) (*models.User, error) {
	user, ok := s.roster.User(id)
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// ListUsers returns every registered user.
func (s *AuthService) ListUsers() []models.User {
	return s.roster.Users()
}

// UpdateProfile changes a user's display name and refreshes task labels
// that mention it.
func (s *AuthService) UpdateProfile(ctx context.Context, userID, name string) (*models.User, error) {
	var updated models.User
	err := s.roster.Update(ctx, func(tx *RosterTx) error {
		user, ok := tx.User(userID)
		if !ok {
			return ErrUserNotFound
		}
		user.Name = strings.TrimSpace(name)
		user.UpdatedAt = s.now()
		tx.PutUser(user)
		updated = user
		return nil
	})
	if err != nil && !errors.Is(err, ErrPersistence) {
		return nil, err
	}
	s.refresh(ctx)
	return &updated, err
}

// ChangeRole sets userID's role. The last admin cannot be demoted.
func (s *AuthService) ChangeRole(ctx context.Context, userID string, role models.UserRole) (*models.User, error) {
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}

	var updated models.User
	err := s.roster.Update(ctx, func(tx *RosterTx) error {
		user, ok := tx.User(userID)
		if !ok {
			return ErrUserNotFound
		}
		if user.Role == models.RoleAdmin && role != models.RoleAdmin {
			admins := 0
			for _, u := range tx.Users() {
				if u.Role == models.RoleAdmin {
					admins++
				}
			}
			if admins <= 1 {
				return ErrLastAdmin
			}
		}
		user.Role = role
		user.UpdatedAt = s.now()
		tx.PutUser(user)
		updated = user
		return nil
	})
	if err != nil && !errors.Is(err, ErrPersistence) {
		return nil, err
	}
	return &updated, err
}

func (s *AuthService) refresh(ctx context.Context) {
	if s.refresher != nil {
		s.refresher.RefreshAssigneeNames(ctx)
	}
}
