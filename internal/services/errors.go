package services

import "errors"

var (
	// ErrPersistence wraps a save failure after an in-memory change was
	// applied. The change is not rolled back.
	ErrPersistence = errors.New("change applied but not saved")

	ErrUsernameTaken        = errors.New("username already exists")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrUsernameRequired     = errors.New("username is required")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrInvalidRole          = errors.New("invalid role")
	ErrLastAdmin            = errors.New("cannot demote the last admin")

	ErrTeamNotFound               = errors.New("team not found")
	ErrInvalidTeamName            = errors.New("team name cannot be empty")
	ErrInviteCodeGenerationFailed = errors.New("failed to generate invite code")
	ErrInvalidInviteCode          = errors.New("invalid invite code")
	ErrAlreadyTeamMember          = errors.New("user is already a member of this team")
	ErrNotTeamMember              = errors.New("user is not a member of this team")
	ErrCannotRemoveLeader         = errors.New("cannot remove the team leader; assign a new leader first")

	ErrTaskNotFound     = errors.New("task not found")
	ErrTaskAccessDenied = errors.New("user does not have permission to modify this task")
	ErrInvalidFilter    = errors.New("invalid board filter")

	ErrConverterNotConfigured = errors.New("message converter is not configured")
	ErrNoTasksConverted       = errors.New("no tasks could be extracted from the message")
	ErrEmptyMessage           = errors.New("message is empty")
)

// Warning renders a persistence failure for API responses. It returns an
// empty string for any other error.
func Warning(err error) string {
	if err != nil && errors.Is(err, ErrPersistence) {
		return err.Error()
	}
	return ""
}
