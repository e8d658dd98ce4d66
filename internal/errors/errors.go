package errors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskboard/internal/dragdrop"
	"github.com/yukikurage/taskboard/internal/services"
	"github.com/yukikurage/taskboard/internal/tasks"
	"github.com/yukikurage/taskboard/internal/workflow"
)

// Error codes
const (
	// Authentication errors
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"

	// Authorization errors
	ErrCodeForbidden               = "FORBIDDEN"
	ErrCodeInsufficientPermissions = "INSUFFICIENT_PERMISSIONS"
	ErrCodeForbiddenTransition     = "FORBIDDEN_TRANSITION"

	// Validation errors
	ErrCodeInvalidInput   = "INVALID_INPUT"
	ErrCodeReasonRequired = "REASON_REQUIRED"

	// Resource errors
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	ErrCodeConflict      = "CONFLICT"

	// Workflow errors
	ErrCodeIllegalTransition = "ILLEGAL_TRANSITION"
	ErrCodeNotDragging       = "NOT_DRAGGING"
	ErrCodeStaleDrag         = "STALE_DRAG"

	// Service errors
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// APIError represents a standardized API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError
func NewAPIError(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// NewAPIErrorWithDetails creates a new APIError with details
func NewAPIErrorWithDetails(code, message string, details any) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.JSON(statusCode, err)
}

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, NewAPIError(ErrCodeUnauthorized, message))
}

// Forbidden sends a 403 response
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Access denied"
	}
	RespondWithError(c, http.StatusForbidden, NewAPIError(ErrCodeForbidden, message))
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, NewAPIError(ErrCodeNotFound, message))
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, http.StatusBadRequest, NewAPIError(ErrCodeInvalidInput, message))
}

// BadRequestWithDetails sends a 400 response with details
func BadRequestWithDetails(c *gin.Context, message string, details any) {
	RespondWithError(c, http.StatusBadRequest, NewAPIErrorWithDetails(ErrCodeInvalidInput, message, details))
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	RespondWithError(c, http.StatusInternalServerError, NewAPIError(ErrCodeInternalError, message))
}

// ServiceUnavailable sends a 503 response
func ServiceUnavailable(c *gin.Context, message string) {
	if message == "" {
		message = "Service temporarily unavailable"
	}
	RespondWithError(c, http.StatusServiceUnavailable, NewAPIError(ErrCodeServiceUnavailable, message))
}

// Respond maps a domain error to its HTTP status and API error. Unknown
// errors become a 500 without leaking their text.
func Respond(c *gin.Context, err error) {
	status, apiErr := Classify(err)
	RespondWithError(c, status, apiErr)
}

// Classify returns the status code and body Respond would send for err.
func Classify(err error) (int, *APIError) {
	var (
		validation *tasks.ValidationError
		illegal    *workflow.IllegalTransitionError
		forbidden  *workflow.ForbiddenTransitionError
	)

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, NewAPIErrorWithDetails(ErrCodeInvalidInput, validation.Error(),
			gin.H{"field": validation.Field, "reason": validation.Reason})

	case errors.Is(err, workflow.ErrReasonRequired):
		return http.StatusBadRequest, NewAPIError(ErrCodeReasonRequired, err.Error())

	case errors.Is(err, workflow.ErrUnknownStatus),
		errors.Is(err, services.ErrInvalidFilter),
		errors.Is(err, services.ErrUsernameRequired),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrInvalidTeamName),
		errors.Is(err, services.ErrInvalidInviteCode),
		errors.Is(err, services.ErrEmptyMessage),
		errors.Is(err, services.ErrNoTasksConverted):
		return http.StatusBadRequest, NewAPIError(ErrCodeInvalidInput, err.Error())

	case errors.As(err, &illegal):
		return http.StatusConflict, NewAPIErrorWithDetails(ErrCodeIllegalTransition, illegal.Error(),
			gin.H{"from": illegal.From, "to": illegal.To})

	case errors.As(err, &forbidden):
		return http.StatusForbidden, NewAPIErrorWithDetails(ErrCodeForbiddenTransition, forbidden.Reason,
			gin.H{"from": forbidden.From, "to": forbidden.To})

	case errors.Is(err, dragdrop.ErrNotDragging):
		return http.StatusConflict, NewAPIError(ErrCodeNotDragging, err.Error())

	case errors.Is(err, dragdrop.ErrStaleDrag):
		return http.StatusConflict, NewAPIError(ErrCodeStaleDrag, err.Error())

	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, NewAPIError(ErrCodeInvalidCredentials, err.Error())

	case errors.Is(err, services.ErrTaskAccessDenied):
		return http.StatusForbidden, NewAPIError(ErrCodeForbidden, err.Error())

	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrTeamNotFound):
		return http.StatusNotFound, NewAPIError(ErrCodeNotFound, err.Error())

	case errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrAlreadyTeamMember):
		return http.StatusConflict, NewAPIError(ErrCodeAlreadyExists, err.Error())

	case errors.Is(err, services.ErrLastAdmin),
		errors.Is(err, services.ErrCannotRemoveLeader),
		errors.Is(err, services.ErrNotTeamMember):
		return http.StatusConflict, NewAPIError(ErrCodeConflict, err.Error())

	case errors.Is(err, services.ErrConverterNotConfigured):
		return http.StatusServiceUnavailable, NewAPIError(ErrCodeServiceUnavailable, err.Error())

	default:
		return http.StatusInternalServerError, NewAPIError(ErrCodeInternalError, "Internal server error")
	}
}
