package constants

const (
	// ContextKeyUserID is the gin context key holding the signed-in user id.
	ContextKeyUserID = "user_id"
	// ContextKeyUser holds the signed-in models.User.
	ContextKeyUser = "user"
	// ContextKeyTask holds the task loaded by the task access middleware.
	ContextKeyTask = "task"
	// ContextKeyRequestID holds the request id set by the request id middleware.
	ContextKeyRequestID = "request_id"

	SessionCookieName = "taskboard_session"
	SessionKeyUserID  = "user_id"

	MinPasswordLength = 8

	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// MaxConvertedTasks caps the drafts produced from one chat message.
	MaxConvertedTasks = 10
)
