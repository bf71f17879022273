package constants

// Session and context keys
const (
	SessionCookieName  = "task_session"
	ContextKeyUserID   = "user_id"
	ContextKeyUserRole = "user_role"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
	MaxOffset       = 1<<31 - 1
)

// Accounts
const (
	MinPasswordLength = 6
	MaxUsernameLength = 50
	MaxEmailLength    = 255
)

// Image store namespaces
const (
	ImageNamespaceTasks       = "tasks"
	ImageNamespaceProfilePics = "profile_pics"
)

// Dashboard
const (
	DashboardRecentLimit = 5
)

// AI suggestions
const (
	MaxAIGeneratedTasks = 20
)
