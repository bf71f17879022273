package repository

import (
	"context"
	"time"

	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/utils"
)

// TaskRepository defines the interface for task data access.
// Every method except Create is scoped to a single owner.
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindOwned finds a task by ID that belongs to ownerID
	FindOwned(ctx context.Context, id, ownerID string) (*models.Task, error)

	// List retrieves an owner's tasks with filtering and pagination
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// UpdateOwned applies column changes to a task that belongs to ownerID
	UpdateOwned(ctx context.Context, id, ownerID string, changes map[string]any) error

	// DeleteOwned removes a task that belongs to ownerID and returns it
	DeleteOwned(ctx context.Context, id, ownerID string) (*models.Task, error)

	// Search matches title or description case-insensitively
	Search(ctx context.Context, ownerID, query string) ([]models.Task, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	UserID     string
	Status     *models.TaskStatus
	Priority   *models.TaskPriority
	Pagination utils.PaginationParams
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// Update saves all fields of a user
	Update(ctx context.Context, user *models.User) error
}

// AdminActionRepository is append-only: there is no update or delete.
type AdminActionRepository interface {
	// Create appends an admin action
	Create(ctx context.Context, action *models.AdminAction) error

	// ListRecent returns the newest actions first with the admin preloaded
	ListRecent(ctx context.Context, limit int) ([]models.AdminAction, error)
}

// GroupCount is one row of a GROUP BY ... COUNT(*) query
type GroupCount struct {
	GroupValue string `gorm:"column:group_value"`
	Count      int64  `gorm:"column:count"`
}

// UserTaskCount is one row of the most-active-users ranking
type UserTaskCount struct {
	UserID    string `gorm:"column:user_id"`
	Username  string `gorm:"column:username"`
	Email     string `gorm:"column:email"`
	TaskCount int64  `gorm:"column:task_count"`
}

// DashboardRepository reads across all users; it is never owner-scoped.
type DashboardRepository interface {
	CountUsers(ctx context.Context) (int64, error)
	CountUsersByRole(ctx context.Context, role models.UserRole) (int64, error)
	CountTasks(ctx context.Context) (int64, error)
	UserRoleBreakdown(ctx context.Context) ([]GroupCount, error)
	TaskStatusBreakdown(ctx context.Context) ([]GroupCount, error)
	RecentUsers(ctx context.Context, limit int) ([]models.User, error)
	RecentTasks(ctx context.Context, limit int) ([]models.Task, error)
	MostActiveUsers(ctx context.Context, limit int) ([]UserTaskCount, error)
	OverdueTasks(ctx context.Context, now time.Time) ([]models.Task, error)
}
