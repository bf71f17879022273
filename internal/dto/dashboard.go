package dto

import (
	"time"

	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/services"
)

// UserSummaryDTO is a user reference embedded in dashboard rows
type UserSummaryDTO struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type RecentUserDTO struct {
	ID        string          `json:"id"`
	Username  string          `json:"username"`
	Email     string          `json:"email"`
	Role      models.UserRole `json:"role"`
	CreatedAt time.Time       `json:"createdAt"`
}

type RecentTaskDTO struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Status    models.TaskStatus `json:"status"`
	User      UserSummaryDTO    `json:"user"`
	CreatedAt time.Time         `json:"createdAt"`
	DueDate   *time.Time        `json:"dueDate"`
}

type ActiveUserDTO struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	TaskCount int64  `json:"taskCount"`
}

type OverdueTaskDTO struct {
	ID      string            `json:"id"`
	Title   string            `json:"title"`
	Status  models.TaskStatus `json:"status"`
	DueDate *time.Time        `json:"dueDate"`
	User    UserSummaryDTO    `json:"user"`
}

type AdminActionDTO struct {
	ID        string               `json:"id"`
	Admin     UserSummaryDTO       `json:"admin"`
	Action    string               `json:"action"`
	Target    string               `json:"target,omitempty"`
	TargetID  string               `json:"targetId,omitempty"`
	Details   models.ActionDetails `json:"details,omitempty"`
	CreatedAt time.Time            `json:"createdAt"`
}

// DashboardResponse is the body of GET /api/admin/dashboard
type DashboardResponse struct {
	UserCount           int64            `json:"userCount"`
	AdminCount          int64            `json:"adminCount"`
	TaskCount           int64            `json:"taskCount"`
	UserRoleBreakdown   map[string]int64 `json:"userRoleBreakdown"`
	TaskStatusBreakdown map[string]int64 `json:"taskStatusBreakdown"`
	RecentUsers         []RecentUserDTO  `json:"recentUsers"`
	RecentTasks         []RecentTaskDTO  `json:"recentTasks"`
	MostActiveUsers     []ActiveUserDTO  `json:"mostActiveUsers"`
	OverdueTasks        []OverdueTaskDTO `json:"overdueTasks"`
	RecentAdminActions  []AdminActionDTO `json:"recentAdminActions"`
}

func toUserSummary(user models.User) UserSummaryDTO {
	return UserSummaryDTO{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
}

// ToDashboardResponse converts a snapshot into the response body
func ToDashboardResponse(snapshot *services.DashboardSnapshot) DashboardResponse {
	resp := DashboardResponse{
		UserCount:           snapshot.UserCount,
		AdminCount:          snapshot.AdminCount,
		TaskCount:           snapshot.TaskCount,
		UserRoleBreakdown:   snapshot.UserRoleBreakdown,
		TaskStatusBreakdown: snapshot.TaskStatusBreakdown,
		RecentUsers:         make([]RecentUserDTO, len(snapshot.RecentUsers)),
		RecentTasks:         make([]RecentTaskDTO, len(snapshot.RecentTasks)),
		MostActiveUsers:     make([]ActiveUserDTO, len(snapshot.MostActiveUsers)),
		OverdueTasks:        make([]OverdueTaskDTO, len(snapshot.OverdueTasks)),
		RecentAdminActions:  make([]AdminActionDTO, len(snapshot.RecentAdminActions)),
	}

	for i, user := range snapshot.RecentUsers {
		resp.RecentUsers[i] = RecentUserDTO{
			ID:        user.ID,
			Username:  user.Username,
			Email:     user.Email,
			Role:      user.Role,
			CreatedAt: user.CreatedAt,
		}
	}
	for i, task := range snapshot.RecentTasks {
		resp.RecentTasks[i] = RecentTaskDTO{
			ID:        task.ID,
			Title:     task.Title,
			Status:    task.Status,
			User:      toUserSummary(task.User),
			CreatedAt: task.CreatedAt,
			DueDate:   task.DueDate,
		}
	}
	for i, row := range snapshot.MostActiveUsers {
		resp.MostActiveUsers[i] = ActiveUserDTO{
			UserID:    row.UserID,
			Username:  row.Username,
			Email:     row.Email,
			TaskCount: row.TaskCount,
		}
	}
	for i, task := range snapshot.OverdueTasks {
		resp.OverdueTasks[i] = OverdueTaskDTO{
			ID:      task.ID,
			Title:   task.Title,
			Status:  task.Status,
			DueDate: task.DueDate,
			User:    toUserSummary(task.User),
		}
	}
	for i, action := range snapshot.RecentAdminActions {
		resp.RecentAdminActions[i] = AdminActionDTO{
			ID:        action.ID,
			Admin:     toUserSummary(action.Admin),
			Action:    action.Action,
			Target:    action.Target,
			TargetID:  action.TargetID,
			Details:   action.Details,
			CreatedAt: action.CreatedAt,
		}
	}

	return resp
}
