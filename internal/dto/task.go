package dto

import (
	"time"

	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/services"
	"github.com/yukikurage/task-tracker-api/internal/utils"
)

// CreateTaskRequest is the body of POST /api/tasks
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"dueDate"`
	Image       string `json:"image"`
}

// UpdateTaskRequest is the body of PUT /api/tasks/:id. Unknown keys are ignored.
type UpdateTaskRequest struct {
	Title       utils.Optional[string] `json:"title"`
	Description utils.Optional[string] `json:"description"`
	Status      utils.Optional[string] `json:"status"`
	Priority    utils.Optional[string] `json:"priority"`
	DueDate     utils.Optional[string] `json:"dueDate"`
	Image       utils.Optional[string] `json:"image"`
}

// GenerateTasksRequest is the body of POST /api/tasks/generate
type GenerateTasksRequest struct {
	Text string `json:"text" binding:"required"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *time.Time          `json:"dueDate"`
	Image       *string             `json:"image"`
	User        string              `json:"user"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks []TaskDTO `json:"tasks"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Pages int       `json:"pages"`
}

// ToCreateTaskInput converts the request into service input
func (r CreateTaskRequest) ToCreateTaskInput() services.CreateTaskInput {
	return services.CreateTaskInput{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		DueDate:     r.DueDate,
		Image:       r.Image,
	}
}

// ToUpdateTaskInput converts the request into service input
func (r UpdateTaskRequest) ToUpdateTaskInput() services.UpdateTaskInput {
	return services.UpdateTaskInput{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		DueDate:     r.DueDate,
		Image:       r.Image,
	}
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		DueDate:     task.DueDate,
		Image:       task.Image,
		User:        task.UserID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}
	return items
}

// ToTaskListResponse converts a page of tasks to TaskListResponse
func ToTaskListResponse(list *services.TaskList) TaskListResponse {
	return TaskListResponse{
		Tasks: ToTaskDTOs(list.Items),
		Total: list.Total,
		Page:  list.Page,
		Pages: list.TotalPages,
	}
}
