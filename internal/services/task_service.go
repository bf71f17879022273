package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/task-tracker-api/internal/constants"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"github.com/yukikurage/task-tracker-api/internal/utils"
	"gorm.io/gorm"
)

// TaskManager is the owner-scoped task API consumed by the HTTP layer.
type TaskManager interface {
	Create(ctx context.Context, caller Caller, input CreateTaskInput) (*models.Task, error)
	List(ctx context.Context, caller Caller, input ListTasksInput) (*TaskList, error)
	Get(ctx context.Context, caller Caller, id string) (*models.Task, error)
	Update(ctx context.Context, caller Caller, id string, input UpdateTaskInput) (*models.Task, error)
	Delete(ctx context.Context, caller Caller, id string) (*models.Task, error)
	Search(ctx context.Context, caller Caller, query string) ([]models.Task, error)
}

// TaskService handles task business logic
type TaskService struct {
	taskRepo repository.TaskRepository
	images   *ImageNormalizer
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, images *ImageNormalizer) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		images:   images,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     string
	Image       string
}

// UpdateTaskInput represents a partial update. Absent fields are left alone.
type UpdateTaskInput struct {
	Title       utils.Optional[string]
	Description utils.Optional[string]
	Status      utils.Optional[string]
	Priority    utils.Optional[string]
	DueDate     utils.Optional[string]
	Image       utils.Optional[string]
}

// Fields lists the JSON names of the fields present in the update.
func (in UpdateTaskInput) Fields() []string {
	fields := make([]string, 0, 6)
	if in.Title.Set {
		fields = append(fields, "title")
	}
	if in.Description.Set {
		fields = append(fields, "description")
	}
	if in.Status.Set {
		fields = append(fields, "status")
	}
	if in.Priority.Set {
		fields = append(fields, "priority")
	}
	if in.DueDate.Set {
		fields = append(fields, "dueDate")
	}
	if in.Image.Set {
		fields = append(fields, "image")
	}
	return fields
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Status   string
	Priority string
	Page     int
	Limit    int
}

// TaskList is one page of an owner's tasks
type TaskList struct {
	Items      []models.Task
	Total      int64
	Page       int
	TotalPages int
}

var dueDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// Create validates the input, normalizes the image and persists a task owned by the caller.
func (s *TaskService) Create(ctx context.Context, caller Caller, input CreateTaskInput) (*models.Task, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, newValidationError("title", "is required")
	}

	task := &models.Task{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		UserID:      caller.UserID,
	}

	if input.Status != "" {
		status, err := parseStatus(input.Status)
		if err != nil {
			return nil, err
		}
		task.Status = status
	}
	if input.Priority != "" {
		priority, err := parsePriority(input.Priority)
		if err != nil {
			return nil, err
		}
		task.Priority = priority
	}
	if strings.TrimSpace(input.DueDate) != "" {
		dueDate, err := parseDueDate(input.DueDate)
		if err != nil {
			return nil, err
		}
		task.DueDate = dueDate
	}

	image, err := s.images.Normalize(ctx, input.Image, constants.ImageNamespaceTasks)
	if err != nil {
		return nil, err
	}
	task.Image = image

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// List returns one page of the caller's tasks, newest first.
func (s *TaskService) List(ctx context.Context, caller Caller, input ListTasksInput) (*TaskList, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	filter := repository.TaskFilter{
		UserID:     caller.UserID,
		Pagination: utils.NewPaginationParams(input.Page, input.Limit),
	}

	if input.Status != "" {
		status, err := parseStatus(input.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}
	if input.Priority != "" {
		priority, err := parsePriority(input.Priority)
		if err != nil {
			return nil, err
		}
		filter.Priority = &priority
	}

	tasks, total, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return &TaskList{
		Items:      tasks,
		Total:      total,
		Page:       filter.Pagination.Page,
		TotalPages: utils.TotalPages(total, filter.Pagination.Limit),
	}, nil
}

// Get returns one of the caller's tasks
func (s *TaskService) Get(ctx context.Context, caller Caller, id string) (*models.Task, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if err := validateTaskID(id); err != nil {
		return nil, err
	}
	return s.findOwned(ctx, id, caller.UserID)
}

// Update applies the present fields of input to one of the caller's tasks.
func (s *TaskService) Update(ctx context.Context, caller Caller, id string, input UpdateTaskInput) (*models.Task, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if err := validateTaskID(id); err != nil {
		return nil, err
	}

	changes := make(map[string]any)

	if input.Title.Set {
		title := strings.TrimSpace(input.Title.Value)
		if input.Title.Null || title == "" {
			return nil, newValidationError("title", "is required")
		}
		changes["title"] = title
	}
	if input.Description.Set {
		changes["description"] = strings.TrimSpace(input.Description.Value)
	}
	if input.Status.Set {
		if input.Status.Null {
			return nil, newValidationError("status", "cannot be null")
		}
		status, err := parseStatus(input.Status.Value)
		if err != nil {
			return nil, err
		}
		changes["status"] = status
	}
	if input.Priority.Set {
		if input.Priority.Null {
			return nil, newValidationError("priority", "cannot be null")
		}
		priority, err := parsePriority(input.Priority.Value)
		if err != nil {
			return nil, err
		}
		changes["priority"] = priority
	}
	if input.DueDate.Set {
		if input.DueDate.Null || strings.TrimSpace(input.DueDate.Value) == "" {
			changes["due_date"] = nil
		} else {
			dueDate, err := parseDueDate(input.DueDate.Value)
			if err != nil {
				return nil, err
			}
			changes["due_date"] = *dueDate
		}
	}

	uploadImage := false
	if input.Image.Set {
		if input.Image.Null || strings.TrimSpace(input.Image.Value) == "" {
			changes["image"] = nil
		} else {
			uploadImage = true
		}
	}

	if _, err := s.findOwned(ctx, id, caller.UserID); err != nil {
		return nil, err
	}

	if uploadImage {
		image, err := s.images.Normalize(ctx, input.Image.Value, constants.ImageNamespaceTasks)
		if err != nil {
			return nil, err
		}
		changes["image"] = *image
	}

	if len(changes) > 0 {
		if err := s.taskRepo.UpdateOwned(ctx, id, caller.UserID, changes); err != nil {
			return nil, fmt.Errorf("failed to update task: %w", err)
		}
	}

	return s.findOwned(ctx, id, caller.UserID)
}

// Delete removes one of the caller's tasks and returns what was deleted.
func (s *TaskService) Delete(ctx context.Context, caller Caller, id string) (*models.Task, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if err := validateTaskID(id); err != nil {
		return nil, err
	}

	task, err := s.taskRepo.DeleteOwned(ctx, id, caller.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to delete task: %w", err)
	}

	return task, nil
}

// Search matches the caller's tasks by title or description.
func (s *TaskService) Search(ctx context.Context, caller Caller, query string) ([]models.Task, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, newValidationError("q", "search query is required")
	}

	tasks, err := s.taskRepo.Search(ctx, caller.UserID, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) findOwned(ctx context.Context, id, ownerID string) (*models.Task, error) {
	task, err := s.taskRepo.FindOwned(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func requireCaller(caller Caller) error {
	if caller.UserID == "" {
		return ErrUnauthorized
	}
	return nil
}

func validateTaskID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return newValidationError("id", "invalid task id")
	}
	return nil
}

func parseStatus(raw string) (models.TaskStatus, error) {
	status := models.TaskStatus(raw)
	if !status.Valid() {
		return "", newValidationError("status", "must be one of pending, in-progress, completed")
	}
	return status, nil
}

func parsePriority(raw string) (models.TaskPriority, error) {
	priority := models.TaskPriority(raw)
	if !priority.Valid() {
		return "", newValidationError("priority", "must be one of low, medium, high")
	}
	return priority, nil
}

// parseDueDate accepts a calendar date or a timestamp and returns it in UTC.
func parseDueDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, newValidationError("dueDate", "must be a valid date")
}
