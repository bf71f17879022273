package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
	"github.com/yukikurage/task-tracker-api/internal/services"
	"github.com/yukikurage/task-tracker-api/internal/utils"
)

type TaskHandler struct {
	tasks     services.TaskManager
	aiService *services.AIService
}

func NewTaskHandler(tasks services.TaskManager, aiService *services.AIService) *TaskHandler {
	return &TaskHandler{
		tasks:     tasks,
		aiService: aiService,
	}
}

// ListTasks returns a page of the caller's tasks
// Can filter by status and priority
func (h *TaskHandler) ListTasks(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	list, err := h.tasks.List(c.Request.Context(), caller, services.ListTasksInput{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Page:     params.Page,
		Limit:    params.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(list))
}

// SearchTasks matches the caller's tasks by title or description
func (h *TaskHandler) SearchTasks(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	tasks, err := h.tasks.Search(c.Request.Context(), caller, c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

// GetTask returns a specific task by ID
func (h *TaskHandler) GetTask(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), caller, req.ToCreateTaskInput())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask updates the fields present in the body
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), caller, c.Param("id"), req.ToUpdateTaskInput())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	if _, err := h.tasks.Delete(c.Request.Context(), caller, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully.",
	})
}

// GenerateTasks generates task suggestions from text using AI
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	if _, ok := requireCaller(c); !ok {
		return
	}

	var req dto.GenerateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	suggestions, err := h.aiService.SuggestTasks(c.Request.Context(), req.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": suggestions,
	})
}
