package services

import (
	"context"

	"github.com/yukikurage/task-tracker-api/internal/models"
)

const auditTargetTask = "Task"

// AuditedTaskService records every task mutation made by an admin caller.
type AuditedTaskService struct {
	next  TaskManager
	audit AuditRecorder
}

// NewAuditedTaskService wraps next with admin auditing
func NewAuditedTaskService(next TaskManager, audit AuditRecorder) *AuditedTaskService {
	return &AuditedTaskService{
		next:  next,
		audit: audit,
	}
}

func (s *AuditedTaskService) Create(ctx context.Context, caller Caller, input CreateTaskInput) (*models.Task, error) {
	task, err := s.next.Create(ctx, caller, input)
	if err != nil {
		return nil, err
	}
	if caller.IsAdmin() {
		s.record(ctx, caller, "Created task", task, nil)
	}
	return task, nil
}

func (s *AuditedTaskService) List(ctx context.Context, caller Caller, input ListTasksInput) (*TaskList, error) {
	return s.next.List(ctx, caller, input)
}

func (s *AuditedTaskService) Get(ctx context.Context, caller Caller, id string) (*models.Task, error) {
	return s.next.Get(ctx, caller, id)
}

func (s *AuditedTaskService) Update(ctx context.Context, caller Caller, id string, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.next.Update(ctx, caller, id, input)
	if err != nil {
		return nil, err
	}
	if caller.IsAdmin() {
		s.record(ctx, caller, "Updated task", task, input.Fields())
	}
	return task, nil
}

func (s *AuditedTaskService) Delete(ctx context.Context, caller Caller, id string) (*models.Task, error) {
	task, err := s.next.Delete(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if caller.IsAdmin() {
		s.record(ctx, caller, "Deleted task", task, nil)
	}
	return task, nil
}

func (s *AuditedTaskService) Search(ctx context.Context, caller Caller, query string) ([]models.Task, error) {
	return s.next.Search(ctx, caller, query)
}

func (s *AuditedTaskService) record(ctx context.Context, caller Caller, action string, task *models.Task, fields []string) {
	details := models.ActionDetails{
		"title": task.Title,
		"user":  task.UserID,
	}
	if fields != nil {
		details["fields"] = fields
	}

	s.audit.Record(ctx, AuditEntry{
		AdminID:  caller.UserID,
		Action:   action,
		Target:   auditTargetTask,
		TargetID: task.ID,
		Details:  details,
	})
}
