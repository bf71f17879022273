package repository

import (
	"context"
	"time"

	"github.com/yukikurage/task-tracker-api/internal/models"
	"gorm.io/gorm"
)

// GormDashboardRepository is a GORM implementation of DashboardRepository
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository creates a new DashboardRepository
func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &GormDashboardRepository{db: db}
}

func (r *GormDashboardRepository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

func (r *GormDashboardRepository) CountUsersByRole(ctx context.Context, role models.UserRole) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", role).Count(&count).Error
	return count, err
}

func (r *GormDashboardRepository) CountTasks(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Task{}).Count(&count).Error
	return count, err
}

func (r *GormDashboardRepository) UserRoleBreakdown(ctx context.Context) ([]GroupCount, error) {
	return r.groupCount(ctx, &models.User{}, "role")
}

func (r *GormDashboardRepository) TaskStatusBreakdown(ctx context.Context) ([]GroupCount, error) {
	return r.groupCount(ctx, &models.Task{}, "status")
}

func (r *GormDashboardRepository) groupCount(ctx context.Context, model any, column string) ([]GroupCount, error) {
	rows := []GroupCount{}
	err := r.db.WithContext(ctx).
		Model(model).
		Select(column + " AS group_value, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error
	return rows, err
}

func (r *GormDashboardRepository) RecentUsers(ctx context.Context, limit int) ([]models.User, error) {
	users := []models.User{}
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

func (r *GormDashboardRepository) RecentTasks(ctx context.Context, limit int) ([]models.Task, error) {
	tasks := []models.Task{}
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("tasks.created_at DESC").
		Limit(limit).
		Find(&tasks).Error
	return tasks, err
}

// MostActiveUsers ranks users by task count; ties are broken by user id.
func (r *GormDashboardRepository) MostActiveUsers(ctx context.Context, limit int) ([]UserTaskCount, error) {
	rows := []UserTaskCount{}
	err := r.db.WithContext(ctx).
		Table("tasks").
		Select("users.id AS user_id, users.username AS username, users.email AS email, COUNT(tasks.id) AS task_count").
		Joins("JOIN users ON users.id = tasks.user_id").
		Group("users.id, users.username, users.email").
		Order("task_count DESC, users.id ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// OverdueTasks returns every task due strictly before now that is not completed.
func (r *GormDashboardRepository) OverdueTasks(ctx context.Context, now time.Time) ([]models.Task, error) {
	tasks := []models.Task{}
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("tasks.due_date IS NOT NULL AND tasks.due_date < ?", now).
		Where("tasks.status <> ?", models.TaskStatusCompleted).
		Order("tasks.due_date ASC").
		Find(&tasks).Error
	return tasks, err
}
