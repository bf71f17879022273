package repository

import (
	"context"
	"strings"

	"github.com/yukikurage/task-tracker-api/internal/database"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// FindOwned finds a task by ID that belongs to ownerID
func (r *GormTaskRepository) FindOwned(ctx context.Context, id, ownerID string) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).
		Scopes(database.OwnedBy(ownerID)).
		Where("tasks.id = ?", id).
		First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves an owner's tasks with filtering and pagination
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Task{}).Scopes(database.OwnedBy(filter.UserID))

	// Apply filters
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	tasks := []models.Task{}
	if err := query.
		Order("tasks.created_at DESC").
		Scopes(database.Paginate(filter.Pagination)).
		Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// UpdateOwned applies column changes to a task that belongs to ownerID.
// Zero affected rows is not an error: MySQL reports unchanged rows as unaffected.
func (r *GormTaskRepository) UpdateOwned(ctx context.Context, id, ownerID string, changes map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Scopes(database.OwnedBy(ownerID)).
		Where("tasks.id = ?", id).
		Updates(changes)
	return result.Error
}

// DeleteOwned removes a task that belongs to ownerID and returns it
func (r *GormTaskRepository) DeleteOwned(ctx context.Context, id, ownerID string) (*models.Task, error) {
	var deleted *models.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.Scopes(database.OwnedBy(ownerID)).Where("tasks.id = ?", id).First(&task).Error; err != nil {
			return err
		}

		result := tx.Scopes(database.OwnedBy(ownerID)).Where("tasks.id = ?", id).Delete(&models.Task{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		deleted = &task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// Search matches title or description case-insensitively.
// SQLite's LOWER only folds ASCII, so on that driver the owner's tasks are
// matched in Go to keep non-ASCII searches case-insensitive.
func (r *GormTaskRepository) Search(ctx context.Context, ownerID, query string) ([]models.Task, error) {
	lowered := strings.ToLower(query)
	db := r.db.WithContext(ctx).
		Scopes(database.OwnedBy(ownerID)).
		Order("tasks.created_at ASC")

	tasks := []models.Task{}
	switch r.db.Dialector.Name() {
	case "sqlite":
		if err := db.Find(&tasks).Error; err != nil {
			return nil, err
		}
		return matchText(tasks, lowered), nil
	case "postgres":
		pattern := "%" + escapeLike(query) + "%"
		db = db.Where("(tasks.title ILIKE ? ESCAPE '!' OR tasks.description ILIKE ? ESCAPE '!')", pattern, pattern)
	default:
		pattern := "%" + escapeLike(lowered) + "%"
		db = db.Where("(LOWER(tasks.title) LIKE ? ESCAPE '!' OR LOWER(tasks.description) LIKE ? ESCAPE '!')", pattern, pattern)
	}

	if err := db.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// matchText keeps tasks whose lowered title or description contains needle
func matchText(tasks []models.Task, needle string) []models.Task {
	matched := tasks[:0]
	for _, task := range tasks {
		if strings.Contains(strings.ToLower(task.Title), needle) ||
			strings.Contains(strings.ToLower(task.Description), needle) {
			matched = append(matched, task)
		}
	}
	return matched
}

// escapeLike escapes LIKE wildcards using '!' as the escape character,
// which every supported dialect accepts without string-literal quirks.
func escapeLike(s string) string {
	replacer := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return replacer.Replace(s)
}
