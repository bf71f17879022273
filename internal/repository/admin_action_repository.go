package repository

import (
	"context"

	"github.com/yukikurage/task-tracker-api/internal/models"
	"gorm.io/gorm"
)

// GormAdminActionRepository is a GORM implementation of AdminActionRepository
type GormAdminActionRepository struct {
	db *gorm.DB
}

// NewAdminActionRepository creates a new AdminActionRepository
func NewAdminActionRepository(db *gorm.DB) AdminActionRepository {
	return &GormAdminActionRepository{db: db}
}

// Create appends an admin action
func (r *GormAdminActionRepository) Create(ctx context.Context, action *models.AdminAction) error {
	return r.db.WithContext(ctx).Create(action).Error
}

// ListRecent returns the newest actions first with the admin preloaded
func (r *GormAdminActionRepository) ListRecent(ctx context.Context, limit int) ([]models.AdminAction, error) {
	actions := []models.AdminAction{}
	if err := r.db.WithContext(ctx).
		Preload("Admin").
		Order("admin_actions.created_at DESC").
		Limit(limit).
		Find(&actions).Error; err != nil {
		return nil, err
	}
	return actions, nil
}
