package services

import "github.com/yukikurage/task-tracker-api/internal/models"

// Caller is the authenticated identity a request acts as.
type Caller struct {
	UserID string
	Role   models.UserRole
}

func (c Caller) IsAdmin() bool {
	return c.Role == models.RoleAdmin
}
