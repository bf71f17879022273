package dto

import (
	"time"

	"github.com/yukikurage/task-tracker-api/internal/models"
)

// SignupRequest is the body of POST /api/auth/signup
type SignupRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest is the body of PUT /api/profile
type UpdateProfileRequest struct {
	Username   string `json:"username" binding:"omitempty,min=3,max=50"`
	Email      string `json:"email"`
	ProfileImg string `json:"profileImg"`
}

// ChangePasswordRequest is the body of PUT /api/profile/password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// UserDTO represents a user in API responses
type UserDTO struct {
	ID         string          `json:"id"`
	Username   string          `json:"username"`
	Email      string          `json:"email"`
	Role       models.UserRole `json:"role"`
	ProfileImg *string         `json:"profileImg"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		Role:       user.Role,
		ProfileImg: user.ProfileImg,
		CreatedAt:  user.CreatedAt,
	}
}
