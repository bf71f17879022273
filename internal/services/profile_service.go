package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/task-tracker-api/internal/constants"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrIncorrectPassword = errors.New("current password is incorrect")

// ProfileService manages the caller's own account
type ProfileService struct {
	userRepo repository.UserRepository
	images   *ImageNormalizer
}

// NewProfileService creates a new ProfileService
func NewProfileService(userRepo repository.UserRepository, images *ImageNormalizer) *ProfileService {
	return &ProfileService{
		userRepo: userRepo,
		images:   images,
	}
}

// UpdateProfileInput holds the profile fields to change. Empty fields are left alone.
type UpdateProfileInput struct {
	Username   string
	Email      string
	ProfileImg string
}

// ChangePasswordInput holds a password change request
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

// GetProfile returns the caller's account
func (s *ProfileService) GetProfile(ctx context.Context, caller Caller) (*models.User, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	return s.findUser(ctx, caller.UserID)
}

// UpdateProfile changes the caller's username, email or profile image.
func (s *ProfileService) UpdateProfile(ctx context.Context, caller Caller, input UpdateProfileInput) (*models.User, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}

	user, err := s.findUser(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	username := strings.TrimSpace(input.Username)
	if username != "" && username != user.Username {
		if err := validateUsername(username); err != nil {
			return nil, err
		}
		if err := ensureUsernameFree(ctx, s.userRepo, username); err != nil {
			return nil, err
		}
		user.Username = username
	}

	email := strings.TrimSpace(input.Email)
	if email != "" && email != user.Email {
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		if err := ensureEmailFree(ctx, s.userRepo, email); err != nil {
			return nil, err
		}
		user.Email = email
	}

	if strings.TrimSpace(input.ProfileImg) != "" {
		image, err := s.images.Normalize(ctx, input.ProfileImg, constants.ImageNamespaceProfilePics)
		if err != nil {
			var validationErr *ValidationError
			if errors.As(err, &validationErr) {
				return nil, newValidationError("profileImg", validationErr.Message)
			}
			return nil, err
		}
		user.ProfileImg = image
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// ChangePassword replaces the caller's password after checking the current one.
func (s *ProfileService) ChangePassword(ctx context.Context, caller Caller, input ChangePasswordInput) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	if input.CurrentPassword == "" || input.NewPassword == "" {
		return newValidationError("password", "both current and new password are required")
	}

	user, err := s.findUser(ctx, caller.UserID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.CurrentPassword)); err != nil {
		return ErrIncorrectPassword
	}
	if len(input.NewPassword) < constants.MinPasswordLength {
		return ErrPasswordTooShort
	}

	hash, err := hashPassword(input.NewPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}
	return nil
}

func (s *ProfileService) findUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
