package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yukikurage/task-tracker-api/internal/constants"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken        = errors.New("username is already taken")
	ErrEmailTaken           = errors.New("email is already taken")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrPasswordTooShort     = errors.New("password must be at least 6 characters long")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

const auditTargetUser = "User"

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
	audit    AuditRecorder
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, audit AuditRecorder) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		audit:    audit,
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Username string
	Email    string
	Password string
}

// Signup creates a new user. actor is the session the request came from,
// if any; signups performed by an admin are audited.
func (s *AuthService) Signup(ctx context.Context, actor Caller, input SignupInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(input.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := ensureUsernameFree(ctx, s.userRepo, username); err != nil {
		return nil, err
	}
	if err := ensureEmailFree(ctx, s.userRepo, email); err != nil {
		return nil, err
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if actor.IsAdmin() {
		s.audit.Record(ctx, AuditEntry{
			AdminID:  actor.UserID,
			Action:   "Created new user",
			Target:   auditTargetUser,
			TargetID: user.ID,
			Details:  userDetails(user),
		})
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if user.IsAdmin() {
		s.audit.Record(ctx, AuditEntry{
			AdminID:  user.ID,
			Action:   "Admin login",
			Target:   auditTargetUser,
			TargetID: user.ID,
			Details:  userDetails(user),
		})
	}

	return user, nil
}

// Logout records admin logouts. Clearing the session is the caller's job.
func (s *AuthService) Logout(ctx context.Context, caller Caller) {
	if !caller.IsAdmin() {
		return
	}

	entry := AuditEntry{
		AdminID:  caller.UserID,
		Action:   "Admin logout",
		Target:   auditTargetUser,
		TargetID: caller.UserID,
	}
	if user, err := s.userRepo.FindByID(ctx, caller.UserID); err == nil {
		entry.Details = userDetails(user)
	}
	s.audit.Record(ctx, entry)
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// EnsureAdmin creates the bootstrap admin account, or promotes an existing
// user with that username. It is safe to call on every start.
func (s *AuthService) EnsureAdmin(ctx context.Context, input SignupInput) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, input.Username)
	switch {
	case err == nil:
		if user.IsAdmin() {
			return user, nil
		}
		user.Role = models.RoleAdmin
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to promote admin: %w", err)
		}
		return user, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("failed to find admin: %w", err)
	}

	if err := validateUsername(input.Username); err != nil {
		return nil, err
	}
	if err := validateEmail(input.Email); err != nil {
		return nil, err
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user = &models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}
	return user, nil
}

func ensureUsernameFree(ctx context.Context, repo repository.UserRepository, username string) error {
	if _, err := repo.FindByUsername(ctx, username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check username: %w", err)
	}
	return nil
}

func ensureEmailFree(ctx context.Context, repo repository.UserRepository, email string) error {
	if _, err := repo.FindByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check email: %w", err)
	}
	return nil
}

func validateUsername(username string) error {
	if username == "" {
		return newValidationError("username", "is required")
	}
	if utf8.RuneCountInString(username) > constants.MaxUsernameLength {
		return newValidationError("username", fmt.Sprintf("must be at most %d characters", constants.MaxUsernameLength))
	}
	return nil
}

func validateEmail(email string) error {
	if fieldValidator.Var(email, "required,email") != nil {
		return newValidationError("email", "invalid email format")
	}
	if utf8.RuneCountInString(email) > constants.MaxEmailLength {
		return newValidationError("email", fmt.Sprintf("must be at most %d characters", constants.MaxEmailLength))
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", newValidationError("password", "must be at most 72 bytes")
	}
	if err != nil {
		return "", ErrFailedToHashPassword
	}
	return string(hashed), nil
}

func userDetails(user *models.User) models.ActionDetails {
	return models.ActionDetails{
		"username": user.Username,
		"email":    user.Email,
	}
}
