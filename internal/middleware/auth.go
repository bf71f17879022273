package middleware

import (
	"context"
	"errors"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/constants"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/services"
	"gorm.io/gorm"
)

// UserFinder loads the account behind a session.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// RequireAuth checks if the user is authenticated via session and that the
// account still exists
func RequireAuth(users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := loadCaller(c, users)
		if err != nil {
			c.Error(err)
			apierrors.InternalError(c, "")
			c.Abort()
			return
		}
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalAuth loads the caller when a session exists but never rejects the request.
func OptionalAuth(users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := loadCaller(c, users); err != nil {
			c.Error(err)
		}
		c.Next()
	}
}

// RequireAdmin rejects callers without the admin role. It must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := GetCaller(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		if !caller.IsAdmin() {
			apierrors.Forbidden(c, "Access denied. Admins only.")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	userID, ok := c.Get(constants.ContextKeyUserID)
	if !ok {
		return "", false
	}
	id, ok := userID.(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// GetCaller returns the identity the request acts as
func GetCaller(c *gin.Context) (services.Caller, bool) {
	userID, ok := GetUserID(c)
	if !ok {
		return services.Caller{}, false
	}
	role, _ := c.Get(constants.ContextKeyUserRole)
	roleStr, _ := role.(string)
	return services.Caller{UserID: userID, Role: models.UserRole(roleStr)}, true
}

// loadCaller resolves the session user and copies its current id and role
// into the request context. A session whose account is gone is anonymous.
func loadCaller(c *gin.Context, users UserFinder) (bool, error) {
	session := sessions.Default(c)
	userID, ok := session.Get(constants.ContextKeyUserID).(string)
	if !ok || userID == "" {
		return false, nil
	}

	user, err := users.FindByID(c.Request.Context(), userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	c.Set(constants.ContextKeyUserID, user.ID)
	c.Set(constants.ContextKeyUserRole, string(user.Role))
	return true, nil
}
