package handlers

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/constants"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
	"github.com/yukikurage/task-tracker-api/internal/middleware"
	"github.com/yukikurage/task-tracker-api/internal/services"
)

// respondError maps a service error onto the API error body. Unexpected
// errors are attached to the context so the request logger records them.
func respondError(c *gin.Context, err error) {
	var (
		validationErr  *services.ValidationError
		uploadErr      *services.UploadError
		aggregationErr *services.AggregationError
	)

	switch {
	case errors.As(err, &validationErr):
		apierrors.BadRequest(c, validationErr.Error())
	case errors.As(err, &uploadErr):
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeUploadFailed, "Failed to upload image.", uploadErr.Detail)
	case errors.As(err, &aggregationErr):
		c.Error(err)
		apierrors.InternalErrorWithDetails(c, apierrors.ErrCodeAggregationFailed, "Failed to fetch dashboard data.", gin.H{"report": aggregationErr.Report})
	case errors.Is(err, services.ErrUnauthorized):
		apierrors.Unauthorized(c, "")
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	case errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrEmailTaken):
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeAlreadyExists, err.Error(), nil)
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeInvalidCredentials, "Invalid username or password", nil)
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters long", constants.MinPasswordLength))
	case errors.Is(err, services.ErrIncorrectPassword):
		apierrors.BadRequest(c, "Current password is incorrect")
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "AI service is not configured. Please set OPENAI_API_KEY environment variable.")
	case errors.Is(err, services.ErrAINoTasksGenerated),
		errors.Is(err, services.ErrAINoValidTasks):
		apierrors.BadRequest(c, err.Error())
	default:
		c.Error(err)
		apierrors.InternalError(c, "")
	}
}

// requireCaller writes a 401 when the request carries no identity
func requireCaller(c *gin.Context) (services.Caller, bool) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return services.Caller{}, false
	}
	return caller, true
}
