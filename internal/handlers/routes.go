package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/middleware"
)

// Handlers groups every HTTP handler the API exposes
type Handlers struct {
	Auth    *AuthHandler
	Tasks   *TaskHandler
	Profile *ProfileHandler
	Admin   *AdminHandler
}

// RegisterRoutes mounts the API on r. Session middleware must already be installed;
// users resolves the session account on every authenticated request.
func RegisterRoutes(r *gin.Engine, h Handlers, users middleware.UserFinder) {
	requireAuth := middleware.RequireAuth(users)
	optionalAuth := middleware.OptionalAuth(users)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Task Tracker API is running",
		})
	})

	api := r.Group("/api")
	{
		// Auth routes (public, session is read when present)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", optionalAuth, h.Auth.Signup)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/logout", optionalAuth, h.Auth.Logout)
			auth.GET("/me", requireAuth, h.Auth.GetCurrentUser)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("", h.Tasks.ListTasks)
			tasks.POST("", h.Tasks.CreateTask)
			tasks.GET("/search", h.Tasks.SearchTasks)
			tasks.POST("/generate", h.Tasks.GenerateTasks)
			tasks.GET("/:id", h.Tasks.GetTask)
			tasks.PUT("/:id", h.Tasks.UpdateTask)
			tasks.DELETE("/:id", h.Tasks.DeleteTask)
		}

		// Profile routes (protected)
		profile := api.Group("/profile")
		profile.Use(requireAuth)
		{
			profile.GET("", h.Profile.GetProfile)
			profile.PUT("", h.Profile.UpdateProfile)
			profile.PUT("/password", h.Profile.ChangePassword)
		}

		// Admin routes (admins only)
		admin := api.Group("/admin")
		admin.Use(requireAuth, middleware.RequireAdmin())
		{
			admin.GET("/dashboard", h.Admin.Dashboard)
		}
	}
}
