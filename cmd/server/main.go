package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/config"
	"github.com/yukikurage/task-tracker-api/internal/constants"
	"github.com/yukikurage/task-tracker-api/internal/database"
	"github.com/yukikurage/task-tracker-api/internal/handlers"
	"github.com/yukikurage/task-tracker-api/internal/imagestore"
	"github.com/yukikurage/task-tracker-api/internal/jobs"
	"github.com/yukikurage/task-tracker-api/internal/logging"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"github.com/yukikurage/task-tracker-api/internal/services"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg, log); err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	db := database.GetDB()

	// Run migrations
	if err := database.Migrate(db, log); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}

	ctx := context.Background()

	// Image store
	store, err := imagestore.New(ctx, cfg.ImageStore)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize image store")
	}
	if cfg.ImageStore.Provider == "" {
		log.Warn("Image store is not configured, inline image uploads will fail")
	}
	images := services.NewImageNormalizer(store, cfg.ImageUploadTimeout)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	actionRepo := repository.NewAdminActionRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)

	// Admin audit log
	audit := services.NewAuditLog(actionRepo, log, services.AuditLogConfig{
		QueueSize:    cfg.AuditQueueSize,
		Workers:      cfg.AuditWorkers,
		WriteTimeout: cfg.AuditWriteTimeout,
	})

	// Services
	authService := services.NewAuthService(userRepo, audit)
	taskService := services.NewAuditedTaskService(services.NewTaskService(taskRepo, images), audit)
	profileService := services.NewProfileService(userRepo, images)
	dashboardService := services.NewDashboardService(dashboardRepo, actionRepo)

	if cfg.HasBootstrapAdmin() {
		admin, err := authService.EnsureAdmin(ctx, services.SignupInput{
			Username: cfg.AdminUsername,
			Email:    cfg.AdminEmail,
			Password: cfg.AdminPassword,
		})
		if err != nil {
			log.WithError(err).Fatal("Failed to bootstrap admin account")
		}
		log.WithField("username", admin.Username).Info("Admin account ready")
	}

	// Initialize AI service
	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	}

	// Background jobs
	scheduler := jobs.NewScheduler(log, time.Minute)
	if cfg.OverdueReportSchedule != "" {
		if _, err := scheduler.Schedule(cfg.OverdueReportSchedule, jobs.NewOverdueReport(dashboardRepo, log)); err != nil {
			log.WithError(err).Fatal("Failed to schedule overdue report")
		}
	}
	scheduler.Start()

	// Initialize Gin router
	r := gin.New()
	r.Use(gin.Recovery(), logging.RequestLogger(log))

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	authKey := []byte(cfg.SessionSecret)
	sessionStore, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		authKey,   // authentication key
	)
	if err != nil {
		log.WithError(err).Fatal("Failed to create Redis store")
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, sessionStore))

	handlers.RegisterRoutes(r, handlers.Handlers{
		Auth:    handlers.NewAuthHandler(authService),
		Tasks:   handlers.NewTaskHandler(taskService, aiService),
		Profile: handlers.NewProfileHandler(profileService),
		Admin:   handlers.NewAdminHandler(dashboardService),
	}, userRepo)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}
	scheduler.Stop(shutdownCtx)
	if err := audit.Close(shutdownCtx); err != nil {
		log.WithError(err).Error("Admin audit log did not drain")
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Info("Server exited")
}
