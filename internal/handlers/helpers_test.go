package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-tracker-api/internal/constants"
	"github.com/yukikurage/task-tracker-api/internal/database"
	"github.com/yukikurage/task-tracker-api/internal/imagestore"
	"github.com/yukikurage/task-tracker-api/internal/logging"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"github.com/yukikurage/task-tracker-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// stubStore answers uploads without a bucket
type stubStore struct {
	calls int
	err   error
}

func (s *stubStore) Upload(ctx context.Context, payload, namespace string) (*imagestore.UploadResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &imagestore.UploadResult{SecureURL: "https://cdn.example.com/" + namespace + "/stub.png"}, nil
}

type apiTestEnv struct {
	db          *gorm.DB
	router      *gin.Engine
	store       *stubStore
	audit       *services.AuditLog
	authService *services.AuthService
}

func setupAPITestEnv(t *testing.T) *apiTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db, logging.Discard()))
	database.SetDB(db)

	store := &stubStore{}
	images := services.NewImageNormalizer(store, 0)
	userRepo := repository.NewUserRepository(db)
	actionRepo := repository.NewAdminActionRepository(db)
	audit := services.NewAuditLog(actionRepo, logging.Discard(), services.AuditLogConfig{QueueSize: 16})

	authService := services.NewAuthService(userRepo, audit)
	taskService := services.NewAuditedTaskService(
		services.NewTaskService(repository.NewTaskRepository(db), images),
		audit,
	)
	profileService := services.NewProfileService(userRepo, images)
	dashboardService := services.NewDashboardService(repository.NewDashboardRepository(db), actionRepo)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	RegisterRoutes(router, Handlers{
		Auth:    NewAuthHandler(authService),
		Tasks:   NewTaskHandler(taskService, nil),
		Profile: NewProfileHandler(profileService),
		Admin:   NewAdminHandler(dashboardService),
	}, userRepo)

	t.Cleanup(func() {
		audit.Close(context.Background())
		sqlDB.Close()
	})

	return &apiTestEnv{
		db:          db,
		router:      router,
		store:       store,
		audit:       audit,
		authService: authService,
	}
}

// do sends a JSON request, attaching cookies from a previous response
func (env *apiTestEnv) do(t *testing.T, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

// signup creates an account with the given role and returns its session cookies
func (env *apiTestEnv) signup(t *testing.T, username string, role models.UserRole) (*models.User, []*http.Cookie) {
	t.Helper()

	var (
		user *models.User
		err  error
	)
	input := services.SignupInput{Username: username, Email: username + "@example.com", Password: "secret1"}
	if role == models.RoleAdmin {
		user, err = env.authService.EnsureAdmin(context.Background(), input)
	} else {
		user, err = env.authService.Signup(context.Background(), services.Caller{}, input)
	}
	require.NoError(t, err)

	w := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": username, "password": "secret1"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	return user, w.Result().Cookies()
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

type errorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details"`
}

var errBucketGone = errors.New("bucket is gone")
