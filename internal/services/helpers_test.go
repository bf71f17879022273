package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-tracker-api/internal/imagestore"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Task{}, &models.AdminAction{}))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashed",
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// fakeStore counts uploads and returns a canned result or error.
type fakeStore struct {
	mu         sync.Mutex
	calls      int
	namespaces []string
	err        error
}

func (s *fakeStore) Upload(ctx context.Context, payload, namespace string) (*imagestore.UploadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.namespaces = append(s.namespaces, namespace)
	if s.err != nil {
		return nil, s.err
	}
	key := namespace + "/fake.png"
	return &imagestore.UploadResult{SecureURL: "https://cdn.example.com/" + key, Key: key}, nil
}

func (s *fakeStore) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// recordingAuditor keeps every entry in memory.
type recordingAuditor struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func (r *recordingAuditor) Record(ctx context.Context, entry AuditEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *recordingAuditor) Entries() []AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]AuditEntry(nil), r.entries...)
}

// failingActionRepo rejects every write.
type failingActionRepo struct {
	mu    sync.Mutex
	calls int
}

func (r *failingActionRepo) Create(ctx context.Context, action *models.AdminAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return errors.New("database unavailable")
}

func (r *failingActionRepo) ListRecent(ctx context.Context, limit int) ([]models.AdminAction, error) {
	return nil, errors.New("database unavailable")
}

const inlinePNG = "data:image/png;base64,iVBORw0KGgo="
