package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-tracker-api/internal/logging"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"github.com/yukikurage/task-tracker-api/internal/utils"
)

func TestAuditLog_PersistsQueuedEntries(t *testing.T) {
	db := newTestDB(t)
	admin := createUser(t, db, "root", models.RoleAdmin)
	repo := repository.NewAdminActionRepository(db)

	log := NewAuditLog(repo, logging.Discard(), AuditLogConfig{QueueSize: 8, Workers: 2, WriteTimeout: time.Second})
	for i := 0; i < 3; i++ {
		log.Record(context.Background(), AuditEntry{
			AdminID: admin.ID,
			Action:  "Created task",
			Target:  "Task",
			Details: models.ActionDetails{"title": "t"},
		})
	}
	require.NoError(t, log.Close(context.Background()))

	actions, err := repo.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, actions, 3)
	assert.Equal(t, "root", actions[0].Admin.Username)
	assert.Equal(t, "t", actions[0].Details["title"])
}

func TestAuditLog_WritesInlineAfterClose(t *testing.T) {
	db := newTestDB(t)
	admin := createUser(t, db, "root", models.RoleAdmin)
	repo := repository.NewAdminActionRepository(db)

	log := NewAuditLog(repo, logging.Discard(), AuditLogConfig{QueueSize: 1})
	require.NoError(t, log.Close(context.Background()))
	require.NoError(t, log.Close(context.Background()))

	log.Record(context.Background(), AuditEntry{AdminID: admin.ID, Action: "Admin logout", Target: "User"})

	var count int64
	require.NoError(t, db.Model(&models.AdminAction{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAuditLog_SwallowsWriteFailures(t *testing.T) {
	repo := &failingActionRepo{}
	log := NewAuditLog(repo, logging.Discard(), AuditLogConfig{QueueSize: 0, Workers: 1})

	assert.NotPanics(t, func() {
		log.Record(context.Background(), AuditEntry{AdminID: "a", Action: "Created task"})
	})
	require.NoError(t, log.Close(context.Background()))
	assert.Equal(t, 1, repo.calls)
}

func TestAuditedTaskService_RecordsAdminMutations(t *testing.T) {
	db := newTestDB(t)
	admin := createUser(t, db, "root", models.RoleAdmin)
	user := createUser(t, db, "alice", models.RoleUser)

	auditor := &recordingAuditor{}
	inner := NewTaskService(repository.NewTaskRepository(db), NewImageNormalizer(&fakeStore{}, 0))
	service := NewAuditedTaskService(inner, auditor)
	ctx := context.Background()

	adminCaller := Caller{UserID: admin.ID, Role: models.RoleAdmin}
	userCaller := Caller{UserID: user.ID, Role: models.RoleUser}

	// Non-admin mutations are never recorded
	own, err := service.Create(ctx, userCaller, CreateTaskInput{Title: "Mine"})
	require.NoError(t, err)
	_, err = service.Update(ctx, userCaller, own.ID, UpdateTaskInput{Status: utils.Some("completed")})
	require.NoError(t, err)
	_, err = service.Delete(ctx, userCaller, own.ID)
	require.NoError(t, err)
	assert.Empty(t, auditor.Entries())

	task, err := service.Create(ctx, adminCaller, CreateTaskInput{Title: "Admin task"})
	require.NoError(t, err)
	_, err = service.Update(ctx, adminCaller, task.ID, UpdateTaskInput{Title: utils.Some("Renamed"), Priority: utils.Some("high")})
	require.NoError(t, err)

	// Reads and failed mutations are not recorded
	_, err = service.Get(ctx, adminCaller, task.ID)
	require.NoError(t, err)
	_, err = service.List(ctx, adminCaller, ListTasksInput{})
	require.NoError(t, err)
	_, err = service.Search(ctx, adminCaller, "renamed")
	require.NoError(t, err)
	_, err = service.Create(ctx, adminCaller, CreateTaskInput{Title: ""})
	require.Error(t, err)

	_, err = service.Delete(ctx, adminCaller, task.ID)
	require.NoError(t, err)

	entries := auditor.Entries()
	require.Len(t, entries, 3)

	assert.Equal(t, "Created task", entries[0].Action)
	assert.Equal(t, "Updated task", entries[1].Action)
	assert.Equal(t, "Deleted task", entries[2].Action)
	for _, entry := range entries {
		assert.Equal(t, admin.ID, entry.AdminID)
		assert.Equal(t, "Task", entry.Target)
		assert.Equal(t, task.ID, entry.TargetID)
		assert.Equal(t, admin.ID, entry.Details["user"])
	}
	assert.Equal(t, "Admin task", entries[0].Details["title"])
	assert.Equal(t, "Renamed", entries[1].Details["title"])
	assert.Equal(t, []string{"title", "priority"}, entries[1].Details["fields"])
}

func TestAuditedTaskService_AuditFailureDoesNotFailMutation(t *testing.T) {
	db := newTestDB(t)
	admin := createUser(t, db, "root", models.RoleAdmin)

	repo := &failingActionRepo{}
	log := NewAuditLog(repo, logging.Discard(), AuditLogConfig{QueueSize: 4})
	inner := NewTaskService(repository.NewTaskRepository(db), NewImageNormalizer(&fakeStore{}, 0))
	service := NewAuditedTaskService(inner, log)

	task, err := service.Create(context.Background(), Caller{UserID: admin.ID, Role: models.RoleAdmin}, CreateTaskInput{Title: "Still saved"})
	require.NoError(t, err)
	require.NoError(t, log.Close(context.Background()))

	var count int64
	require.NoError(t, db.Model(&models.Task{}).Where("id = ?", task.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
	assert.Equal(t, 1, repo.calls)
}
