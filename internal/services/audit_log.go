package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
)

// AuditEntry is one admin action waiting to be persisted.
type AuditEntry struct {
	AdminID  string
	Action   string
	Target   string
	TargetID string
	Details  models.ActionDetails
}

// AuditRecorder records admin actions. Recording never fails the caller.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

// AuditLogConfig configures an AuditLog
type AuditLogConfig struct {
	QueueSize    int
	Workers      int
	WriteTimeout time.Duration
}

// AuditLog persists admin actions from a bounded queue drained by a fixed
// set of workers.
type AuditLog struct {
	repo         repository.AdminActionRepository
	logger       *logrus.Logger
	writeTimeout time.Duration

	queue chan AuditEntry
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewAuditLog creates an AuditLog and starts its workers.
func NewAuditLog(repo repository.AdminActionRepository, logger *logrus.Logger, cfg AuditLogConfig) *AuditLog {
	if cfg.QueueSize < 0 {
		cfg.QueueSize = 0
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}

	l := &AuditLog{
		repo:         repo,
		logger:       logger,
		writeTimeout: cfg.WriteTimeout,
		queue:        make(chan AuditEntry, cfg.QueueSize),
	}

	for i := 0; i < cfg.Workers; i++ {
		l.wg.Add(1)
		go l.worker()
	}

	return l
}

// Record enqueues entry. When the queue is full or the log is closed the
// entry is written inline instead.
func (l *AuditLog) Record(ctx context.Context, entry AuditEntry) {
	l.mu.RLock()
	if !l.closed {
		select {
		case l.queue <- entry:
			l.mu.RUnlock()
			return
		default:
		}
	}
	l.mu.RUnlock()

	l.write(entry)
}

// Close stops accepting queued entries and waits for the queue to drain.
func (l *AuditLog) Close(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.queue)
	l.mu.Unlock()

	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *AuditLog) worker() {
	defer l.wg.Done()
	for entry := range l.queue {
		l.write(entry)
	}
}

// write persists entry under its own deadline, detached from any request.
func (l *AuditLog) write(entry AuditEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), l.writeTimeout)
	defer cancel()

	action := &models.AdminAction{
		AdminID:  entry.AdminID,
		Action:   entry.Action,
		Target:   entry.Target,
		TargetID: entry.TargetID,
		Details:  entry.Details,
	}

	if err := l.repo.Create(ctx, action); err != nil {
		l.logger.WithError(err).WithFields(logrus.Fields{
			"admin_id":  entry.AdminID,
			"action":    entry.Action,
			"target":    entry.Target,
			"target_id": entry.TargetID,
		}).Error("Failed to record admin action")
	}
}

// noopAuditRecorder drops every entry.
type noopAuditRecorder struct{}

func (noopAuditRecorder) Record(context.Context, AuditEntry) {}

// NoopAuditRecorder returns a recorder that records nothing.
func NoopAuditRecorder() AuditRecorder {
	return noopAuditRecorder{}
}
