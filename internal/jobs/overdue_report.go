package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/task-tracker-api/internal/repository"
)

// OverdueSummary counts overdue, unfinished tasks at a point in time.
type OverdueSummary struct {
	At       time.Time
	Count    int
	OwnerIDs []string
}

// OverdueReport logs how many tasks are past their due date and not completed.
type OverdueReport struct {
	repo   repository.DashboardRepository
	logger *logrus.Logger
	now    func() time.Time
}

func NewOverdueReport(repo repository.DashboardRepository, logger *logrus.Logger) *OverdueReport {
	return &OverdueReport{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (j *OverdueReport) Name() string {
	return "overdue-report"
}

// Summarize collects the overdue tasks and their distinct owners.
func (j *OverdueReport) Summarize(ctx context.Context) (*OverdueSummary, error) {
	now := j.now().UTC()
	tasks, err := j.repo.OverdueTasks(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load overdue tasks: %w", err)
	}

	seen := make(map[string]struct{}, len(tasks))
	owners := make([]string, 0, len(tasks))
	for _, task := range tasks {
		if _, ok := seen[task.UserID]; ok {
			continue
		}
		seen[task.UserID] = struct{}{}
		owners = append(owners, task.UserID)
	}

	return &OverdueSummary{
		At:       now,
		Count:    len(tasks),
		OwnerIDs: owners,
	}, nil
}

func (j *OverdueReport) Run(ctx context.Context) error {
	summary, err := j.Summarize(ctx)
	if err != nil {
		return err
	}

	j.logger.WithFields(logrus.Fields{
		"overdue": summary.Count,
		"owners":  summary.OwnerIDs,
	}).Info("Overdue task report")
	return nil
}
