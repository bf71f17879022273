package services

import (
	"context"
	"time"

	"github.com/yukikurage/task-tracker-api/internal/constants"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"golang.org/x/sync/errgroup"
)

// DashboardSnapshot is a point-in-time summary of the whole dataset.
type DashboardSnapshot struct {
	UserCount           int64
	AdminCount          int64
	TaskCount           int64
	UserRoleBreakdown   map[string]int64
	TaskStatusBreakdown map[string]int64
	RecentUsers         []models.User
	RecentTasks         []models.Task
	MostActiveUsers     []repository.UserTaskCount
	OverdueTasks        []models.Task
	RecentAdminActions  []models.AdminAction
}

// DashboardService computes admin dashboard reports
type DashboardService struct {
	repo    repository.DashboardRepository
	actions repository.AdminActionRepository
	now     func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(repo repository.DashboardRepository, actions repository.AdminActionRepository) *DashboardService {
	return &DashboardService{
		repo:    repo,
		actions: actions,
		now:     time.Now,
	}
}

// WithClock replaces the clock used for overdue detection.
func (s *DashboardService) WithClock(now func() time.Time) *DashboardService {
	s.now = now
	return s
}

// ComputeDashboard runs every report concurrently. The first failing report
// aborts the rest and is returned as an *AggregationError.
func (s *DashboardService) ComputeDashboard(ctx context.Context) (*DashboardSnapshot, error) {
	snapshot := &DashboardSnapshot{}
	now := s.now().UTC()
	limit := constants.DashboardRecentLimit

	g, ctx := errgroup.WithContext(ctx)

	run := func(report string, fn func() error) {
		g.Go(func() error {
			if err := fn(); err != nil {
				return &AggregationError{Report: report, Err: err}
			}
			return nil
		})
	}

	run("userCount", func() (err error) {
		snapshot.UserCount, err = s.repo.CountUsers(ctx)
		return err
	})
	run("adminCount", func() (err error) {
		snapshot.AdminCount, err = s.repo.CountUsersByRole(ctx, models.RoleAdmin)
		return err
	})
	run("taskCount", func() (err error) {
		snapshot.TaskCount, err = s.repo.CountTasks(ctx)
		return err
	})
	run("userRoleBreakdown", func() error {
		rows, err := s.repo.UserRoleBreakdown(ctx)
		if err != nil {
			return err
		}
		snapshot.UserRoleBreakdown = breakdown(rows)
		return nil
	})
	run("taskStatusBreakdown", func() error {
		rows, err := s.repo.TaskStatusBreakdown(ctx)
		if err != nil {
			return err
		}
		snapshot.TaskStatusBreakdown = breakdown(rows)
		return nil
	})
	run("recentUsers", func() (err error) {
		snapshot.RecentUsers, err = s.repo.RecentUsers(ctx, limit)
		return err
	})
	run("recentTasks", func() (err error) {
		snapshot.RecentTasks, err = s.repo.RecentTasks(ctx, limit)
		return err
	})
	run("mostActiveUsers", func() (err error) {
		snapshot.MostActiveUsers, err = s.repo.MostActiveUsers(ctx, limit)
		return err
	})
	run("overdueTasks", func() (err error) {
		snapshot.OverdueTasks, err = s.repo.OverdueTasks(ctx, now)
		return err
	})
	run("recentAdminActions", func() (err error) {
		snapshot.RecentAdminActions, err = s.actions.ListRecent(ctx, limit)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func breakdown(rows []repository.GroupCount) map[string]int64 {
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.GroupValue] = row.Count
	}
	return counts
}
