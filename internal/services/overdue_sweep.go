package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/workdesk/domain"
	dashboardUC "github.com/fastygo/workdesk/usecase/dashboard"
)

// UserRollup is satisfied by the dashboard use case.
type UserRollup interface {
	ByUser(ctx context.Context, filter domain.DateFilter) ([]dashboardUC.Row, error)
}

// OverdueSweep logs, on a schedule, how many unfinished tasks each user has past their due date.
type OverdueSweep struct {
	rollup  UserRollup
	logger  *zap.Logger
	cron    *cron.Cron
	timeout time.Duration
}

// NewOverdueSweep schedules the sweep with a six-field cron spec. An empty spec yields a
// sweep that never runs on its own.
func NewOverdueSweep(rollup UserRollup, spec string, loc *time.Location, logger *zap.Logger) (*OverdueSweep, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	s := &OverdueSweep{
		rollup:  rollup,
		logger:  logger,
		cron:    cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		timeout: time.Minute,
	}
	if spec != "" {
		if _, err := s.cron.AddFunc(spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
			defer cancel()
			if _, err := s.Run(ctx); err != nil {
				s.logger.Error("overdue sweep failed", zap.Error(err))
			}
		}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *OverdueSweep) Start() {
	s.cron.Start()
	s.logger.Info("overdue sweep scheduled", zap.Int("jobs", len(s.cron.Entries())))
}

func (s *OverdueSweep) Stop(ctx context.Context) {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
}

// Run performs one sweep and returns the overdue count per user id, omitting users with none.
func (s *OverdueSweep) Run(ctx context.Context) (map[string]int, error) {
	rows, err := s.rollup.ByUser(ctx, domain.AllTime())
	if err != nil {
		return nil, err
	}

	overdue := make(map[string]int)
	total := 0
	for _, row := range rows {
		if row.Stats.Overdue == 0 {
			continue
		}
		overdue[row.EntityID] = row.Stats.Overdue
		total += row.Stats.Overdue
		s.logger.Info("user has overdue tasks",
			zap.String("user_id", row.EntityID),
			zap.String("name", row.Name),
			zap.Int("overdue", row.Stats.Overdue),
			zap.Int("due_soon", row.Stats.DueSoon))
	}
	s.logger.Info("overdue sweep finished", zap.Int("users", len(overdue)), zap.Int("tasks", total))
	return overdue, nil
}
