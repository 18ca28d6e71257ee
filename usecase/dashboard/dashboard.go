package dashboard

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/workdesk/domain"
	"github.com/fastygo/workdesk/domain/stats"
	"github.com/fastygo/workdesk/repository"
	"github.com/fastygo/workdesk/usecase"
)

// Overview is the headline block of the dashboard.
type Overview struct {
	Filter   domain.DateFilter `json:"filter"`
	Window   domain.Interval   `json:"window"`
	Stats    stats.Stats       `json:"stats"`
	Severity stats.Severity    `json:"severity"`
}

// Row is one line of a per-user or per-category table.
type Row struct {
	stats.EntityStats
	Name string `json:"name"`
}

type UseCase struct {
	tasks      repository.TaskRepository
	users      repository.UserRepository
	categories repository.CategoryRepository
	cache      repository.StatsCache
	ttl        time.Duration
	clock      usecase.Clock
	logger     *zap.Logger
}

func New(
	tasks repository.TaskRepository,
	users repository.UserRepository,
	categories repository.CategoryRepository,
	cache repository.StatsCache,
	ttl time.Duration,
	clock usecase.Clock,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = usecase.SystemClock(nil)
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &UseCase{
		tasks:      tasks,
		users:      users,
		categories: categories,
		cache:      cache,
		ttl:        ttl,
		clock:      clock,
		logger:     logger,
	}
}

// Overview computes stats over every task (or only those assigned to assignedUserID) due in the window.
func (uc *UseCase) Overview(ctx context.Context, filter domain.DateFilter, assignedUserID string) (*Overview, error) {
	now := uc.clock()
	key := cacheKey("overview", filter, assignedUserID, now)

	var cached Overview
	if uc.cache != nil {
		hit, err := uc.cache.Get(ctx, key, &cached)
		if err != nil {
			uc.logger.Warn("stats cache read failed", zap.String("key", key), zap.Error(err))
		}
		if hit {
			return &cached, nil
		}
	}

	tasks, err := uc.load(ctx, filter, assignedUserID, now)
	if err != nil {
		return nil, err
	}
	s := stats.Compute(tasks, filter, now)
	overview := &Overview{
		Filter:   filter,
		Window:   filter.Resolve(now),
		Stats:    s,
		Severity: stats.Classify(s.CompletionRate, s.IsEmpty()),
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, key, overview, uc.ttl); err != nil {
			uc.logger.Warn("stats cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return overview, nil
}

// ByUser rolls the stats up per active user, in user list order.
func (uc *UseCase) ByUser(ctx context.Context, filter domain.DateFilter) ([]Row, error) {
	users, err := uc.users.List(ctx)
	if err != nil {
		return nil, err
	}
	now := uc.clock()
	tasks, err := uc.load(ctx, filter, "", now)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(users))
	names := make(map[string]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
		names[u.ID] = u.Name
	}
	return withNames(stats.RollUpByUser(tasks, ids, filter, now), names), nil
}

// ByCategory rolls the stats up per category.
func (uc *UseCase) ByCategory(ctx context.Context, filter domain.DateFilter) ([]Row, error) {
	categories, err := uc.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	now := uc.clock()
	tasks, err := uc.load(ctx, filter, "", now)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(categories))
	names := make(map[string]string, len(categories))
	for i, c := range categories {
		ids[i] = c.ID
		names[c.ID] = c.Name
	}
	return withNames(stats.RollUpByCategory(tasks, ids, filter, now), names), nil
}

func (uc *UseCase) load(ctx context.Context, filter domain.DateFilter, assignedUserID string, now time.Time) ([]domain.Task, error) {
	repoFilter := repository.TaskFilter{AssignedUserID: assignedUserID}
	if window := filter.Resolve(now); !window.Unbounded {
		repoFilter.DueFrom = &window.Start
		repoFilter.DueTo = &window.End
	}
	return uc.tasks.List(ctx, repoFilter)
}

func withNames(rows []stats.EntityStats, names map[string]string) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = Row{EntityStats: r, Name: names[r.EntityID]}
	}
	return out
}

// cacheKey includes today's date so relative windows and overdue counts roll over at midnight.
func cacheKey(kind string, filter domain.DateFilter, userID string, now time.Time) string {
	key := fmt.Sprintf("%s:%s:%s", kind, filter.Kind, now.Format(domain.DateLayout))
	if filter.Kind == domain.FilterCustom {
		key += ":" + filter.From.Format(domain.DateLayout) + ":" + filter.To.Format(domain.DateLayout)
	}
	if userID != "" {
		key += ":" + userID
	}
	return key
}
