package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/fastygo/workdesk/domain"
	"github.com/fastygo/workdesk/domain/stats"
	"github.com/fastygo/workdesk/repository"
)

var fixedNow = time.Date(2024, time.March, 13, 10, 0, 0, 0, time.UTC)

type memTasks struct {
	repository.TaskRepository
	rows  []domain.Task
	calls int
}

func (m *memTasks) List(_ context.Context, f repository.TaskFilter) ([]domain.Task, error) {
	m.calls++
	var out []domain.Task
	for _, t := range m.rows {
		if f.AssignedUserID != "" && t.AssignedUserID != f.AssignedUserID {
			continue
		}
		if f.DueFrom != nil && t.DueDate.Before(*f.DueFrom) {
			continue
		}
		if f.DueTo != nil && !t.DueDate.Before(*f.DueTo) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

type memUsers struct {
	repository.UserRepository
	users []domain.User
}

func (m memUsers) List(context.Context) ([]domain.User, error) { return m.users, nil }

type memCategories []domain.Category

func (m memCategories) List(context.Context) ([]domain.Category, error) { return m, nil }

type mapCache struct {
	entries map[string]Overview
}

func (c *mapCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	v, ok := c.entries[key]
	if ok {
		*dest.(*Overview) = v
	}
	return ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.entries[key] = *value.(*Overview)
	return nil
}

func (c *mapCache) Invalidate(context.Context) error {
	c.entries = map[string]Overview{}
	return nil
}

func task(id, user, category string, status domain.TaskStatus, due time.Time) domain.Task {
	t := domain.Task{
		ID:             id,
		Title:          id,
		Status:         status,
		Priority:       domain.PriorityMedium,
		RepeatType:     domain.RepeatNone,
		DueDate:        due,
		AssignedUserID: user,
		CreatorUserID:  user,
		CategoryID:     category,
	}
	if status == domain.TaskStatusCompleted {
		done := due.Add(-time.Hour)
		t.CompletionDate = &done
	}
	return t
}

func fixture() *memTasks {
	return &memTasks{rows: []domain.Task{
		task("a", "u1", "c1", domain.TaskStatusCompleted, fixedNow.Add(-24*time.Hour)),
		task("b", "u1", "c1", domain.TaskStatusPending, fixedNow.Add(-2*time.Hour)),
		task("c", "u2", "c2", domain.TaskStatusInProgress, fixedNow.Add(24*time.Hour)),
		task("d", "u2", "c2", domain.TaskStatusCompleted, fixedNow.AddDate(0, -3, 0)),
	}}
}

func TestOverviewThisWeekAndCache(t *testing.T) {
	tasks := fixture()
	cache := &mapCache{entries: map[string]Overview{}}
	uc := New(tasks, memUsers{}, memCategories{}, cache, time.Minute, func() time.Time { return fixedNow }, nil)

	filter := domain.DateFilter{Kind: domain.FilterThisWeek}
	got, err := uc.Overview(context.Background(), filter, "")
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	want := stats.Stats{
		Total:          3,
		Overdue:        1,
		DueSoon:        1,
		Pending:        1,
		InProgress:     1,
		Completed:      1,
		InTime:         1,
		CompletionRate: 33,
		OnTimeRate:     100,
	}
	if got.Stats != want {
		t.Fatalf("stats = %+v, want %+v", got.Stats, want)
	}
	if got.Severity != stats.SeverityCritical {
		t.Errorf("severity = %s, want critical", got.Severity)
	}

	if _, err := uc.Overview(context.Background(), filter, ""); err != nil {
		t.Fatalf("Overview (cached): %v", err)
	}
	if tasks.calls != 1 {
		t.Errorf("second call should be served from cache, store calls = %d", tasks.calls)
	}
}

func TestOverviewEmptyIsNeutral(t *testing.T) {
	uc := New(&memTasks{}, memUsers{}, memCategories{}, nil, 0, func() time.Time { return fixedNow }, nil)

	got, err := uc.Overview(context.Background(), domain.AllTime(), "nobody")
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if !got.Stats.IsEmpty() || got.Severity != stats.SeverityNeutral {
		t.Fatalf("got %+v %s, want empty neutral", got.Stats, got.Severity)
	}
}

func TestByUserAndByCategory(t *testing.T) {
	users := memUsers{users: []domain.User{{ID: "u1", Name: "Ann"}, {ID: "u2", Name: "Bo"}, {ID: "u3", Name: "Cy"}}}
	categories := memCategories{{ID: "c1", Name: "Ops"}, {ID: "c2", Name: "Sales"}}
	uc := New(fixture(), users, categories, nil, 0, func() time.Time { return fixedNow }, nil)

	rows, err := uc.ByUser(context.Background(), domain.AllTime())
	if err != nil {
		t.Fatalf("ByUser: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0].Name != "Ann" || rows[0].Stats.Total != 2 || rows[0].Stats.CompletionRate != 50 {
		t.Errorf("u1 row = %+v", rows[0])
	}
	if rows[2].Severity != stats.SeverityNeutral || !rows[2].Stats.IsEmpty() {
		t.Errorf("user without tasks should be neutral, got %+v", rows[2])
	}

	byCat, err := uc.ByCategory(context.Background(), domain.AllTime())
	if err != nil {
		t.Fatalf("ByCategory: %v", err)
	}
	if byCat[1].Name != "Sales" || byCat[1].Stats.Total != 2 || byCat[1].Stats.Completed != 1 {
		t.Errorf("c2 row = %+v", byCat[1])
	}
}
