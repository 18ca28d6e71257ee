package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fastygo/workdesk/domain"
)

var fixedNow = time.Date(2024, time.March, 13, 10, 0, 0, 0, time.UTC)

type memUsers map[string]domain.User

func (m memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := m[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (m memUsers) List(context.Context) ([]domain.User, error) { return nil, nil }
func (m memUsers) Upsert(context.Context, *domain.User) error   { return nil }

type memSessions struct {
	rows map[string]domain.Session
}

func (m *memSessions) Get(_ context.Context, id string) (*domain.Session, error) {
	s, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &s, nil
}

func (m *memSessions) Save(_ context.Context, s *domain.Session) error {
	m.rows[s.ID] = *s
	return nil
}

func (m *memSessions) Delete(_ context.Context, id string) error {
	delete(m.rows, id)
	return nil
}

func (m *memSessions) Extend(_ context.Context, id string, expiresAt time.Time) error {
	s, ok := m.rows[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.ExpiresAt = expiresAt
	m.rows[id] = s
	return nil
}

func setup() (*UseCase, *memSessions, *time.Time) {
	users := memUsers{
		"mgr":  {ID: "mgr", Role: domain.RoleManager, Status: "active"},
		"gone": {ID: "gone", Role: domain.RoleEmployee, Status: "disabled"},
	}
	sessions := &memSessions{rows: map[string]domain.Session{}}
	now := fixedNow
	uc := New(users, sessions, func() time.Time { return now }, nil)
	return uc, sessions, &now
}

func TestCreateSessionCopiesRole(t *testing.T) {
	uc, sessions, _ := setup()

	s, err := uc.CreateSession(context.Background(), "mgr", time.Hour)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if s.Role != domain.RoleManager || s.UserID != "mgr" {
		t.Fatalf("unexpected session %+v", s)
	}
	if !s.ExpiresAt.Equal(fixedNow.Add(time.Hour)) {
		t.Fatalf("expires at %s", s.ExpiresAt)
	}
	if _, ok := sessions.rows[s.ID]; !ok {
		t.Fatal("session was not stored")
	}
}

func TestCreateSessionRejects(t *testing.T) {
	uc, _, _ := setup()

	if _, err := uc.CreateSession(context.Background(), "gone", time.Hour); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("inactive user err = %v, want ErrUnauthorized", err)
	}
	if _, err := uc.CreateSession(context.Background(), "nobody", time.Hour); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("unknown user err = %v, want ErrUserNotFound", err)
	}
}

func TestGetSessionDropsExpired(t *testing.T) {
	uc, sessions, now := setup()
	s, err := uc.CreateSession(context.Background(), "mgr", time.Minute)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if _, err := uc.GetSession(context.Background(), s.ID); err != nil {
		t.Fatalf("fresh session: %v", err)
	}

	*now = now.Add(2 * time.Minute)
	if _, err := uc.GetSession(context.Background(), s.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expired session err = %v", err)
	}
	if len(sessions.rows) != 0 {
		t.Fatal("expired session should be deleted")
	}
}

func TestRefreshSession(t *testing.T) {
	uc, _, _ := setup()
	s, _ := uc.CreateSession(context.Background(), "mgr", time.Minute)

	refreshed, err := uc.RefreshSession(context.Background(), s.ID, 2*time.Hour)
	if err != nil {
		t.Fatalf("RefreshSession: %v", err)
	}
	if !refreshed.ExpiresAt.Equal(fixedNow.Add(2 * time.Hour)) {
		t.Fatalf("expires at %s", refreshed.ExpiresAt)
	}
	if _, err := uc.GetSession(context.Background(), s.ID); err != nil {
		t.Fatalf("refreshed session should stay valid: %v", err)
	}
	if _, err := uc.RefreshSession(context.Background(), "missing", time.Hour); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("missing session err = %v", err)
	}
}

func TestRevokeSessionOwnerOnly(t *testing.T) {
	uc, sessions, _ := setup()
	s, _ := uc.CreateSession(context.Background(), "mgr", time.Hour)

	if err := uc.RevokeSession(context.Background(), s.ID, "someone"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("foreign revoke err = %v, want ErrForbidden", err)
	}
	if err := uc.RevokeSession(context.Background(), s.ID, "mgr"); err != nil {
		t.Fatalf("RevokeSession: %v", err)
	}
	if len(sessions.rows) != 0 {
		t.Fatal("session should be gone")
	}
}
