package repository

import (
	"context"
	"time"

	"github.com/fastygo/workdesk/domain"
)

// SessionRepository keeps login sessions in a TTL store.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
	// Extend sets a new expiry on an existing session.
	Extend(ctx context.Context, id string, expiresAt time.Time) error
}
