package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/workdesk/domain"
	"github.com/fastygo/workdesk/repository"
	"github.com/fastygo/workdesk/usecase"
)

type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	clock    usecase.Clock
	logger   *zap.Logger
}

func New(users repository.UserRepository, sessions repository.SessionRepository, clock usecase.Clock, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = usecase.SystemClock(nil)
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		clock:    clock,
		logger:   logger,
	}
}

// CreateSession opens a session for an active user. The user's role is copied into it.
func (uc *UseCase) CreateSession(ctx context.Context, userID string, ttl time.Duration) (*domain.Session, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive() {
		return nil, domain.ErrUnauthorized
	}

	now := uc.clock()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	uc.logger.Info("session created", zap.String("user_id", user.ID), zap.String("role", user.Role))
	return session, nil
}

func (uc *UseCase) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(uc.clock()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// RefreshSession pushes the expiry of a live session to ttl from now.
func (uc *UseCase) RefreshSession(ctx context.Context, sessionID string, ttl time.Duration) (*domain.Session, error) {
	session, err := uc.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	expiresAt := uc.clock().Add(ttl)
	if err := uc.sessions.Extend(ctx, sessionID, expiresAt); err != nil {
		return nil, err
	}
	session.ExpiresAt = expiresAt
	return session, nil
}

// RevokeSession ends a session. Only its owner may revoke it.
func (uc *UseCase) RevokeSession(ctx context.Context, sessionID, userID string) error {
	session, err := uc.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.UserID != userID {
		return domain.ErrForbidden
	}
	if err := uc.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	uc.logger.Info("session revoked", zap.String("user_id", userID))
	return nil
}
