package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/workdesk/domain"
	"github.com/fastygo/workdesk/repository"
)

const sessionPrefix = "session:"

type sessionRepository struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewSessionRepository creates a Redis-backed session repository.
func NewSessionRepository(client *redislib.Client, ttl time.Duration) repository.SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &sessionRepository{
		client: client,
		prefix: sessionPrefix,
		ttl:    ttl,
	}
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	result, err := r.client.Get(ctx, r.key(id)).Result()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(result), &session); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &session, nil
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidPayload
	}

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	if session.ExpiresAt.Before(session.CreatedAt) {
		session.ExpiresAt = session.CreatedAt.Add(r.ttl)
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		ttl = r.ttl
	}

	return r.client.Set(ctx, r.key(session.ID), payload, ttl).Err()
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.key(id)).Err()
}

// Extend moves the expiry of a live session. The stored copy is rewritten in a WATCH
// transaction so its ExpiresAt and the key TTL stay in agreement.
func (r *sessionRepository) Extend(ctx context.Context, id string, expiresAt time.Time) error {
	key := r.key(id)
	return r.client.Watch(ctx, func(tx *redislib.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redislib.Nil) {
			return domain.ErrSessionNotFound
		}
		if err != nil {
			return err
		}

		var session domain.Session
		if err := json.Unmarshal(raw, &session); err != nil {
			return fmt.Errorf("decode session %s: %w", id, err)
		}
		session.ExpiresAt = expiresAt
		payload, err := json.Marshal(&session)
		if err != nil {
			return err
		}

		ttl := time.Until(expiresAt)
		if ttl <= 0 {
			ttl = r.ttl
		}
		_, err = tx.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
			pipe.Set(ctx, key, payload, ttl)
			return nil
		})
		return err
	}, key)
}

func (r *sessionRepository) key(id string) string {
	return fmt.Sprintf("%s%s", r.prefix, id)
}
