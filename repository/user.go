package repository

import (
	"context"

	"github.com/fastygo/workdesk/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Upsert(ctx context.Context, user *domain.User) error
}
