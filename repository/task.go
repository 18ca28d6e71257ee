package repository

import (
	"context"
	"time"

	"github.com/fastygo/workdesk/domain"
)

// TaskFilter narrows what the store loads. Finer filtering happens in memory via domain/stats.
type TaskFilter struct {
	AssignedUserID string
	CreatorUserID  string
	CategoryID     string
	Status         string
	DueFrom        *time.Time
	DueTo          *time.Time
	Limit          int
	Offset         int
}

type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
	// SaveTransition persists the new status fields and appends the audit comment atomically.
	// The update only applies while the stored status equals comment.From; otherwise it returns
	// domain.ErrTransitionConflict.
	SaveTransition(ctx context.Context, task *domain.Task, comment *domain.TaskComment) error
}

type CategoryRepository interface {
	List(ctx context.Context) ([]domain.Category, error)
}
