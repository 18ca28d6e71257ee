package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fastygo/workdesk/domain"
)

type LeaveFilter struct {
	UserID      string
	LeaveTypeID string
	Limit       int
	Offset      int
}

type LeaveRepository interface {
	GetByID(ctx context.Context, id string) (*domain.LeaveRequest, error)
	List(ctx context.Context, filter LeaveFilter) ([]domain.LeaveRequest, error)
	Create(ctx context.Context, leave *domain.LeaveRequest) (*domain.LeaveRequest, error)
	// UpdateDays stores per-day statuses and remarks.
	UpdateDays(ctx context.Context, leave *domain.LeaveRequest) error
	Delete(ctx context.Context, id string) error
}

type LeaveTypeRepository interface {
	GetByID(ctx context.Context, id string) (*domain.LeaveType, error)
	List(ctx context.Context) ([]domain.LeaveType, error)
}

type BalanceRepository interface {
	Get(ctx context.Context, userID, leaveTypeID string) (*domain.LeaveBalance, error)
	ListByUser(ctx context.Context, userID string) ([]domain.LeaveBalance, error)
	// Adjust subtracts delta from the current balance. A negative delta restores days.
	Adjust(ctx context.Context, userID, leaveTypeID string, delta decimal.Decimal) (*domain.LeaveBalance, error)
}
