package usecase

import (
	"context"
	"time"

	"github.com/fastygo/workdesk/domain"
)

// Buffered operation names shared by use cases and the buffer processor.
const (
	OperationCreate     = "create"
	OperationUpdate     = "update"
	OperationDelete     = "delete"
	OperationTransition = "transition"
)

// Clock returns the current instant in the application location.
type Clock func() time.Time

// SystemClock reads the wall clock in loc.
func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return func() time.Time { return time.Now().In(loc) }
}

// OperationBuffer abstracts the buffer processor so use cases stay storage-agnostic.
type OperationBuffer interface {
	BufferProfile(ctx context.Context, operation string, user *domain.User) error
	BufferTask(ctx context.Context, operation string, task *domain.Task) error
	BufferLeave(ctx context.Context, operation string, leave *domain.LeaveRequest) error
}

// Bufferable reports whether err is an infrastructure failure worth retrying later.
// Domain errors are final and are returned to the caller instead.
func Bufferable(err error) bool {
	if err == nil {
		return false
	}
	for _, code := range []domain.ErrorCode{
		domain.ErrCodeNotFound,
		domain.ErrCodeInvalid,
		domain.ErrCodeConflict,
		domain.ErrCodeForbidden,
		domain.ErrCodeUnauthorized,
	} {
		if domain.IsDomainError(err, code) {
			return false
		}
	}
	return true
}
