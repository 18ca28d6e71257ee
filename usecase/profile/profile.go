package profile

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/fastygo/workdesk/domain"
	"github.com/fastygo/workdesk/repository"
	"github.com/fastygo/workdesk/usecase"
)

type UseCase struct {
	users  repository.UserRepository
	buffer usecase.OperationBuffer
	logger *zap.Logger
}

func New(users repository.UserRepository, buffer usecase.OperationBuffer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		buffer: buffer,
		logger: logger,
	}
}

func (uc *UseCase) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return uc.users.GetByID(ctx, userID)
}

// UpdateProfile saves the editable profile fields. Role and status are kept from the stored user.
func (uc *UseCase) UpdateProfile(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil || user.ID == "" {
		return nil, domain.ErrInvalidPayload
	}
	if current, err := uc.users.GetByID(ctx, user.ID); err == nil {
		user.Role = current.Role
		user.Status = current.Status
		user.CreatedAt = current.CreatedAt
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	if err := uc.users.Upsert(ctx, user); err != nil {
		if uc.buffer != nil && usecase.Bufferable(err) {
			if bufErr := uc.buffer.BufferProfile(ctx, usecase.OperationUpdate, user); bufErr != nil {
				uc.logger.Error("failed to buffer profile update", zap.Error(bufErr))
				return nil, err
			}
			uc.logger.Warn("profile update buffered due to repository error", zap.Error(err))
			return user, nil
		}
		return nil, err
	}
	return user, nil
}
