package services

import (
	"context"
	"encoding/json"

	"github.com/fastygo/workdesk/domain"
	"github.com/fastygo/workdesk/internal/infrastructure/buffer"
	"github.com/fastygo/workdesk/usecase"
)

// BufferBridge adapts the processor to the use case port, choosing entity and replay priority.
type BufferBridge struct {
	processor *BufferProcessor
}

func NewBufferBridge(processor *BufferProcessor) *BufferBridge {
	return &BufferBridge{processor: processor}
}

func (b *BufferBridge) BufferProfile(ctx context.Context, operation string, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	return b.enqueue(ctx, buffer.EntityProfile, user.ID, operation, user.ID, buffer.PriorityProfile, user)
}

func (b *BufferBridge) BufferTask(ctx context.Context, operation string, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	priority := buffer.PriorityTask
	if operation == usecase.OperationTransition {
		priority = buffer.PriorityTransition
	}
	return b.enqueue(ctx, buffer.EntityTask, task.ID, operation, task.AssignedUserID, priority, task)
}

func (b *BufferBridge) BufferLeave(ctx context.Context, operation string, leave *domain.LeaveRequest) error {
	if leave == nil {
		return domain.ErrInvalidPayload
	}
	return b.enqueue(ctx, buffer.EntityLeave, leave.ID, operation, leave.UserID, buffer.PriorityLeave, leave)
}

func (b *BufferBridge) enqueue(ctx context.Context, entity, entityID, operation, userID string, priority int, value interface{}) error {
	if b.processor == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	item := buffer.Item{
		UserID:    userID,
		Entity:    entity,
		EntityID:  entityID,
		Operation: operation,
		Data:      payload,
		Priority:  priority,
	}
	return b.processor.BufferOperation(ctx, item)
}

var _ usecase.OperationBuffer = (*BufferBridge)(nil)
