package task

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/workdesk/domain"
	"github.com/fastygo/workdesk/domain/stats"
	"github.com/fastygo/workdesk/domain/transition"
	"github.com/fastygo/workdesk/repository"
	"github.com/fastygo/workdesk/usecase"
)

type UseCase struct {
	tasks  repository.TaskRepository
	buffer usecase.OperationBuffer
	cache  repository.StatsCache
	clock  usecase.Clock
	logger *zap.Logger
}

func New(
	tasks repository.TaskRepository,
	buffer usecase.OperationBuffer,
	cache repository.StatsCache,
	clock usecase.Clock,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = usecase.SystemClock(nil)
	}
	return &UseCase{
		tasks:  tasks,
		buffer: buffer,
		cache:  cache,
		clock:  clock,
		logger: logger,
	}
}

// ListTasks returns one page of the tasks matching q. When q only uses dimensions the store
// can filter on, the page is cut by the store; otherwise every candidate row is loaded,
// narrowed in memory and then paged.
func (uc *UseCase) ListTasks(ctx context.Context, q stats.Query, page usecase.Page) ([]domain.Task, error) {
	now := uc.clock()
	filter := repository.TaskFilter{
		AssignedUserID: q.AssignedUserID,
		CreatorUserID:  q.CreatorUserID,
		CategoryID:     q.CategoryID,
	}
	if len(q.Statuses) == 1 {
		filter.Status = string(q.Statuses[0])
	}
	if window := q.Window.Resolve(now); !window.Unbounded {
		filter.DueFrom = &window.Start
		filter.DueTo = &window.End
	}

	storePaged := len(q.Statuses) <= 1 && len(q.Priorities) == 0 && !q.OverdueOnly
	if storePaged {
		filter.Limit = page.Limit
		filter.Offset = page.Offset
	}

	tasks, err := uc.tasks.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	tasks = stats.Filter(tasks, q, now)
	if storePaged {
		return tasks, nil
	}
	return usecase.Paginate(tasks, page), nil
}

// GetTask loads the task if actor may see it.
func (uc *UseCase) GetTask(ctx context.Context, id string, actor domain.Actor) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !task.AccessibleBy(actor) {
		return nil, domain.ErrForbidden
	}
	return task, nil
}

// CreateTask stores a new pending task owned by creatorID. Status only changes through TransitionTask.
func (uc *UseCase) CreateTask(ctx context.Context, task *domain.Task, creatorID string) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	task.Status = domain.TaskStatusPending
	task.CompletionDate = nil
	task.Comments = nil
	task.CreatorUserID = creatorID
	if task.AssignedUserID == "" {
		task.AssignedUserID = creatorID
	}
	if task.Priority == "" {
		task.Priority = domain.PriorityMedium
	}
	if task.RepeatType == "" {
		task.RepeatType = domain.RepeatNone
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		if usecase.Bufferable(err) && uc.shouldBuffer(ctx, usecase.OperationCreate, task) {
			return task, nil
		}
		return nil, err
	}
	uc.invalidate(ctx)
	return created, nil
}

// UpdateTask loads the task, lets edit change it and saves the editable fields. Status,
// completion date and creator are kept from the stored row.
func (uc *UseCase) UpdateTask(ctx context.Context, id string, actor domain.Actor, edit func(*domain.Task) error) (*domain.Task, error) {
	current, err := uc.GetTask(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	task := *current
	if err := edit(&task); err != nil {
		return nil, err
	}
	task.ID = current.ID
	task.Status = current.Status
	task.CompletionDate = current.CompletionDate
	task.CreatorUserID = current.CreatorUserID
	task.Comments = current.Comments
	task.CreatedAt = current.CreatedAt
	if err := task.Validate(); err != nil {
		return nil, err
	}

	if err := uc.tasks.Update(ctx, &task); err != nil {
		if usecase.Bufferable(err) && uc.shouldBuffer(ctx, usecase.OperationUpdate, &task) {
			return &task, nil
		}
		return nil, err
	}
	uc.invalidate(ctx)
	return &task, nil
}

// DeleteTask removes the task. When the store cannot be read, only a manager's delete is
// buffered, since ownership cannot be checked.
func (uc *UseCase) DeleteTask(ctx context.Context, id string, actor domain.Actor) error {
	if _, err := uc.GetTask(ctx, id, actor); err != nil {
		if !usecase.Bufferable(err) || !actor.IsManager() {
			return err
		}
	}

	if err := uc.tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) || !usecase.Bufferable(err) {
			return err
		}
		task := &domain.Task{ID: id}
		if uc.shouldBuffer(ctx, usecase.OperationDelete, task) {
			return nil
		}
		return err
	}
	uc.invalidate(ctx)
	return nil
}

// TransitionTask applies action to the task and records comment as the audit entry of the change.
// The store only accepts the change while the task still has the status it was read with, so of
// two concurrent transitions from the same status one fails with ErrTransitionConflict.
func (uc *UseCase) TransitionTask(ctx context.Context, id string, action domain.TaskAction, comment string, actor domain.Actor) (*domain.Task, error) {
	if !action.Valid() {
		return nil, domain.NewError(domain.ErrCodeInvalid, "unknown task action "+string(action))
	}
	current, err := uc.GetTask(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	updated, err := transition.ApplyTask(*current, action, comment, actor.UserID, uc.clock())
	if err != nil {
		return nil, err
	}
	entry := &updated.Comments[len(updated.Comments)-1]

	if err := uc.tasks.SaveTransition(ctx, &updated, entry); err != nil {
		if usecase.Bufferable(err) && uc.shouldBuffer(ctx, usecase.OperationTransition, &updated) {
			return &updated, nil
		}
		if errors.Is(err, domain.ErrTransitionConflict) {
			uc.logger.Info("task transition lost to a concurrent change",
				zap.String("task_id", id),
				zap.String("from", string(current.Status)),
				zap.String("action", string(action)))
		}
		return nil, err
	}

	uc.logger.Info("task transitioned",
		zap.String("task_id", updated.ID),
		zap.String("from", string(current.Status)),
		zap.String("to", string(updated.Status)),
		zap.String("actor_id", actor.UserID))
	uc.invalidate(ctx)
	return &updated, nil
}

// AllowedActions returns the task together with the actions its current status permits.
func (uc *UseCase) AllowedActions(ctx context.Context, id string, actor domain.Actor) (*domain.Task, []domain.TaskAction, error) {
	task, err := uc.GetTask(ctx, id, actor)
	if err != nil {
		return nil, nil, err
	}
	return task, transition.Allowed(task.Status), nil
}

func (uc *UseCase) invalidate(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Invalidate(ctx); err != nil {
		uc.logger.Warn("stats cache invalidation failed", zap.Error(err))
	}
}

func (uc *UseCase) shouldBuffer(ctx context.Context, operation string, task *domain.Task) bool {
	if uc.buffer == nil {
		return false
	}
	if err := uc.buffer.BufferTask(ctx, operation, task); err != nil {
		uc.logger.Error("failed to buffer task operation", zap.String("operation", operation), zap.Error(err))
		return false
	}
	uc.logger.Warn("task operation buffered", zap.String("operation", operation))
	return true
}
