package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/workdesk/domain"
	"github.com/fastygo/workdesk/internal/infrastructure/buffer"
	"github.com/fastygo/workdesk/repository"
	"github.com/fastygo/workdesk/usecase"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// ProcessorConfig controls how frequently the buffer is drained.
type ProcessorConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	// Retention drops items that could not be replayed for this long.
	Retention time.Duration
}

// Repositories are the stores buffered writes are replayed into.
type Repositories struct {
	Users  repository.UserRepository
	Tasks  repository.TaskRepository
	Leaves repository.LeaveRepository
}

// BufferProcessor synchronizes buffered operations with primary datastores.
type BufferProcessor struct {
	store   *buffer.Store
	monitor ConnectionHealth
	repos   Repositories
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     ProcessorConfig
}

func NewBufferProcessor(
	store *buffer.Store,
	monitor ConnectionHealth,
	repos Repositories,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *BufferProcessor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bp := &BufferProcessor{
		store:   store,
		monitor: monitor,
		repos:   repos,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = bp.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := bp.Drain(ctx); err != nil {
			bp.logger.Error("buffer drain failed", zap.Error(err))
		}
	})
	_, _ = bp.cron.AddFunc("@hourly", bp.expire)

	return bp
}

// Start launches the cron scheduler.
func (bp *BufferProcessor) Start() {
	if bp == nil || bp.cron == nil {
		return
	}
	bp.cron.Start()
	bp.logger.Info("buffer processor started")
}

// Stop gracefully stops the scheduler.
func (bp *BufferProcessor) Stop(ctx context.Context) {
	if bp == nil || bp.cron == nil {
		return
	}
	stopCtx := bp.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	bp.logger.Info("buffer processor stopped")
}

// Drain processes buffered items synchronously.
func (bp *BufferProcessor) Drain(ctx context.Context) error {
	if bp == nil || bp.store == nil {
		return nil
	}
	if bp.monitor != nil && !bp.monitor.IsOnline() {
		bp.logger.Debug("skipping buffer drain (offline)")
		return nil
	}

	items, err := bp.store.GetBatch(bp.cfg.BatchSize)
	if err != nil {
		return err
	}

	// A failed write holds back later writes to the same record until the next pass.
	held := make(map[string]struct{})
	for _, item := range items {
		subject := item.Subject()
		if _, ok := held[subject]; ok && subject != "" {
			continue
		}

		err := bp.processItem(ctx, item)
		switch {
		case err == nil:
			if err := bp.store.Remove(item); err != nil {
				bp.logger.Warn("failed to purge processed buffer item", zap.Error(err))
			}
			continue
		case !usecase.Bufferable(err):
			bp.logger.Warn("dropping buffer item rejected by store",
				zap.String("item_id", item.ID),
				zap.String("subject", subject),
				zap.String("operation", item.Operation),
				zap.Error(err))
			_ = bp.store.Remove(item)
			continue
		}

		bp.logger.Error("failed to process buffer item",
			zap.String("item_id", item.ID),
			zap.String("subject", subject),
			zap.Error(err))

		item.Retries++
		item.LastError = err.Error()
		if item.Retries >= bp.cfg.MaxRetries {
			bp.logger.Warn("dropping buffer item (max retries reached)",
				zap.String("item_id", item.ID),
				zap.String("subject", subject))
			_ = bp.store.Remove(item)
			continue
		}

		held[subject] = struct{}{}
		if err := bp.store.Retry(item); err != nil {
			bp.logger.Error("failed to record buffer retry", zap.Error(err))
		}
	}
	return nil
}

// BufferOperation attempts to run the operation immediately and falls back to persisting it.
func (bp *BufferProcessor) BufferOperation(ctx context.Context, item buffer.Item) error {
	if bp == nil || bp.store == nil {
		return fmt.Errorf("buffer processor not configured")
	}

	if bp.monitor == nil || bp.monitor.IsOnline() {
		err := bp.processItem(ctx, item)
		if err == nil {
			return nil
		}
		if !usecase.Bufferable(err) {
			return err
		}
		bp.logger.Warn("immediate processing failed, buffering", zap.Error(err))
	}
	return bp.store.Enqueue(item)
}

// Size returns the number of buffered items.
func (bp *BufferProcessor) Size() int {
	if bp == nil || bp.store == nil {
		return 0
	}
	size, err := bp.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (bp *BufferProcessor) expire() {
	removed, err := bp.store.Cleanup(time.Now().Add(-bp.cfg.Retention))
	if err != nil {
		bp.logger.Error("buffer cleanup failed", zap.Error(err))
		return
	}
	if removed > 0 {
		bp.logger.Warn("expired buffered writes", zap.Int("count", removed))
	}
}

func (bp *BufferProcessor) processItem(ctx context.Context, item buffer.Item) error {
	if ctx == nil {
		ctx = context.Background()
	}

	switch item.Entity {
	case buffer.EntityProfile:
		var user domain.User
		if err := json.Unmarshal(item.Data, &user); err != nil {
			return err
		}
		return bp.repos.Users.Upsert(ctx, &user)

	case buffer.EntityTask:
		var task domain.Task
		if err := json.Unmarshal(item.Data, &task); err != nil {
			return err
		}
		return bp.replayTask(ctx, item.Operation, &task)

	case buffer.EntityLeave:
		var leave domain.LeaveRequest
		if err := json.Unmarshal(item.Data, &leave); err != nil {
			return err
		}
		if item.Operation != usecase.OperationCreate {
			return fmt.Errorf("unsupported leave operation %s", item.Operation)
		}
		_, err := bp.repos.Leaves.Create(ctx, &leave)
		return err

	default:
		return fmt.Errorf("unsupported entity %s", item.Entity)
	}
}

func (bp *BufferProcessor) replayTask(ctx context.Context, operation string, task *domain.Task) error {
	switch operation {
	case usecase.OperationCreate:
		_, err := bp.repos.Tasks.Create(ctx, task)
		return err
	case usecase.OperationUpdate:
		return bp.repos.Tasks.Update(ctx, task)
	case usecase.OperationDelete:
		err := bp.repos.Tasks.Delete(ctx, task.ID)
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil
		}
		return err
	case usecase.OperationTransition:
		if len(task.Comments) == 0 {
			return domain.NewError(domain.ErrCodeInvalid, "buffered transition without comment")
		}
		comment := task.Comments[len(task.Comments)-1]
		return bp.repos.Tasks.SaveTransition(ctx, task, &comment)
	default:
		return fmt.Errorf("unsupported operation %s", operation)
	}
}
