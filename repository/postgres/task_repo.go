package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/workdesk/domain"
	"github.com/fastygo/workdesk/repository"
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

const taskColumns = `id, title, description, status, priority, repeat_type, due_date, completion_date,
	assigned_user_id, creator_user_id, category_id, created_at, updated_at`

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	task, err := scanTask(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	comments, err := r.comments(ctx, id)
	if err != nil {
		return nil, err
	}
	task.Comments = comments
	return task, nil
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	query := `SELECT ` + taskColumns + `
	FROM tasks
	WHERE ($1 = '' OR assigned_user_id = $1)
	  AND ($2 = '' OR creator_user_id = $2)
	  AND ($3 = '' OR category_id = $3)
	  AND ($4 = '' OR status = $4)
	  AND ($5::timestamptz IS NULL OR due_date >= $5)
	  AND ($6::timestamptz IS NULL OR due_date < $6)
	ORDER BY due_date ASC, id ASC
	LIMIT $7 OFFSET $8
	`
	rows, err := r.pool.Query(ctx, query,
		filter.AssignedUserID,
		filter.CreatorUserID,
		filter.CategoryID,
		filter.Status,
		filter.DueFrom,
		filter.DueTo,
		limitArg(filter.Limit),
		filter.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, title, description, status, priority, repeat_type, due_date, completion_date,
		assigned_user_id, creator_user_id, category_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	RETURNING created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		string(task.Status),
		string(task.Priority),
		string(task.RepeatType),
		task.DueDate,
		task.CompletionDate,
		task.AssignedUserID,
		task.CreatorUserID,
		task.CategoryID,
	).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}

	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	if err := task.Validate(); err != nil {
		return err
	}

	const query = `
	UPDATE tasks
	SET title = $2,
		description = $3,
		priority = $4,
		repeat_type = $5,
		due_date = $6,
		assigned_user_id = $7,
		category_id = $8,
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		string(task.Priority),
		string(task.RepeatType),
		task.DueDate,
		task.AssignedUserID,
		task.CategoryID,
	).Scan(&task.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTaskNotFound
		}
		return err
	}

	return nil
}

func (r *taskRepository) SaveTransition(ctx context.Context, task *domain.Task, comment *domain.TaskComment) error {
	if task == nil || comment == nil {
		return domain.ErrInvalidPayload
	}
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}

	if comment.From == "" {
		return domain.NewError(domain.ErrCodeInvalid, "transition without prior status")
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
		UPDATE tasks
		SET status = $2, completion_date = $3, updated_at = $4
		WHERE id = $1 AND status = $5
		`, task.ID, string(task.Status), task.CompletionDate, task.UpdatedAt, string(comment.From))
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`, task.ID).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return domain.ErrTaskNotFound
			}
			return domain.ErrTransitionConflict
		}

		_, err = tx.Exec(ctx, `
		INSERT INTO task_comments (id, task_id, user_id, body, from_status, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
		`, comment.ID, task.ID, comment.UserID, comment.Body, string(comment.From), string(comment.Status), comment.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert task comment: %w", err)
		}
		return nil
	})
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tasks WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) comments(ctx context.Context, taskID string) ([]domain.TaskComment, error) {
	const query = `
	SELECT id, task_id, user_id, body, from_status, status, created_at
	FROM task_comments
	WHERE task_id = $1
	ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []domain.TaskComment
	for rows.Next() {
		var (
			c            domain.TaskComment
			from, status string
		)
		if err := rows.Scan(&c.ID, &c.TaskID, &c.UserID, &c.Body, &from, &status, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.From = domain.TaskStatus(from)
		c.Status = domain.TaskStatus(status)
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	var (
		status, priority, repeat string
		completion               *time.Time
	)

	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&status,
		&priority,
		&repeat,
		&task.DueDate,
		&completion,
		&task.AssignedUserID,
		&task.CreatorUserID,
		&task.CategoryID,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	task.Priority = domain.Priority(priority)
	task.RepeatType = domain.RepeatType(repeat)
	task.CompletionDate = completion

	if err := task.Validate(); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "malformed task record "+task.ID, err)
	}
	return &task, nil
}
