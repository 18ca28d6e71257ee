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

type leaveRepository struct {
	pool *pgxpool.Pool
}

// NewLeaveRepository stores leave requests and their days. The aggregate status is never
// written; it is derived from leave_days on read.
func NewLeaveRepository(pool *pgxpool.Pool) repository.LeaveRepository {
	return &leaveRepository{pool: pool}
}

const leaveColumns = `id, user_id, leave_type_id, from_date, to_date, reason, remarks, created_at, updated_at`

func (r *leaveRepository) GetByID(ctx context.Context, id string) (*domain.LeaveRequest, error) {
	leave, err := scanLeave(r.pool.QueryRow(ctx, `SELECT `+leaveColumns+` FROM leave_requests WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	days, err := r.days(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	leave.Days = days[id]
	return leave, nil
}

func (r *leaveRepository) List(ctx context.Context, filter repository.LeaveFilter) ([]domain.LeaveRequest, error) {
	query := `SELECT ` + leaveColumns + `
	FROM leave_requests
	WHERE ($1 = '' OR user_id = $1)
	  AND ($2 = '' OR leave_type_id = $2)
	ORDER BY from_date DESC, id ASC
	LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, filter.UserID, filter.LeaveTypeID, limitArg(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		leaves []domain.LeaveRequest
		ids    []string
	)
	for rows.Next() {
		leave, err := scanLeave(rows)
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, *leave)
		ids = append(ids, leave.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return leaves, nil
	}

	days, err := r.days(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range leaves {
		leaves[i].Days = days[leaves[i].ID]
	}
	return leaves, nil
}

func (r *leaveRepository) Create(ctx context.Context, leave *domain.LeaveRequest) (*domain.LeaveRequest, error) {
	if leave == nil || len(leave.Days) == 0 {
		return nil, domain.ErrInvalidPayload
	}
	if leave.ID == "" {
		leave.ID = uuid.NewString()
	}

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
		INSERT INTO leave_requests (id, user_id, leave_type_id, from_date, to_date, reason, remarks)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
		`,
			leave.ID,
			leave.UserID,
			leave.LeaveTypeID,
			leave.FromDate,
			leave.ToDate,
			leave.Reason,
			leave.Remarks,
		).Scan(&leave.CreatedAt, &leave.UpdatedAt); err != nil {
			return err
		}

		rows := make([][]interface{}, len(leave.Days))
		for i, d := range leave.Days {
			rows[i] = []interface{}{leave.ID, d.Date, string(d.Unit), string(d.Status)}
		}
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"leave_days"},
			[]string{"leave_id", "day", "unit", "status"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("insert leave days: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return leave, nil
}

func (r *leaveRepository) UpdateDays(ctx context.Context, leave *domain.LeaveRequest) error {
	if leave == nil {
		return domain.ErrInvalidPayload
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
		UPDATE leave_requests SET remarks = $2, updated_at = NOW() WHERE id = $1
		`, leave.ID, leave.Remarks)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrLeaveNotFound
		}

		batch := &pgx.Batch{}
		for _, d := range leave.Days {
			batch.Queue(`UPDATE leave_days SET status = $3, unit = $4 WHERE leave_id = $1 AND day = $2`,
				leave.ID, d.Date, string(d.Status), string(d.Unit))
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

func (r *leaveRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leave_requests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLeaveNotFound
	}
	return nil
}

func (r *leaveRepository) days(ctx context.Context, ids []string) (map[string][]domain.LeaveDay, error) {
	rows, err := r.pool.Query(ctx, `
	SELECT leave_id, day, unit, status
	FROM leave_days
	WHERE leave_id = ANY($1)
	ORDER BY leave_id, day ASC
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]domain.LeaveDay, len(ids))
	for rows.Next() {
		var (
			leaveID      string
			day          time.Time
			unit, status string
		)
		if err := rows.Scan(&leaveID, &day, &unit, &status); err != nil {
			return nil, err
		}
		out[leaveID] = append(out[leaveID], domain.LeaveDay{
			Date:   day,
			Unit:   domain.DayUnit(unit),
			Status: domain.LeaveStatus(status),
		})
	}
	return out, rows.Err()
}

func scanLeave(row pgx.Row) (*domain.LeaveRequest, error) {
	var leave domain.LeaveRequest
	if err := row.Scan(
		&leave.ID,
		&leave.UserID,
		&leave.LeaveTypeID,
		&leave.FromDate,
		&leave.ToDate,
		&leave.Reason,
		&leave.Remarks,
		&leave.CreatedAt,
		&leave.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLeaveNotFound
		}
		return nil, err
	}
	return &leave, nil
}
