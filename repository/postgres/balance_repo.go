package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fastygo/workdesk/domain"
	"github.com/fastygo/workdesk/repository"
)

type balanceRepository struct {
	pool *pgxpool.Pool
}

func NewBalanceRepository(pool *pgxpool.Pool) repository.BalanceRepository {
	return &balanceRepository{pool: pool}
}

const balanceColumns = `user_id, leave_type_id, allotted_leaves::text, current_balance::text, updated_at`

func (r *balanceRepository) Get(ctx context.Context, userID, leaveTypeID string) (*domain.LeaveBalance, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+balanceColumns+`
	FROM leave_balances WHERE user_id = $1 AND leave_type_id = $2`, userID, leaveTypeID)
	return scanBalance(row)
}

func (r *balanceRepository) ListByUser(ctx context.Context, userID string) ([]domain.LeaveBalance, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+balanceColumns+`
	FROM leave_balances WHERE user_id = $1 ORDER BY leave_type_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []domain.LeaveBalance
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, err
		}
		balances = append(balances, *b)
	}
	return balances, rows.Err()
}

func (r *balanceRepository) Adjust(ctx context.Context, userID, leaveTypeID string, delta decimal.Decimal) (*domain.LeaveBalance, error) {
	row := r.pool.QueryRow(ctx, `
	UPDATE leave_balances
	SET current_balance = current_balance - $3::numeric, updated_at = NOW()
	WHERE user_id = $1 AND leave_type_id = $2
	RETURNING `+balanceColumns, userID, leaveTypeID, delta.String())
	return scanBalance(row)
}

func scanBalance(row pgx.Row) (*domain.LeaveBalance, error) {
	var (
		b                 domain.LeaveBalance
		allotted, current string
	)
	if err := row.Scan(&b.UserID, &b.LeaveTypeID, &allotted, &current, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBalanceNotFound
		}
		return nil, err
	}

	var err error
	if b.AllottedLeaves, err = parseNumeric(allotted); err != nil {
		return nil, err
	}
	if b.CurrentBalance, err = parseNumeric(current); err != nil {
		return nil, err
	}
	return &b, nil
}
