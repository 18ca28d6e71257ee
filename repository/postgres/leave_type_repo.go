package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/workdesk/domain"
	"github.com/fastygo/workdesk/repository"
)

type leaveTypeRepository struct {
	pool *pgxpool.Pool
}

func NewLeaveTypeRepository(pool *pgxpool.Pool) repository.LeaveTypeRepository {
	return &leaveTypeRepository{pool: pool}
}

func (r *leaveTypeRepository) GetByID(ctx context.Context, id string) (*domain.LeaveType, error) {
	return scanLeaveType(r.pool.QueryRow(ctx, `SELECT id, name, allowed_units FROM leave_types WHERE id = $1`, id))
}

func (r *leaveTypeRepository) List(ctx context.Context) ([]domain.LeaveType, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, allowed_units FROM leave_types ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []domain.LeaveType
	for rows.Next() {
		lt, err := scanLeaveType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, *lt)
	}
	return types, rows.Err()
}

func scanLeaveType(row pgx.Row) (*domain.LeaveType, error) {
	var (
		lt    domain.LeaveType
		units []string
	)
	if err := row.Scan(&lt.ID, &lt.Name, &units); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLeaveTypeNotFound
		}
		return nil, err
	}
	for _, u := range units {
		lt.AllowedUnits = append(lt.AllowedUnits, domain.UnitGroup(u))
	}
	return &lt, nil
}
