// Package leave applies for, decides and removes leave requests while keeping the
// per-type balance in step with the approved days.
package leave

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fastygo/workdesk/domain"
	"github.com/fastygo/workdesk/domain/allocation"
	"github.com/fastygo/workdesk/domain/transition"
	"github.com/fastygo/workdesk/repository"
	"github.com/fastygo/workdesk/usecase"
)

// MaxSpanDays caps how many calendar days one request may cover.
const MaxSpanDays = 366

// ApplyInput describes a new request. Overrides are keyed YYYY-MM-DD; unlisted days are full days.
type ApplyInput struct {
	UserID      string
	LeaveTypeID string
	From        time.Time
	To          time.Time
	Overrides   map[string]domain.DayUnit
	Reason      string
}

// DecideInput carries per-day decisions. When All is set it overrides Decisions and covers every day.
type DecideInput struct {
	LeaveID   string
	DeciderID string
	Decisions map[string]transition.Decision
	All       transition.Decision
	Remarks   string
}

// Preview is what an application would consume, computed without saving anything.
type Preview struct {
	Days      []domain.LeaveDay `json:"days"`
	Total     decimal.Decimal   `json:"total"`
	Balance   decimal.Decimal   `json:"balance"`
	Remaining decimal.Decimal   `json:"remaining"`
}

type UseCase struct {
	leaves   repository.LeaveRepository
	types    repository.LeaveTypeRepository
	balances repository.BalanceRepository
	users    repository.UserRepository
	buffer   usecase.OperationBuffer
	clock    usecase.Clock
	logger   *zap.Logger
}

func New(
	leaves repository.LeaveRepository,
	types repository.LeaveTypeRepository,
	balances repository.BalanceRepository,
	users repository.UserRepository,
	buffer usecase.OperationBuffer,
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
		leaves:   leaves,
		types:    types,
		balances: balances,
		users:    users,
		buffer:   buffer,
		clock:    clock,
		logger:   logger,
	}
}

func (uc *UseCase) Preview(ctx context.Context, in ApplyInput) (*Preview, error) {
	if in.UserID == "" || in.LeaveTypeID == "" {
		return nil, domain.ErrInvalidPayload
	}
	if allocation.SpanDays(in.From, in.To) > MaxSpanDays {
		return nil, domain.ErrLeaveSpanTooLong
	}
	leaveType, err := uc.types.GetByID(ctx, in.LeaveTypeID)
	if err != nil {
		return nil, err
	}

	days, err := allocation.BuildDays(in.From, in.To, in.Overrides)
	if err != nil {
		return nil, err
	}
	if err := allocation.ValidateUnits(days, *leaveType); err != nil {
		return nil, err
	}

	balance, err := uc.balances.Get(ctx, in.UserID, in.LeaveTypeID)
	if err != nil {
		return nil, err
	}
	total := allocation.TotalAppliedDays(days)
	if err := allocation.ValidateAgainstBalance(total, balance.CurrentBalance); err != nil {
		return nil, err
	}

	return &Preview{
		Days:      days,
		Total:     total,
		Balance:   balance.CurrentBalance,
		Remaining: balance.CurrentBalance.Sub(total),
	}, nil
}

// Apply stores the request with every day pending. The balance is only charged on approval.
func (uc *UseCase) Apply(ctx context.Context, in ApplyInput) (*domain.LeaveRequest, error) {
	preview, err := uc.Preview(ctx, in)
	if err != nil {
		return nil, err
	}

	now := uc.clock()
	leave := &domain.LeaveRequest{
		ID:          uuid.NewString(),
		UserID:      in.UserID,
		LeaveTypeID: in.LeaveTypeID,
		FromDate:    preview.Days[0].Date,
		ToDate:      preview.Days[len(preview.Days)-1].Date,
		Reason:      in.Reason,
		Days:        preview.Days,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := uc.leaves.Create(ctx, leave)
	if err != nil {
		if usecase.Bufferable(err) && uc.shouldBuffer(ctx, usecase.OperationCreate, leave) {
			return leave, nil
		}
		return nil, err
	}

	uc.logger.Info("leave applied",
		zap.String("leave_id", created.ID),
		zap.String("user_id", created.UserID),
		zap.String("days", preview.Total.String()))
	return created, nil
}

// Decide applies the decisions and moves the balance by the change in approved days.
// Approving more than the remaining balance fails with *domain.ExceedsBalanceError.
func (uc *UseCase) Decide(ctx context.Context, in DecideInput) (*domain.LeaveRequest, error) {
	if err := uc.authorizeDecider(ctx, in.DeciderID); err != nil {
		return nil, err
	}
	current, err := uc.leaves.GetByID(ctx, in.LeaveID)
	if err != nil {
		return nil, err
	}

	decisions := in.Decisions
	if in.All != "" {
		decisions = transition.ApplyToAll(*current, in.All)
	}
	updated, err := transition.DecideLeave(*current, decisions, in.Remarks, uc.clock())
	if err != nil {
		return nil, err
	}

	delta := allocation.BalanceDelta(current.Days, updated.Days)
	if delta.IsPositive() {
		balance, err := uc.balances.Get(ctx, current.UserID, current.LeaveTypeID)
		if err != nil {
			return nil, err
		}
		if err := allocation.ValidateAgainstBalance(delta, balance.CurrentBalance); err != nil {
			return nil, err
		}
	}

	if err := uc.leaves.UpdateDays(ctx, &updated); err != nil {
		return nil, err
	}
	if !delta.IsZero() {
		if _, err := uc.balances.Adjust(ctx, current.UserID, current.LeaveTypeID, delta); err != nil {
			uc.logger.Error("balance adjustment failed after leave decision",
				zap.String("leave_id", current.ID),
				zap.String("delta", delta.String()),
				zap.Error(err))
			return nil, err
		}
	}

	uc.logger.Info("leave decided",
		zap.String("leave_id", updated.ID),
		zap.String("decider_id", in.DeciderID),
		zap.String("status", string(updated.Status())),
		zap.String("delta", delta.String()))
	return &updated, nil
}

// Delete removes a request. Approved days go back to the balance. Only the owner or a
// manager may delete.
func (uc *UseCase) Delete(ctx context.Context, leaveID, actorID string) error {
	current, err := uc.leaves.GetByID(ctx, leaveID)
	if err != nil {
		return err
	}
	if current.UserID != actorID {
		if err := uc.authorizeDecider(ctx, actorID); err != nil {
			return err
		}
	}

	if err := uc.leaves.Delete(ctx, leaveID); err != nil {
		return err
	}
	restore := allocation.ApprovedDays(current.Days)
	if restore.IsPositive() {
		if _, err := uc.balances.Adjust(ctx, current.UserID, current.LeaveTypeID, restore.Neg()); err != nil {
			uc.logger.Error("balance restore failed after leave delete",
				zap.String("leave_id", leaveID),
				zap.String("days", restore.String()),
				zap.Error(err))
			return err
		}
	}
	return nil
}

// List returns one page of the user's requests whose first day falls in the filter window,
// newest first. An empty userID lists every user's requests.
func (uc *UseCase) List(ctx context.Context, userID string, filter domain.DateFilter, page usecase.Page) ([]domain.LeaveRequest, error) {
	now := uc.clock()
	window := filter.Resolve(now)

	f := repository.LeaveFilter{UserID: userID}
	if window.Unbounded {
		f.Limit = page.Limit
		f.Offset = page.Offset
	}
	leaves, err := uc.leaves.List(ctx, f)
	if err != nil {
		return nil, err
	}

	out := make([]domain.LeaveRequest, 0, len(leaves))
	for _, l := range leaves {
		if window.Contains(calendarDay(l.FromDate, now.Location())) {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].FromDate.Equal(out[j].FromDate) {
			return out[i].FromDate.After(out[j].FromDate)
		}
		return out[i].ID < out[j].ID
	})
	if window.Unbounded {
		return out, nil
	}
	return usecase.Paginate(out, page), nil
}

func (uc *UseCase) Balances(ctx context.Context, userID string) ([]domain.LeaveBalance, error) {
	return uc.balances.ListByUser(ctx, userID)
}

func (uc *UseCase) LeaveTypes(ctx context.Context) ([]domain.LeaveType, error) {
	return uc.types.List(ctx)
}

func (uc *UseCase) authorizeDecider(ctx context.Context, userID string) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.CanDecideLeave() {
		return domain.ErrForbidden
	}
	return nil
}

func (uc *UseCase) shouldBuffer(ctx context.Context, operation string, leave *domain.LeaveRequest) bool {
	if uc.buffer == nil {
		return false
	}
	if err := uc.buffer.BufferLeave(ctx, operation, leave); err != nil {
		uc.logger.Error("failed to buffer leave operation", zap.String("operation", operation), zap.Error(err))
		return false
	}
	uc.logger.Warn("leave operation buffered", zap.String("operation", operation))
	return true
}

// calendarDay re-reads a stored DATE in loc so it compares against windows resolved there.
func calendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
