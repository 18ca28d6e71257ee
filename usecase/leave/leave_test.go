package leave

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fastygo/workdesk/domain"
	"github.com/fastygo/workdesk/domain/transition"
	"github.com/fastygo/workdesk/repository"
	"github.com/fastygo/workdesk/usecase"
)

var fixedNow = time.Date(2024, time.March, 13, 10, 0, 0, 0, time.UTC)

type memLeaves struct {
	rows   map[string]domain.LeaveRequest
	listed []repository.LeaveFilter
}

func (m *memLeaves) GetByID(_ context.Context, id string) (*domain.LeaveRequest, error) {
	l, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrLeaveNotFound
	}
	l.Days = append([]domain.LeaveDay(nil), l.Days...)
	return &l, nil
}

func (m *memLeaves) List(_ context.Context, f repository.LeaveFilter) ([]domain.LeaveRequest, error) {
	m.listed = append(m.listed, f)
	var out []domain.LeaveRequest
	for _, l := range m.rows {
		if f.UserID == "" || l.UserID == f.UserID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].FromDate.Equal(out[j].FromDate) {
			return out[i].FromDate.After(out[j].FromDate)
		}
		return out[i].ID < out[j].ID
	})
	return usecase.Paginate(out, usecase.Page{Limit: f.Limit, Offset: f.Offset}), nil
}

func (m *memLeaves) Create(_ context.Context, l *domain.LeaveRequest) (*domain.LeaveRequest, error) {
	m.rows[l.ID] = *l
	return l, nil
}

func (m *memLeaves) UpdateDays(_ context.Context, l *domain.LeaveRequest) error {
	m.rows[l.ID] = *l
	return nil
}

func (m *memLeaves) Delete(_ context.Context, id string) error {
	if _, ok := m.rows[id]; !ok {
		return domain.ErrLeaveNotFound
	}
	delete(m.rows, id)
	return nil
}

type memTypes map[string]domain.LeaveType

func (m memTypes) GetByID(_ context.Context, id string) (*domain.LeaveType, error) {
	lt, ok := m[id]
	if !ok {
		return nil, domain.ErrLeaveTypeNotFound
	}
	return &lt, nil
}

func (m memTypes) List(context.Context) ([]domain.LeaveType, error) {
	var out []domain.LeaveType
	for _, lt := range m {
		out = append(out, lt)
	}
	return out, nil
}

type memBalances struct {
	current decimal.Decimal
}

func (m *memBalances) Get(_ context.Context, userID, typeID string) (*domain.LeaveBalance, error) {
	return &domain.LeaveBalance{UserID: userID, LeaveTypeID: typeID, CurrentBalance: m.current}, nil
}

func (m *memBalances) ListByUser(ctx context.Context, userID string) ([]domain.LeaveBalance, error) {
	b, _ := m.Get(ctx, userID, "annual")
	return []domain.LeaveBalance{*b}, nil
}

func (m *memBalances) Adjust(ctx context.Context, userID, typeID string, delta decimal.Decimal) (*domain.LeaveBalance, error) {
	m.current = m.current.Sub(delta)
	return m.Get(ctx, userID, typeID)
}

type memUsers map[string]domain.User

func (m memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := m[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (m memUsers) List(context.Context) ([]domain.User, error) { return nil, nil }
func (m memUsers) Upsert(context.Context, *domain.User) error { return nil }

func setup(balance string) (*UseCase, *memLeaves, *memBalances) {
	leaves := &memLeaves{rows: map[string]domain.LeaveRequest{}}
	balances := &memBalances{current: decimal.RequireFromString(balance)}
	types := memTypes{
		"annual": {ID: "annual", Name: "Annual", AllowedUnits: []domain.UnitGroup{domain.GroupFullDay, domain.GroupHalfDay}},
	}
	users := memUsers{
		"emp": {ID: "emp", Role: domain.RoleEmployee, Status: "active"},
		"mgr": {ID: "mgr", Role: domain.RoleManager, Status: "active"},
	}
	uc := New(leaves, types, balances, users, nil, func() time.Time { return fixedNow }, nil)
	return uc, leaves, balances
}

func day(d int) time.Time {
	return time.Date(2024, time.April, d, 0, 0, 0, 0, time.UTC)
}

func TestPreviewTotalsHalfDays(t *testing.T) {
	uc, _, _ := setup("5")
	p, err := uc.Preview(context.Background(), ApplyInput{
		UserID:      "emp",
		LeaveTypeID: "annual",
		From:        day(1),
		To:          day(3),
		Overrides:   map[string]domain.DayUnit{"2024-04-03": domain.UnitSecondHalf},
	})
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if !p.Total.Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("total = %s, want 2.5", p.Total)
	}
	if !p.Remaining.Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("remaining = %s, want 2.5", p.Remaining)
	}
}

func TestPreviewCapsRequestSpan(t *testing.T) {
	uc, leaves, _ := setup("100000")
	ctx := context.Background()
	jan1 := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		from, to time.Time
		wantErr  error
	}{
		{name: "whole calendar", from: time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC), to: time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC), wantErr: domain.ErrLeaveSpanTooLong},
		{name: "one day over", from: jan1, to: jan1.AddDate(0, 0, MaxSpanDays), wantErr: domain.ErrLeaveSpanTooLong},
		{name: "at the cap", from: jan1, to: jan1.AddDate(0, 0, MaxSpanDays-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := uc.Preview(ctx, ApplyInput{UserID: "emp", LeaveTypeID: "annual", From: tt.from, To: tt.to})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) || !domain.IsDomainError(err, domain.ErrCodeInvalid) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Preview: %v", err)
			}
			if len(p.Days) != MaxSpanDays {
				t.Errorf("days = %d, want %d", len(p.Days), MaxSpanDays)
			}
		})
	}

	_, err := uc.Apply(ctx, ApplyInput{UserID: "emp", LeaveTypeID: "annual", From: jan1, To: jan1.AddDate(2, 0, 0)})
	if !errors.Is(err, domain.ErrLeaveSpanTooLong) {
		t.Fatalf("Apply err = %v, want ErrLeaveSpanTooLong", err)
	}
	if len(leaves.rows) != 0 {
		t.Errorf("rejected request was stored")
	}
}

func TestPreviewRejections(t *testing.T) {
	uc, _, _ := setup("1")

	_, err := uc.Preview(context.Background(), ApplyInput{UserID: "emp", LeaveTypeID: "annual", From: day(1), To: day(2)})
	var exceeds *domain.ExceedsBalanceError
	if !errors.As(err, &exceeds) || !exceeds.Excess.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("err = %v, want excess of 1", err)
	}

	_, err = uc.Preview(context.Background(), ApplyInput{
		UserID: "emp", LeaveTypeID: "annual", From: day(1), To: day(1),
		Overrides: map[string]domain.DayUnit{"2024-04-01": domain.UnitFirstQuarter},
	})
	if !errors.Is(err, domain.ErrUnitNotAllowed) {
		t.Errorf("err = %v, want ErrUnitNotAllowed", err)
	}

	_, err = uc.Preview(context.Background(), ApplyInput{UserID: "emp", LeaveTypeID: "annual", From: day(3), To: day(1)})
	if !errors.Is(err, domain.ErrInvalidRange) {
		t.Errorf("err = %v, want ErrInvalidRange", err)
	}
}

func TestApplyDecideDeleteMovesBalance(t *testing.T) {
	uc, leaves, balances := setup("10")
	ctx := context.Background()

	leave, err := uc.Apply(ctx, ApplyInput{UserID: "emp", LeaveTypeID: "annual", From: day(1), To: day(3), Reason: "trip"})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if leave.Status() != domain.LeaveStatusPending {
		t.Fatalf("status = %s, want pending", leave.Status())
	}
	if !balances.current.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("applying must not charge the balance, got %s", balances.current)
	}

	if _, err := uc.Decide(ctx, DecideInput{LeaveID: leave.ID, DeciderID: "emp", All: transition.Approve}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("employee decision err = %v, want ErrForbidden", err)
	}

	decided, err := uc.Decide(ctx, DecideInput{LeaveID: leave.ID, DeciderID: "mgr", All: transition.Approve})
	if err != nil {
		t.Fatalf("Decide approve: %v", err)
	}
	if decided.Status() != domain.LeaveStatusApproved || !balances.current.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("after approve status=%s balance=%s", decided.Status(), balances.current)
	}

	partial, err := uc.Decide(ctx, DecideInput{
		LeaveID:   leave.ID,
		DeciderID: "mgr",
		Decisions: map[string]transition.Decision{"2024-04-02": transition.Reject},
		Remarks:   "needed on site",
	})
	if err != nil {
		t.Fatalf("Decide reject: %v", err)
	}
	if partial.Status() != domain.LeaveStatusPartiallyApproved || !balances.current.Equal(decimal.NewFromInt(8)) {
		t.Fatalf("after reject status=%s balance=%s", partial.Status(), balances.current)
	}

	if err := uc.Delete(ctx, leave.ID, "emp"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !balances.current.Equal(decimal.NewFromInt(10)) {
		t.Errorf("delete should restore approved days, balance = %s", balances.current)
	}
	if len(leaves.rows) != 0 {
		t.Errorf("leave not removed")
	}
}

func TestDecideRejectNeedsRemarks(t *testing.T) {
	uc, _, balances := setup("10")
	ctx := context.Background()
	leave, err := uc.Apply(ctx, ApplyInput{UserID: "emp", LeaveTypeID: "annual", From: day(1), To: day(1)})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	_, err = uc.Decide(ctx, DecideInput{LeaveID: leave.ID, DeciderID: "mgr", All: transition.Reject})
	if !errors.Is(err, domain.ErrEmptyComment) {
		t.Fatalf("err = %v, want ErrEmptyComment", err)
	}
	if !balances.current.Equal(decimal.NewFromInt(10)) {
		t.Errorf("balance changed on failed decision")
	}
}

func TestDecideApprovalExceedingBalance(t *testing.T) {
	uc, _, balances := setup("3")
	ctx := context.Background()
	leave, err := uc.Apply(ctx, ApplyInput{UserID: "emp", LeaveTypeID: "annual", From: day(1), To: day(3)})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	balances.current = decimal.RequireFromString("1.5")

	_, err = uc.Decide(ctx, DecideInput{LeaveID: leave.ID, DeciderID: "mgr", All: transition.Approve})
	var exceeds *domain.ExceedsBalanceError
	if !errors.As(err, &exceeds) || !exceeds.Excess.Equal(decimal.RequireFromString("1.5")) {
		t.Fatalf("err = %v, want excess 1.5", err)
	}
}

func TestListFiltersByFromDate(t *testing.T) {
	uc, leaves, _ := setup("10")
	leaves.rows["march"] = domain.LeaveRequest{ID: "march", UserID: "emp", FromDate: time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC)}
	leaves.rows["april"] = domain.LeaveRequest{ID: "april", UserID: "emp", FromDate: day(2)}
	leaves.rows["other"] = domain.LeaveRequest{ID: "other", UserID: "someone", FromDate: time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)}

	got, err := uc.List(context.Background(), "emp", domain.DateFilter{Kind: domain.FilterThisMonth}, usecase.NewPage(0, 0))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].ID != "march" {
		t.Fatalf("List = %+v, want only march", got)
	}
}

func TestListPagesNewestFirst(t *testing.T) {
	uc, leaves, _ := setup("10")
	for i, d := range []int{1, 2, 3, 4, 5} {
		id := string(rune('a' + i))
		leaves.rows[id] = domain.LeaveRequest{ID: id, UserID: "emp", FromDate: day(d)}
	}
	leaves.rows["early"] = domain.LeaveRequest{ID: "early", UserID: "emp", FromDate: time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)}
	ctx := context.Background()

	tests := []struct {
		name      string
		filter    domain.DateFilter
		page      usecase.Page
		want      []string
		wantLimit int
	}{
		{name: "all time pushed to store", filter: domain.AllTime(), page: usecase.NewPage(2, 1), want: []string{"d", "c"}, wantLimit: 2},
		{name: "windowed pages in memory", filter: domain.DateFilter{Kind: domain.FilterThisMonth}, page: usecase.NewPage(5, 0), want: []string{"early"}},
		{name: "offset past end", filter: domain.AllTime(), page: usecase.NewPage(2, 10), want: nil, wantLimit: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leaves.listed = nil
			got, err := uc.List(ctx, "emp", tt.filter, tt.page)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			var ids []string
			for _, l := range got {
				ids = append(ids, l.ID)
			}
			if len(ids) != len(tt.want) {
				t.Fatalf("ids = %v, want %v", ids, tt.want)
			}
			for i := range ids {
				if ids[i] != tt.want[i] {
					t.Fatalf("ids = %v, want %v", ids, tt.want)
				}
			}
			if len(leaves.listed) != 1 || leaves.listed[0].Limit != tt.wantLimit {
				t.Errorf("store filter = %+v, want limit %d", leaves.listed, tt.wantLimit)
			}
		})
	}
}
