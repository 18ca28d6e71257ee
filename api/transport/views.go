package transport

import (
	"github.com/shopspring/decimal"

	"github.com/fastygo/workdesk/domain"
	"github.com/fastygo/workdesk/domain/allocation"
)

// LoginResponse pairs the stored session with the bearer token for protected routes.
type LoginResponse struct {
	Session *domain.Session `json:"session"`
	Token   string          `json:"token"`
}

// ProfileView is the caller's profile plus the role-gated capabilities the UI switches on.
type ProfileView struct {
	*domain.User
	CanDecideLeave bool `json:"can_decide_leave"`
	CanViewTeam    bool `json:"can_view_team"`
}

func NewProfileView(u *domain.User) ProfileView {
	manager := u.CanDecideLeave()
	return ProfileView{User: u, CanDecideLeave: manager, CanViewTeam: manager}
}

type TaskActionsView struct {
	TaskID  string              `json:"task_id"`
	Status  domain.TaskStatus   `json:"status"`
	Actions []domain.TaskAction `json:"actions"`
}

type LeaveDayView struct {
	Date     string             `json:"date"`
	Unit     domain.DayUnit     `json:"unit"`
	Fraction decimal.Decimal    `json:"fraction"`
	Status   domain.LeaveStatus `json:"status"`
}

// LeaveView is the wire form of a request, including its derived aggregate status.
type LeaveView struct {
	ID           string             `json:"id"`
	UserID       string             `json:"user_id"`
	LeaveTypeID  string             `json:"leave_type_id"`
	FromDate     string             `json:"from_date"`
	ToDate       string             `json:"to_date"`
	Reason       string             `json:"reason,omitempty"`
	Remarks      string             `json:"remarks,omitempty"`
	Status       domain.LeaveStatus `json:"status"`
	TotalDays    decimal.Decimal    `json:"total_days"`
	ApprovedDays decimal.Decimal    `json:"approved_days"`
	Days         []LeaveDayView     `json:"days"`
}

func NewLeaveView(l *domain.LeaveRequest) LeaveView {
	days := make([]LeaveDayView, len(l.Days))
	for i, d := range l.Days {
		days[i] = LeaveDayView{
			Date:     d.Key(),
			Unit:     d.Unit,
			Fraction: d.Unit.Fraction(),
			Status:   d.Status,
		}
	}
	return LeaveView{
		ID:           l.ID,
		UserID:       l.UserID,
		LeaveTypeID:  l.LeaveTypeID,
		FromDate:     l.FromDate.Format(domain.DateLayout),
		ToDate:       l.ToDate.Format(domain.DateLayout),
		Reason:       l.Reason,
		Remarks:      l.Remarks,
		Status:       l.Status(),
		TotalDays:    allocation.TotalAppliedDays(l.Days),
		ApprovedDays: allocation.ApprovedDays(l.Days),
		Days:         days,
	}
}

func NewLeaveViews(leaves []domain.LeaveRequest) []LeaveView {
	out := make([]LeaveView, len(leaves))
	for i := range leaves {
		out[i] = NewLeaveView(&leaves[i])
	}
	return out
}
