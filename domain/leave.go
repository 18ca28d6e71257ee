package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire and map-key format for calendar days.
const DateLayout = "2006-01-02"

// DayUnit is the portion of a calendar day a leave entry consumes.
type DayUnit string

const (
	UnitFullDay       DayUnit = "full_day"
	UnitFirstHalf     DayUnit = "first_half"
	UnitSecondHalf    DayUnit = "second_half"
	UnitFirstQuarter  DayUnit = "first_quarter"
	UnitSecondQuarter DayUnit = "second_quarter"
	UnitThirdQuarter  DayUnit = "third_quarter"
	UnitFourthQuarter DayUnit = "fourth_quarter"
)

var (
	fractionFull    = decimal.NewFromInt(1)
	fractionHalf    = decimal.RequireFromString("0.5")
	fractionQuarter = decimal.RequireFromString("0.25")
)

// Fraction returns the exact share of a day the unit represents.
func (u DayUnit) Fraction() decimal.Decimal {
	switch u {
	case UnitFullDay:
		return fractionFull
	case UnitFirstHalf, UnitSecondHalf:
		return fractionHalf
	case UnitFirstQuarter, UnitSecondQuarter, UnitThirdQuarter, UnitFourthQuarter:
		return fractionQuarter
	}
	return decimal.Zero
}

func (u DayUnit) Valid() bool {
	return !u.Fraction().IsZero()
}

// Group returns the configuration group the unit belongs to.
func (u DayUnit) Group() UnitGroup {
	switch u {
	case UnitFullDay:
		return GroupFullDay
	case UnitFirstHalf, UnitSecondHalf:
		return GroupHalfDay
	case UnitFirstQuarter, UnitSecondQuarter, UnitThirdQuarter, UnitFourthQuarter:
		return GroupShortLeave
	}
	return ""
}

// UnitGroup is what a leave type allows: whole days, halves or quarters.
type UnitGroup string

const (
	GroupFullDay    UnitGroup = "full_day"
	GroupHalfDay    UnitGroup = "half_day"
	GroupShortLeave UnitGroup = "short_leave"
)

// Units lists the day units selectable under the group.
func (g UnitGroup) Units() []DayUnit {
	switch g {
	case GroupFullDay:
		return []DayUnit{UnitFullDay}
	case GroupHalfDay:
		return []DayUnit{UnitFirstHalf, UnitSecondHalf}
	case GroupShortLeave:
		return []DayUnit{UnitFirstQuarter, UnitSecondQuarter, UnitThirdQuarter, UnitFourthQuarter}
	}
	return nil
}

// LeaveType is a configured kind of leave (annual, sick, ...).
type LeaveType struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	AllowedUnits []UnitGroup `json:"allowed_units"`
}

// Allows reports whether the unit may be selected for this leave type.
func (lt *LeaveType) Allows(unit DayUnit) bool {
	if lt == nil {
		return false
	}
	group := unit.Group()
	for _, g := range lt.AllowedUnits {
		if g == group {
			return true
		}
	}
	return false
}

// LeaveStatus is the request-level status. PartiallyApproved only exists in aggregate form.
type LeaveStatus string

const (
	LeaveStatusPending           LeaveStatus = "pending"
	LeaveStatusApproved          LeaveStatus = "approved"
	LeaveStatusRejected          LeaveStatus = "rejected"
	LeaveStatusPartiallyApproved LeaveStatus = "partially_approved"
)

// ValidDayStatus reports whether s may be stored on a single day.
func (s LeaveStatus) ValidDayStatus() bool {
	switch s {
	case LeaveStatusPending, LeaveStatusApproved, LeaveStatusRejected:
		return true
	}
	return false
}

// LeaveDay is one calendar date of a request.
type LeaveDay struct {
	Date   time.Time   `json:"date"`
	Unit   DayUnit     `json:"unit"`
	Status LeaveStatus `json:"status"`
}

// Key returns the calendar-day key used for overrides and decisions.
func (d LeaveDay) Key() string {
	return d.Date.Format(DateLayout)
}

// LeaveRequest is a user's request for one or more days off.
type LeaveRequest struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	LeaveTypeID string     `json:"leave_type_id"`
	FromDate    time.Time  `json:"from_date"`
	ToDate      time.Time  `json:"to_date"`
	Reason      string     `json:"reason,omitempty"`
	Remarks     string     `json:"remarks,omitempty"`
	Days        []LeaveDay `json:"days"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Status derives the aggregate status from the per-day statuses.
func (r *LeaveRequest) Status() LeaveStatus {
	if r == nil {
		return LeaveStatusPending
	}
	return AggregateLeaveStatus(r.Days)
}

// AggregateLeaveStatus folds per-day statuses into a request status.
// Any undecided day (or no days at all) keeps the request pending.
func AggregateLeaveStatus(days []LeaveDay) LeaveStatus {
	if len(days) == 0 {
		return LeaveStatusPending
	}
	var approved, rejected int
	for _, d := range days {
		switch d.Status {
		case LeaveStatusApproved:
			approved++
		case LeaveStatusRejected:
			rejected++
		default:
			return LeaveStatusPending
		}
	}
	switch {
	case approved == len(days):
		return LeaveStatusApproved
	case rejected == len(days):
		return LeaveStatusRejected
	default:
		return LeaveStatusPartiallyApproved
	}
}

// LeaveBalance is the per user and leave type entitlement.
type LeaveBalance struct {
	UserID         string          `json:"user_id"`
	LeaveTypeID    string          `json:"leave_type_id"`
	AllottedLeaves decimal.Decimal `json:"allotted_leaves"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
