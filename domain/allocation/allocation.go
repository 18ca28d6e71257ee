// Package allocation computes how many leave days a request consumes and checks the result
// against a remaining balance. All arithmetic is exact decimal.
package allocation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fastygo/workdesk/domain"
)

// Precision is the number of decimal places a quarter day needs.
const Precision = 2

// ExpandDateRange returns every calendar day from from to to inclusive, at midnight in from's
// location. Time of day is ignored when comparing the endpoints.
func ExpandDateRange(from, to time.Time) ([]time.Time, error) {
	start := domain.StartOfDay(from)
	end := domain.StartOfDay(to.In(from.Location()))
	if end.Before(start) {
		return nil, domain.ErrInvalidRange
	}

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days, nil
}

// SpanDays counts the days ExpandDateRange would return without building them. It is zero
// when to falls before from.
func SpanDays(from, to time.Time) int {
	start := domain.StartOfDay(from)
	end := domain.StartOfDay(to.In(from.Location()))
	// Calendar dates in UTC so DST days count once.
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC).Unix()
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC).Unix()
	if e < s {
		return 0
	}
	return int((e-s)/secondsPerDay) + 1
}

const secondsPerDay = 24 * 60 * 60

// BuildDays expands the range into pending leave days. Every day is a full day unless
// overrides (keyed YYYY-MM-DD) says otherwise.
func BuildDays(from, to time.Time, overrides map[string]domain.DayUnit) ([]domain.LeaveDay, error) {
	dates, err := ExpandDateRange(from, to)
	if err != nil {
		return nil, err
	}

	days := make([]domain.LeaveDay, len(dates))
	seen := make(map[string]struct{}, len(dates))
	for i, d := range dates {
		days[i] = domain.LeaveDay{Date: d, Unit: domain.UnitFullDay, Status: domain.LeaveStatusPending}
		seen[days[i].Key()] = struct{}{}
	}

	for key, unit := range overrides {
		if _, ok := seen[key]; !ok {
			return nil, domain.WrapError(domain.ErrCodeInvalid, "unit override outside range "+key, domain.ErrInvalidRange)
		}
		if !unit.Valid() {
			return nil, domain.NewError(domain.ErrCodeInvalid, "unknown day unit "+string(unit))
		}
	}
	for i := range days {
		if unit, ok := overrides[days[i].Key()]; ok {
			days[i].Unit = unit
		}
	}
	return days, nil
}

// TotalAppliedDays sums the fraction of every day in the request.
func TotalAppliedDays(days []domain.LeaveDay) decimal.Decimal {
	total := decimal.Zero
	for _, d := range days {
		total = total.Add(d.Unit.Fraction())
	}
	return total
}

// ApprovedDays sums only the days that have been approved.
func ApprovedDays(days []domain.LeaveDay) decimal.Decimal {
	total := decimal.Zero
	for _, d := range days {
		if d.Status == domain.LeaveStatusApproved {
			total = total.Add(d.Unit.Fraction())
		}
	}
	return total
}

// BalanceDelta is how much more balance the after state consumes compared to before.
// A negative value means days are returned to the balance.
func BalanceDelta(before, after []domain.LeaveDay) decimal.Decimal {
	return ApprovedDays(after).Sub(ApprovedDays(before))
}

// ValidateAgainstBalance fails with *domain.ExceedsBalanceError when total is larger than balance.
// The excess is reported exactly, never clamped.
func ValidateAgainstBalance(total, balance decimal.Decimal) error {
	if total.LessThanOrEqual(balance) {
		return nil
	}
	return &domain.ExceedsBalanceError{Excess: total.Sub(balance).Round(Precision)}
}

// ValidateUnits rejects days whose unit the leave type does not allow.
func ValidateUnits(days []domain.LeaveDay, leaveType domain.LeaveType) error {
	for _, d := range days {
		if !leaveType.Allows(d.Unit) {
			return domain.WrapError(domain.ErrCodeInvalid,
				string(d.Unit)+" on "+d.Key()+" not allowed for "+leaveType.Name, domain.ErrUnitNotAllowed)
		}
	}
	return nil
}
