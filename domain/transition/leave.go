package transition

import (
	"strings"
	"time"

	"github.com/fastygo/workdesk/domain"
)

// Decision is the verdict for a single leave day.
type Decision string

const (
	Approve Decision = "approve"
	Reject  Decision = "reject"
)

func (d Decision) status() (domain.LeaveStatus, bool) {
	switch d {
	case Approve:
		return domain.LeaveStatusApproved, true
	case Reject:
		return domain.LeaveStatusRejected, true
	}
	return "", false
}

// DeriveLeaveStatus returns the aggregate status of a set of leave days.
func DeriveLeaveStatus(days []domain.LeaveDay) domain.LeaveStatus {
	return domain.AggregateLeaveStatus(days)
}

// ApplyToAll builds a decision map covering every day of the request.
func ApplyToAll(leave domain.LeaveRequest, d Decision) map[string]Decision {
	out := make(map[string]Decision, len(leave.Days))
	for _, day := range leave.Days {
		out[day.Key()] = d
	}
	return out
}

// DecideLeave applies per-day decisions keyed by YYYY-MM-DD. Days without a decision keep their
// status. Rejecting any day requires remarks. The argument is never mutated.
func DecideLeave(leave domain.LeaveRequest, decisions map[string]Decision, remarks string, now time.Time) (domain.LeaveRequest, error) {
	if len(decisions) == 0 {
		return leave, domain.NewError(domain.ErrCodeInvalid, "no decisions supplied")
	}

	index := make(map[string]int, len(leave.Days))
	for i, day := range leave.Days {
		index[day.Key()] = i
	}

	rejecting := false
	for key, d := range decisions {
		if _, ok := index[key]; !ok {
			return leave, domain.WrapError(domain.ErrCodeInvalid, "decision for date outside request "+key, domain.ErrInvalidRange)
		}
		status, ok := d.status()
		if !ok {
			return leave, domain.NewError(domain.ErrCodeInvalid, "unknown decision "+string(d))
		}
		if status == domain.LeaveStatusRejected {
			rejecting = true
		}
	}

	remarks = strings.TrimSpace(remarks)
	if rejecting && remarks == "" {
		return leave, domain.ErrEmptyComment
	}

	updated := leave
	updated.Days = make([]domain.LeaveDay, len(leave.Days))
	copy(updated.Days, leave.Days)
	for key, d := range decisions {
		status, _ := d.status()
		updated.Days[index[key]].Status = status
	}
	if remarks != "" {
		updated.Remarks = remarks
	}
	updated.UpdatedAt = now
	return updated, nil
}
