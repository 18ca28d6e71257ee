// Package stats derives dashboard counts from a flat collection of tasks. Every function is pure;
// the reference instant is always supplied by the caller.
package stats

import (
	"math"
	"time"

	"github.com/fastygo/workdesk/domain"
)

const (
	// DueSoonDays is the number of whole days ahead a task still counts as due soon.
	DueSoonDays = 3

	// CriticalBelow and GoodFrom are the completion-rate severity thresholds in percent.
	CriticalBelow = 50
	GoodFrom      = 80
)

const day = 24 * time.Hour

// Stats is the derived view of a task set.
type Stats struct {
	Total          int `json:"total"`
	Overdue        int `json:"overdue"`
	DueSoon        int `json:"due_soon"`
	Pending        int `json:"pending"`
	InProgress     int `json:"in_progress"`
	Completed      int `json:"completed"`
	InTime         int `json:"in_time"`
	Delayed        int `json:"delayed"`
	CompletionRate int `json:"completion_rate"`
	OnTimeRate     int `json:"on_time_rate"`
}

func (s Stats) IsEmpty() bool {
	return s.Total == 0
}

// Compute counts the tasks whose due date falls in the filter window. Overdue and due-soon are
// judged against now, not against the window.
func Compute(tasks []domain.Task, filter domain.DateFilter, now time.Time) Stats {
	window := filter.Resolve(now)

	var s Stats
	for i := range tasks {
		t := &tasks[i]
		if !window.Contains(t.DueDate) {
			continue
		}
		s.Total++

		switch t.Status {
		case domain.TaskStatusPending:
			s.Pending++
		case domain.TaskStatusInProgress:
			s.InProgress++
		case domain.TaskStatusCompleted:
			s.Completed++
			if IsInTime(t) {
				s.InTime++
			} else {
				s.Delayed++
			}
			continue
		}

		if IsOverdue(t, now) {
			s.Overdue++
		} else if IsDueSoon(t, now) {
			s.DueSoon++
		}
	}

	s.CompletionRate = percent(s.Completed, s.Total)
	s.OnTimeRate = percent(s.InTime, s.Completed)
	return s
}

// IsOverdue reports an unfinished task whose due date has passed.
func IsOverdue(t *domain.Task, now time.Time) bool {
	return t.Status != domain.TaskStatusCompleted && t.DueDate.Before(now)
}

// IsDueSoon reports an unfinished, not yet overdue task due within DueSoonDays whole days,
// rounding the remaining time up to the next day.
func IsDueSoon(t *domain.Task, now time.Time) bool {
	if t.Status == domain.TaskStatusCompleted || t.DueDate.Before(now) {
		return false
	}
	return DaysUntil(t.DueDate, now) <= DueSoonDays
}

// DaysUntil is ceil((due - now) / 24h) for a due date not before now.
func DaysUntil(due, now time.Time) int {
	left := due.Sub(now)
	days := int(left / day)
	if left%day > 0 {
		days++
	}
	return days
}

// IsInTime reports a completed task finished on or before its due date. A completed record
// without a completion date carries no evidence of being on time and counts as delayed.
func IsInTime(t *domain.Task) bool {
	return t.Status == domain.TaskStatusCompleted &&
		t.CompletionDate != nil &&
		!t.CompletionDate.After(t.DueDate)
}

func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(whole)))
}
