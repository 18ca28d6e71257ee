package stats

import (
	"time"

	"github.com/fastygo/workdesk/domain"
)

// Severity is the presentation bucket for a completion rate.
type Severity string

const (
	SeverityNeutral  Severity = "neutral"
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityGood     Severity = "good"
)

// Classify maps a completion rate to a severity. An empty set is always neutral.
func Classify(rate int, isEmpty bool) Severity {
	switch {
	case isEmpty:
		return SeverityNeutral
	case rate < CriticalBelow:
		return SeverityCritical
	case rate < GoodFrom:
		return SeverityWarning
	default:
		return SeverityGood
	}
}

// EntityStats is one row of a per-user or per-category roll-up.
type EntityStats struct {
	EntityID string   `json:"entity_id"`
	Stats    Stats    `json:"stats"`
	Severity Severity `json:"severity"`
}

// Select returns the tasks matching keep, preserving order.
func Select(tasks []domain.Task, keep func(*domain.Task) bool) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for i := range tasks {
		if keep(&tasks[i]) {
			out = append(out, tasks[i])
		}
	}
	return out
}

func assignedTo(userID string) func(*domain.Task) bool {
	return func(t *domain.Task) bool { return t.AssignedUserID == userID }
}

func inCategory(categoryID string) func(*domain.Task) bool {
	return func(t *domain.Task) bool { return t.CategoryID == categoryID }
}

// ForUser is Compute over the tasks assigned to userID.
func ForUser(tasks []domain.Task, userID string, filter domain.DateFilter, now time.Time) Stats {
	return Compute(Select(tasks, assignedTo(userID)), filter, now)
}

// ForCategory is Compute over the tasks in categoryID.
func ForCategory(tasks []domain.Task, categoryID string, filter domain.DateFilter, now time.Time) Stats {
	return Compute(Select(tasks, inCategory(categoryID)), filter, now)
}

// RollUpByUser returns one row per user id, in the given order.
func RollUpByUser(tasks []domain.Task, userIDs []string, filter domain.DateFilter, now time.Time) []EntityStats {
	return rollUp(userIDs, func(id string) Stats { return ForUser(tasks, id, filter, now) })
}

// RollUpByCategory returns one row per category id, in the given order.
func RollUpByCategory(tasks []domain.Task, categoryIDs []string, filter domain.DateFilter, now time.Time) []EntityStats {
	return rollUp(categoryIDs, func(id string) Stats { return ForCategory(tasks, id, filter, now) })
}

func rollUp(ids []string, compute func(string) Stats) []EntityStats {
	rows := make([]EntityStats, 0, len(ids))
	for _, id := range ids {
		s := compute(id)
		rows = append(rows, EntityStats{
			EntityID: id,
			Stats:    s,
			Severity: Classify(s.CompletionRate, s.IsEmpty()),
		})
	}
	return rows
}
