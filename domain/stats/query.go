package stats

import (
	"slices"
	"time"

	"github.com/fastygo/workdesk/domain"
)

// Query narrows a task list along several dimensions at once. Zero fields are ignored.
type Query struct {
	Statuses       []domain.TaskStatus
	Priorities     []domain.Priority
	AssignedUserID string
	CreatorUserID  string
	CategoryID     string
	Window         domain.DateFilter
	OverdueOnly    bool
}

// Filter applies q to tasks, resolving the window against now.
func Filter(tasks []domain.Task, q Query, now time.Time) []domain.Task {
	window := q.Window.Resolve(now)
	return Select(tasks, func(t *domain.Task) bool {
		if len(q.Statuses) > 0 && !slices.Contains(q.Statuses, t.Status) {
			return false
		}
		if len(q.Priorities) > 0 && !slices.Contains(q.Priorities, t.Priority) {
			return false
		}
		if q.AssignedUserID != "" && t.AssignedUserID != q.AssignedUserID {
			return false
		}
		if q.CreatorUserID != "" && t.CreatorUserID != q.CreatorUserID {
			return false
		}
		if q.CategoryID != "" && t.CategoryID != q.CategoryID {
			return false
		}
		if q.OverdueOnly && !IsOverdue(t, now) {
			return false
		}
		return window.Contains(t.DueDate)
	})
}
