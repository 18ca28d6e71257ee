// Package transition decides whether a task or leave status change is legal and computes the
// resulting record. It performs no I/O and never reads the system clock.
package transition

import (
	"strings"
	"time"

	"github.com/fastygo/workdesk/domain"
)

var taskTable = map[domain.TaskStatus]map[domain.TaskAction]domain.TaskStatus{
	domain.TaskStatusPending: {
		domain.TaskActionProgress: domain.TaskStatusInProgress,
		domain.TaskActionComplete: domain.TaskStatusCompleted,
	},
	domain.TaskStatusInProgress: {
		domain.TaskActionComplete: domain.TaskStatusCompleted,
	},
	domain.TaskStatusCompleted: {
		domain.TaskActionReopen: domain.TaskStatusPending,
	},
}

// actionOrder keeps Allowed deterministic.
var actionOrder = []domain.TaskAction{
	domain.TaskActionProgress,
	domain.TaskActionComplete,
	domain.TaskActionReopen,
}

// Next returns the status the action leads to from the given status.
func Next(status domain.TaskStatus, action domain.TaskAction) (domain.TaskStatus, bool) {
	next, ok := taskTable[status][action]
	return next, ok
}

// Allowed lists the actions legal from status.
func Allowed(status domain.TaskStatus) []domain.TaskAction {
	actions := make([]domain.TaskAction, 0, 2)
	for _, a := range actionOrder {
		if _, ok := taskTable[status][a]; ok {
			actions = append(actions, a)
		}
	}
	return actions
}

// ApplyTask moves the task through action and records comment as an audit entry.
// The returned task is a copy; the argument is left untouched on success and on failure.
func ApplyTask(task domain.Task, action domain.TaskAction, comment, actorID string, now time.Time) (domain.Task, error) {
	next, ok := Next(task.Status, action)
	if !ok {
		return task, domain.ErrInvalidTransition
	}
	body := strings.TrimSpace(comment)
	if body == "" {
		return task, domain.ErrEmptyComment
	}

	updated := task
	updated.Status = next
	switch next {
	case domain.TaskStatusCompleted:
		stamp := now
		updated.CompletionDate = &stamp
	default:
		updated.CompletionDate = nil
	}
	updated.UpdatedAt = now

	comments := make([]domain.TaskComment, len(task.Comments), len(task.Comments)+1)
	copy(comments, task.Comments)
	updated.Comments = append(comments, domain.TaskComment{
		TaskID:    task.ID,
		UserID:    actorID,
		Body:      body,
		From:      task.Status,
		Status:    next,
		CreatedAt: now,
	})
	return updated, nil
}
