package domain

import (
	"strings"
	"time"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// TaskAction is a user-triggered status change request.
type TaskAction string

const (
	TaskActionProgress TaskAction = "progress"
	TaskActionComplete TaskAction = "complete"
	TaskActionReopen   TaskAction = "reopen"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// RepeatType describes the recurrence cadence. It is informational only.
type RepeatType string

const (
	RepeatNone    RepeatType = "none"
	RepeatDaily   RepeatType = "daily"
	RepeatWeekly  RepeatType = "weekly"
	RepeatMonthly RepeatType = "monthly"
	RepeatYearly  RepeatType = "yearly"
)

// Task represents an assignable activity item with a due date.
type Task struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	Description    string        `json:"description,omitempty"`
	Status         TaskStatus    `json:"status"`
	Priority       Priority      `json:"priority"`
	RepeatType     RepeatType    `json:"repeat_type"`
	DueDate        time.Time     `json:"due_date"`
	CompletionDate *time.Time    `json:"completion_date,omitempty"`
	AssignedUserID string        `json:"assigned_user_id"`
	CreatorUserID  string        `json:"creator_user_id"`
	CategoryID     string        `json:"category_id,omitempty"`
	Comments       []TaskComment `json:"comments,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// TaskComment is an audit entry recorded with every status change.
type TaskComment struct {
	ID        string     `json:"id"`
	TaskID    string     `json:"task_id"`
	UserID    string     `json:"user_id"`
	Body      string     `json:"body"`
	From      TaskStatus `json:"from,omitempty"`
	Status    TaskStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

// AccessibleBy reports whether a may read or change the task: its assignee, its creator
// or a manager.
func (t *Task) AccessibleBy(a Actor) bool {
	if t == nil || a.UserID == "" {
		return false
	}
	return a.IsManager() || t.AssignedUserID == a.UserID || t.CreatorUserID == a.UserID
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == TaskStatusCompleted
}

// Validate rejects records the statistics and transition code cannot reason about.
func (t *Task) Validate() error {
	if t == nil {
		return ErrInvalidPayload
	}
	if strings.TrimSpace(t.Title) == "" {
		return NewError(ErrCodeInvalid, "task title is required")
	}
	if t.DueDate.IsZero() {
		return NewError(ErrCodeInvalid, "task due date is required")
	}
	if !t.Status.Valid() {
		return NewError(ErrCodeInvalid, "unknown task status "+string(t.Status))
	}
	if !t.Priority.Valid() {
		return NewError(ErrCodeInvalid, "unknown task priority "+string(t.Priority))
	}
	if !t.RepeatType.Valid() {
		return NewError(ErrCodeInvalid, "unknown repeat type "+string(t.RepeatType))
	}
	if (t.CompletionDate != nil) != (t.Status == TaskStatusCompleted) {
		return NewError(ErrCodeInvalid, "completion date must be set only for completed tasks")
	}
	return nil
}

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

func (a TaskAction) Valid() bool {
	switch a {
	case TaskActionProgress, TaskActionComplete, TaskActionReopen:
		return true
	}
	return false
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func (r RepeatType) Valid() bool {
	switch r {
	case RepeatNone, RepeatDaily, RepeatWeekly, RepeatMonthly, RepeatYearly:
		return true
	}
	return false
}

// Category groups tasks for dashboard roll-ups.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
