package buffer

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Entities that can be written through the buffer.
const (
	EntityProfile = "profile"
	EntityTask    = "task"
	EntityLeave   = "leave"
)

// Priorities order the replay. Lower values drain first.
const (
	PriorityTransition = 1
	PriorityLeave      = 2
	PriorityTask       = 3
	PriorityProfile    = 4
)

// Item is a write that could not reach Postgres. Timestamp fixes its place in the replay
// order for its whole life; retries do not move it.
type Item struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Entity    string          `json:"entity"`
	EntityID  string          `json:"entity_id,omitempty"`
	Operation string          `json:"operation"`
	Data      json.RawMessage `json:"data"`
	Priority  int             `json:"priority"`
	Retries   int             `json:"retries"`
	LastError string          `json:"last_error,omitempty"`
	Timestamp time.Time       `json:"timestamp"`

	bucketKey []byte
}

// Subject identifies the record the item writes, e.g. "task:42". Items without an entity id
// have no subject.
func (i Item) Subject() string {
	if i.EntityID == "" {
		return ""
	}
	return i.Entity + ":" + i.EntityID
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Priority < PriorityTransition || i.Priority > PriorityProfile {
		i.Priority = PriorityTask
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}
