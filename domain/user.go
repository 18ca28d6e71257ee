package domain

import "time"

// User represents an authenticated identity in the platform.
type User struct {
	ID        string            `json:"id"`
	Email     string            `json:"email,omitempty"`
	Name      string            `json:"name,omitempty"`
	Role      string            `json:"role"`
	Status    string            `json:"status"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

func (u *User) IsActive() bool {
	return u != nil && u.Status == "active"
}

// CanDecideLeave reports whether the user may approve or reject leave requests.
func (u *User) CanDecideLeave() bool {
	return u != nil && (u.Role == RoleManager || u.Role == RoleAdmin)
}

// Actor is the authenticated caller of an operation, as forwarded by the auth middleware.
type Actor struct {
	UserID string
	Role   string
}

func (a Actor) IsManager() bool {
	return a.Role == RoleManager || a.Role == RoleAdmin
}
