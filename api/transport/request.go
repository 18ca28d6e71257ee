package transport

type ProfileUpdateRequest struct {
	Email string            `json:"email"`
	Name  string            `json:"name"`
	Meta  map[string]string `json:"metadata"`
}

// TaskRequest is used for create and update. Nil fields are left unchanged on update.
type TaskRequest struct {
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	Priority       *string `json:"priority"`
	RepeatType     *string `json:"repeat_type"`
	DueDate        *string `json:"due_date"`
	AssignedUserID *string `json:"assigned_user_id"`
	CategoryID     *string `json:"category_id"`
}

type TransitionRequest struct {
	Action  string `json:"action"`
	Comment string `json:"comment"`
}

// LeaveApplyRequest dates are YYYY-MM-DD. Units overrides the unit of single days, keyed by date.
type LeaveApplyRequest struct {
	LeaveTypeID string            `json:"leave_type_id"`
	From        string            `json:"from"`
	To          string            `json:"to"`
	Units       map[string]string `json:"units"`
	Reason      string            `json:"reason"`
}

// LeaveDecisionRequest either carries per-day decisions or a single decision for every day in All.
type LeaveDecisionRequest struct {
	Decisions map[string]string `json:"decisions"`
	All       string            `json:"all"`
	Remarks   string            `json:"remarks"`
}

type AuthLoginRequest struct {
	UserID string `json:"user_id"`
	TTL    int    `json:"ttl_seconds"`
}

// RefreshRequest names a session. Logout reads only SessionID.
type RefreshRequest struct {
	SessionID string `json:"session_id"`
	TTL       int    `json:"ttl_seconds"`
}
