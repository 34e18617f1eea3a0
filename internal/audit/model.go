package audit

import "time"

const (
	StatusSuccess = "SUCCESS"
	StatusFailure = "FAILURE"
)

// Auth-relevant actions recorded in the trail.
const (
	ActionRegister       = "register"
	ActionLogin          = "login"
	ActionLogout         = "logout"
	ActionRefresh        = "token_refresh"
	ActionPasswordChange = "password_change"
	ActionPasswordReset  = "password_reset"
	ActionResetRequest   = "password_reset_request"
)

// Entry is an append-only audit record. The application never mutates or
// deletes rows; UserID is nil when the identity is unknown, e.g. a failed
// login against a nonexistent email.
type Entry struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	UserID    *uint  `gorm:"index" json:"userId,omitempty"`
	Action    string `gorm:"size:50;not null" json:"action"`
	Status    string `gorm:"size:20;not null" json:"status"`
	IPAddress string `gorm:"size:45" json:"ipAddress,omitempty"`
	UserAgent string `gorm:"type:text" json:"userAgent,omitempty"`
	// Details holds free-form JSON serialized by the recorder.
	Details   *string   `gorm:"type:text" json:"details,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Entry) TableName() string {
	return "user_audit_logs"
}
