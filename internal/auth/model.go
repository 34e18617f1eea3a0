package auth

import (
	"time"
)

type User struct {
	ID               uint       `gorm:"primaryKey"`
	Name             string     `gorm:"size:50;not null"`
	LastName         string     `gorm:"size:50"`
	Email            string     `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash     string     `gorm:"size:255;not null"`
	Phone1           string     `gorm:"size:20"`
	Phone2           string     `gorm:"size:20"`
	Role             string     `gorm:"size:20;not null;default:user"`
	IsActive         bool       `gorm:"not null;default:true"`
	FailedLoginCount int        `gorm:"not null;default:0"`
	LastFailedAt     *time.Time
	LockedUntil      *time.Time
	LastLoginAt      *time.Time
	ResetToken       *string `gorm:"size:512;index"`
	ResetTokenExpiry *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (User) TableName() string {
	return "users"
}

// Summary is the external-facing representation of a user. The password
// hash and lockout bookkeeping never leave the package through it.
type Summary struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	LastName    string     `json:"lastName,omitempty"`
	Email       string     `json:"email"`
	Phone1      string     `json:"phone1,omitempty"`
	Phone2      string     `json:"phone2,omitempty"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (u *User) Summary() Summary {
	return Summary{
		ID:          u.ID,
		Name:        u.Name,
		LastName:    u.LastName,
		Email:       u.Email,
		Phone1:      u.Phone1,
		Phone2:      u.Phone2,
		Role:        u.Role,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// Session is a persisted refresh-token record, one per active login.
type Session struct {
	ID           uint      `gorm:"primaryKey"`
	UserID       uint      `gorm:"index;not null"`
	User         User      `gorm:"constraint:OnDelete:CASCADE"`
	RefreshToken string    `gorm:"size:255;uniqueIndex;not null"`
	IPAddress    string    `gorm:"size:45"`
	UserAgent    string    `gorm:"type:text"`
	ExpiresAt    time.Time `gorm:"not null"`
	IsActive     bool      `gorm:"not null;default:true"`
	RevokedAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Session) TableName() string {
	return "user_sessions"
}

func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Revoke marks the session inactive. Revocation is monotonic: a revoked
// session never becomes active again.
func (s *Session) Revoke(now time.Time) {
	if s.RevokedAt != nil {
		return
	}
	s.IsActive = false
	s.RevokedAt = &now
}
