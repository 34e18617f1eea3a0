package auth

import (
	"time"

	"github.com/followmee/crm/internal/config"
)

// LockoutPolicy drives the per-user failed-login state machine: attempts
// accumulate inside a sliding window, and reaching the threshold locks
// the account for a fixed duration. Unlocking is purely time-based.
type LockoutPolicy struct {
	threshold int
	window    time.Duration
	duration  time.Duration
}

func NewLockoutPolicy(cfg *config.AuthConfig) *LockoutPolicy {
	return &LockoutPolicy{
		threshold: cfg.LockoutThreshold,
		window:    cfg.AttemptWindow,
		duration:  cfg.LockoutDuration,
	}
}

func (p *LockoutPolicy) IsLocked(user *User, now time.Time) bool {
	return user.LockedUntil != nil && now.Before(*user.LockedUntil)
}

// RegisterFailure records a failed attempt on the user. An attempt older
// than the window restarts the counter at 1; otherwise it increments.
// Hitting the threshold stamps LockedUntil.
func (p *LockoutPolicy) RegisterFailure(user *User, now time.Time) {
	if user.LastFailedAt == nil || now.Sub(*user.LastFailedAt) > p.window {
		user.FailedLoginCount = 1
	} else {
		user.FailedLoginCount++
	}
	user.LastFailedAt = &now

	if user.FailedLoginCount >= p.threshold {
		until := now.Add(p.duration)
		user.LockedUntil = &until
	}
}

// RegisterSuccess clears all failure bookkeeping and stamps the login time.
func (p *LockoutPolicy) RegisterSuccess(user *User, now time.Time) {
	user.FailedLoginCount = 0
	user.LastFailedAt = nil
	user.LockedUntil = nil
	user.LastLoginAt = &now
}
