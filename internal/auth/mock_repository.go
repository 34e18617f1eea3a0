package auth

import (
	"context"
	"sync"
	"time"
)

type mockRepository struct {
	mu       sync.RWMutex
	users    map[uint]*User
	byEmail  map[string]uint
	sessions map[string]*Session
	nextID   uint
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:    make(map[uint]*User),
		byEmail:  make(map[string]uint),
		sessions: make(map[string]*Session),
		nextID:   1,
	}
}

func (r *mockRepository) CreateUser(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return ErrUserExists
	}

	user.ID = r.nextID
	r.nextID++

	clone := *user
	r.users[user.ID] = &clone
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *mockRepository) GetUserByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.byEmail[email]
	if !exists {
		return nil, ErrUserNotFound
	}
	clone := *r.users[id]
	return &clone, nil
}

func (r *mockRepository) GetUserByID(_ context.Context, id uint) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[id]
	if !exists {
		return nil, ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *mockRepository) GetUserByResetToken(_ context.Context, token string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.ResetToken != nil && *user.ResetToken == token {
			clone := *user
			return &clone, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *mockRepository) SaveUser(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.users[user.ID]
	if !exists {
		return ErrUserNotFound
	}

	delete(r.byEmail, stored.Email)
	clone := *user
	r.users[user.ID] = &clone
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *mockRepository) UpdateLoginState(_ context.Context, userID uint, apply func(*User)) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.users[userID]
	if !exists {
		return nil, ErrUserNotFound
	}

	apply(user)
	clone := *user
	return &clone, nil
}

func (r *mockRepository) CreateSession(_ context.Context, session *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session.ID = r.nextID
	r.nextID++

	clone := *session
	r.sessions[session.RefreshToken] = &clone
	return nil
}

func (r *mockRepository) GetActiveSession(_ context.Context, refreshToken string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, exists := r.sessions[refreshToken]
	if !exists || !session.IsActive {
		return nil, ErrSessionNotFound
	}
	clone := *session
	return &clone, nil
}

func (r *mockRepository) SaveSession(_ context.Context, session *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.RefreshToken]; !exists {
		return ErrSessionNotFound
	}
	clone := *session
	r.sessions[session.RefreshToken] = &clone
	return nil
}

func (r *mockRepository) RevokeUserSessions(_ context.Context, userID uint, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, session := range r.sessions {
		if session.UserID == userID {
			session.Revoke(now)
		}
	}
	return nil
}

func (r *mockRepository) activeSessionCount(userID uint) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, session := range r.sessions {
		if session.UserID == userID && session.IsActive {
			count++
		}
	}
	return count
}
