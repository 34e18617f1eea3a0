package auth

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/followmee/crm/internal/audit"
	"github.com/followmee/crm/internal/config"
	"github.com/followmee/crm/internal/mail"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDeactivated = errors.New("account is deactivated")
)

// AccountLockedError carries the unlock time so handlers can emit a
// Retry-After header.
type AccountLockedError struct {
	Until time.Time
}

func (e AccountLockedError) Error() string {
	return "account temporarily locked"
}

// RequestMeta is the per-request client context stamped onto sessions and
// audit entries.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Hasher is the password-hashing boundary. It is an interface so tests
// can observe whether verification was attempted at all.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	LastName string
	Phone1   string
}

// Service orchestrates credential storage, the lockout policy, token
// issuance, session tracking and the audit trail.
type Service struct {
	config     *config.AuthConfig
	log        *zap.Logger
	repository Repository
	hasher     Hasher
	tokens     *TokenIssuer
	lockout    *LockoutPolicy
	audit      audit.Recorder
	mailer     mail.Mailer
	now        func() time.Time
}

func NewService(
	cfg *config.AuthConfig,
	log *zap.Logger,
	repo Repository,
	hasher Hasher,
	tokens *TokenIssuer,
	lockout *LockoutPolicy,
	recorder audit.Recorder,
	mailer mail.Mailer,
) *Service {
	return &Service{
		config:     cfg,
		log:        log,
		repository: repo,
		hasher:     hasher,
		tokens:     tokens,
		lockout:    lockout,
		audit:      recorder,
		mailer:     mailer,
		now:        time.Now,
	}
}

func (s *Service) Register(ctx context.Context, input RegisterInput, meta RequestMeta) (*User, *TokenPair, error) {
	if _, err := s.repository.GetUserByEmail(ctx, input.Email); err == nil {
		return nil, nil, ErrUserExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, nil, err
	}

	digest, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, nil, err
	}

	user := &User{
		Name:         input.Name,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: digest,
		Phone1:       input.Phone1,
		Role:         "user",
		IsActive:     true,
	}

	if err := s.repository.CreateUser(ctx, user); err != nil {
		return nil, nil, err
	}

	pair, err := s.issueTokens(ctx, user, meta)
	if err != nil {
		return nil, nil, err
	}

	s.audit.Record(ctx, audit.Event{
		UserID:    &user.ID,
		Action:    audit.ActionRegister,
		Status:    audit.StatusSuccess,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	})

	return user, pair, nil
}

// Login validates credentials and mints a token pair. The lockout check
// runs before password verification so a locked account never costs a
// hash computation and every locked attempt gets the same rejection.
func (s *Service) Login(ctx context.Context, email, password string, meta RequestMeta) (*User, *TokenPair, error) {
	now := s.now()

	user, err := s.repository.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Same failure as a wrong password so error text cannot be
			// used to enumerate emails. Burn a hash to keep the two
			// paths comparable in time.
			_, _ = s.hasher.Hash(password)
			s.recordLoginFailure(ctx, nil, meta, "unknown email")
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if s.lockout.IsLocked(user, now) {
		s.recordLoginFailure(ctx, &user.ID, meta, "account locked")
		return nil, nil, AccountLockedError{Until: *user.LockedUntil}
	}

	if !user.IsActive {
		s.recordLoginFailure(ctx, &user.ID, meta, "account deactivated")
		return nil, nil, ErrAccountDeactivated
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		if _, err := s.repository.UpdateLoginState(ctx, user.ID, func(u *User) {
			s.lockout.RegisterFailure(u, now)
		}); err != nil {
			s.log.Error("failed to record failed login attempt",
				zap.Uint("user_id", user.ID), zap.Error(err))
		}
		s.recordLoginFailure(ctx, &user.ID, meta, "wrong password")
		return nil, nil, ErrInvalidCredentials
	}

	user, err = s.repository.UpdateLoginState(ctx, user.ID, func(u *User) {
		s.lockout.RegisterSuccess(u, now)
	})
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.issueTokens(ctx, user, meta)
	if err != nil {
		return nil, nil, err
	}

	s.audit.Record(ctx, audit.Event{
		UserID:    &user.ID,
		Action:    audit.ActionLogin,
		Status:    audit.StatusSuccess,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	})

	return user, pair, nil
}

// Refresh rotates the presented refresh token: the old session is revoked
// and a new one created, limiting the replay window of a leaked token.
func (s *Service) Refresh(ctx context.Context, refreshToken string, meta RequestMeta) (*User, *TokenPair, error) {
	now := s.now()

	session, err := s.repository.GetActiveSession(ctx, refreshToken)
	if err != nil {
		return nil, nil, err
	}

	if session.Expired(now) {
		session.Revoke(now)
		if err := s.repository.SaveSession(ctx, session); err != nil {
			s.log.Error("failed to revoke expired session", zap.Error(err))
		}
		return nil, nil, ErrSessionNotFound
	}

	user, err := s.repository.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, nil, err
	}
	if !user.IsActive {
		return nil, nil, ErrAccountDeactivated
	}

	session.Revoke(now)
	if err := s.repository.SaveSession(ctx, session); err != nil {
		return nil, nil, err
	}

	pair, err := s.issueTokens(ctx, user, meta)
	if err != nil {
		return nil, nil, err
	}

	s.audit.Record(ctx, audit.Event{
		UserID:    &user.ID,
		Action:    audit.ActionRefresh,
		Status:    audit.StatusSuccess,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	})

	return user, pair, nil
}

// Logout revokes the session behind the refresh token, if any. It never
// fails the client-visible response: revocation or audit errors are
// logged and swallowed.
func (s *Service) Logout(ctx context.Context, refreshToken string, userID *uint, meta RequestMeta) {
	status := audit.StatusSuccess

	if refreshToken != "" {
		session, err := s.repository.GetActiveSession(ctx, refreshToken)
		switch {
		case err == nil:
			session.Revoke(s.now())
			if err := s.repository.SaveSession(ctx, session); err != nil {
				s.log.Error("failed to revoke session on logout", zap.Error(err))
				status = audit.StatusFailure
			}
		case errors.Is(err, ErrSessionNotFound):
			// Already revoked or expired; logout stays idempotent.
		default:
			s.log.Error("failed to look up session on logout", zap.Error(err))
			status = audit.StatusFailure
		}
	}

	s.audit.Record(ctx, audit.Event{
		UserID:    userID,
		Action:    audit.ActionLogout,
		Status:    status,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	})
}

func (s *Service) CurrentUser(ctx context.Context, userID uint) (*User, error) {
	return s.repository.GetUserByID(ctx, userID)
}

// UpdatePassword re-hashes after verifying the current password, then
// revokes every active session so stolen refresh tokens die with the old
// password.
func (s *Service) UpdatePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	user, err := s.repository.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(currentPassword, user.PasswordHash) {
		s.audit.Record(ctx, audit.Event{
			UserID: &user.ID,
			Action: audit.ActionPasswordChange,
			Status: audit.StatusFailure,
		})
		return ErrInvalidCredentials
	}

	digest, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = digest
	user.ResetToken = nil
	user.ResetTokenExpiry = nil
	if err := s.repository.SaveUser(ctx, user); err != nil {
		return err
	}

	if err := s.repository.RevokeUserSessions(ctx, user.ID, s.now()); err != nil {
		s.log.Error("failed to revoke sessions after password change",
			zap.Uint("user_id", user.ID), zap.Error(err))
	}

	s.audit.Record(ctx, audit.Event{
		UserID: &user.ID,
		Action: audit.ActionPasswordChange,
		Status: audit.StatusSuccess,
	})

	return nil
}

// RequestPasswordReset always reports success to the caller. Whether the
// email matched a user is only visible in the audit trail.
func (s *Service) RequestPasswordReset(ctx context.Context, email string, meta RequestMeta) error {
	now := s.now()

	user, err := s.repository.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.audit.Record(ctx, audit.Event{
				Action:    audit.ActionResetRequest,
				Status:    audit.StatusFailure,
				IPAddress: meta.IPAddress,
				UserAgent: meta.UserAgent,
				Details:   map[string]any{"reason": "unknown email"},
			})
			return nil
		}
		return err
	}

	token, err := s.tokens.IssueResetToken(user, now)
	if err != nil {
		return err
	}

	expiry := now.Add(s.config.ResetTokenDuration)
	user.ResetToken = &token
	user.ResetTokenExpiry = &expiry
	if err := s.repository.SaveUser(ctx, user); err != nil {
		return err
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, token); err != nil {
		// The generic response already went out either way; surfacing
		// the failure would break the anti-enumeration contract.
		s.log.Error("failed to dispatch password reset mail",
			zap.Uint("user_id", user.ID), zap.Error(err))
	}

	s.audit.Record(ctx, audit.Event{
		UserID:    &user.ID,
		Action:    audit.ActionResetRequest,
		Status:    audit.StatusSuccess,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	})

	return nil
}

// ResetPassword consumes a reset token. The stored token value is the
// lookup key; its signature is then checked against the user's current
// hash, so a password change since issuance invalidates it.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string, meta RequestMeta) error {
	user, err := s.repository.GetUserByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrTokenInvalid
		}
		return err
	}

	if err := s.tokens.VerifyResetToken(token, user); err != nil {
		if errors.Is(err, ErrTokenExpired) {
			user.ResetToken = nil
			user.ResetTokenExpiry = nil
			if saveErr := s.repository.SaveUser(ctx, user); saveErr != nil {
				s.log.Error("failed to clear expired reset token", zap.Error(saveErr))
			}
		}
		s.audit.Record(ctx, audit.Event{
			UserID:    &user.ID,
			Action:    audit.ActionPasswordReset,
			Status:    audit.StatusFailure,
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
		})
		return err
	}

	digest, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = digest
	user.ResetToken = nil
	user.ResetTokenExpiry = nil
	if err := s.repository.SaveUser(ctx, user); err != nil {
		return err
	}

	if err := s.repository.RevokeUserSessions(ctx, user.ID, s.now()); err != nil {
		s.log.Error("failed to revoke sessions after password reset",
			zap.Uint("user_id", user.ID), zap.Error(err))
	}

	s.audit.Record(ctx, audit.Event{
		UserID:    &user.ID,
		Action:    audit.ActionPasswordReset,
		Status:    audit.StatusSuccess,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	})

	return nil
}

func (s *Service) issueTokens(ctx context.Context, user *User, meta RequestMeta) (*TokenPair, error) {
	now := s.now()

	access, err := s.tokens.IssueAccessToken(user, now)
	if err != nil {
		return nil, err
	}

	refresh := s.tokens.NewRefreshToken()
	session := &Session{
		UserID:       user.ID,
		RefreshToken: refresh,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
		ExpiresAt:    now.Add(s.config.RefreshTokenDuration),
		IsActive:     true,
	}
	if err := s.repository.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

func (s *Service) recordLoginFailure(ctx context.Context, userID *uint, meta RequestMeta, reason string) {
	s.audit.Record(ctx, audit.Event{
		UserID:    userID,
		Action:    audit.ActionLogin,
		Status:    audit.StatusFailure,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		Details:   map[string]any{"reason": reason},
	})
}
