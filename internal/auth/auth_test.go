package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/followmee/crm/internal/audit"
	"github.com/followmee/crm/internal/config"
)

func newTestLogger(t *testing.T) *zap.Logger {
	logger, err := zap.NewDevelopment()
	assert.NoError(t, err)
	return logger
}

func newTestConfig() *config.AuthConfig {
	return &config.AuthConfig{
		JWTSecret:            "test-secret-key",
		AccessTokenDuration:  15 * time.Minute,
		RefreshTokenDuration: 24 * time.Hour,
		ResetTokenDuration:   time.Hour,
		LockoutThreshold:     5,
		AttemptWindow:        15 * time.Minute,
		LockoutDuration:      15 * time.Minute,
		LoginRateLimit:       5,
		LoginRateWindow:      15 * time.Minute,
	}
}

// countingHasher wraps the real bcrypt hasher so tests can assert how
// often hashing work actually happened.
type countingHasher struct {
	inner       *PasswordHasher
	mu          sync.Mutex
	hashCalls   int
	verifyCalls int
}

func newCountingHasher() *countingHasher {
	return &countingHasher{inner: NewPasswordHasher()}
}

func (h *countingHasher) Hash(password string) (string, error) {
	h.mu.Lock()
	h.hashCalls++
	h.mu.Unlock()
	return h.inner.Hash(password)
}

func (h *countingHasher) Verify(password, digest string) bool {
	h.mu.Lock()
	h.verifyCalls++
	h.mu.Unlock()
	return h.inner.Verify(password, digest)
}

func (h *countingHasher) calls() (hash, verify int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hashCalls, h.verifyCalls
}

// recordingAudit captures events in memory for assertions.
type recordingAudit struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recordingAudit) Record(_ context.Context, event audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingAudit) Recent(context.Context, int) ([]audit.Entry, error) {
	return nil, nil
}

func (r *recordingAudit) ForUser(context.Context, uint, int) ([]audit.Entry, error) {
	return nil, nil
}

func (r *recordingAudit) byAction(action string) []audit.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []audit.Event
	for _, event := range r.events {
		if event.Action == action {
			matched = append(matched, event)
		}
	}
	return matched
}

type fakeMailer struct {
	mu     sync.Mutex
	emails []string
	tokens []string
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, email, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emails = append(m.emails, email)
	m.tokens = append(m.tokens, token)
	return nil
}

func (m *fakeMailer) lastToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.tokens) == 0 {
		return ""
	}
	return m.tokens[len(m.tokens)-1]
}

type testEnv struct {
	service *Service
	repo    *mockRepository
	hasher  *countingHasher
	audit   *recordingAudit
	mailer  *fakeMailer
	tokens  *TokenIssuer
	clock   time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	cfg := newTestConfig()
	env := &testEnv{
		repo:   newMockRepository(),
		hasher: newCountingHasher(),
		audit:  &recordingAudit{},
		mailer: &fakeMailer{},
		tokens: NewTokenIssuer(cfg),
		clock:  time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}

	env.service = NewService(
		cfg,
		newTestLogger(t),
		env.repo,
		env.hasher,
		env.tokens,
		NewLockoutPolicy(cfg),
		env.audit,
		env.mailer,
	)
	// Service and token issuer must agree on the clock, or expiry
	// checks would run against wall time while issuance uses the
	// pinned one.
	env.service.now = func() time.Time { return env.clock }
	env.tokens.now = func() time.Time { return env.clock }
	return env
}

func (e *testEnv) advance(d time.Duration) {
	e.clock = e.clock.Add(d)
}

func (e *testEnv) registerUser(t *testing.T, email, password string) *User {
	t.Helper()

	user, _, err := e.service.Register(context.Background(), RegisterInput{
		Email:    email,
		Password: password,
		Name:     "Test",
		LastName: "User",
	}, RequestMeta{IPAddress: "10.0.0.1", UserAgent: "test-agent"})
	assert.NoError(t, err)
	return user
}
