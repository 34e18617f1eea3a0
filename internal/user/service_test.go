package user

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/followmee/crm/internal/auth"
)

type mockRepository struct {
	mu     sync.RWMutex
	users  map[uint]*auth.User
	nextID uint
}

func newMockRepository() *mockRepository {
	return &mockRepository{users: make(map[uint]*auth.User), nextID: 1}
}

func (r *mockRepository) ListActive(context.Context) ([]auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var active []auth.User
	for _, user := range r.users {
		if user.IsActive {
			active = append(active, *user)
		}
	}
	return active, nil
}

func (r *mockRepository) GetByID(_ context.Context, id uint) (*auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[id]
	if !exists {
		return nil, auth.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *mockRepository) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (r *mockRepository) Create(_ context.Context, user *auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return auth.ErrUserExists
		}
	}

	user.ID = r.nextID
	r.nextID++
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *mockRepository) Save(_ context.Context, user *auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.ID]; !exists {
		return auth.ErrUserNotFound
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *mockRepository) Deactivate(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.users[id]
	if !exists {
		return auth.ErrUserNotFound
	}
	user.IsActive = false
	return nil
}

func newTestService(t *testing.T) (*Service, *mockRepository) {
	logger, err := zap.NewDevelopment()
	require.NoError(t, err)

	repo := newMockRepository()
	return NewService(logger, repo, auth.NewPasswordHasher()), repo
}

func strPtr(s string) *string { return &s }

func TestService_Create(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	summary, err := svc.Create(ctx, CreateInput{
		Email:    "ana@example.com",
		Password: "testpass123",
		Name:     "Ana",
		Role:     "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, "admin", summary.Role)
	assert.True(t, summary.IsActive)

	// The stored hash verifies against the plaintext and is not the
	// plaintext itself
	stored, err := repo.GetByID(ctx, summary.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "testpass123", stored.PasswordHash)
	assert.True(t, auth.NewPasswordHasher().Verify("testpass123", stored.PasswordHash))

	// Role defaults to user
	second, err := svc.Create(ctx, CreateInput{
		Email:    "liam@example.com",
		Password: "testpass123",
		Name:     "Liam",
	})
	require.NoError(t, err)
	assert.Equal(t, "user", second.Role)

	// Duplicate email
	_, err = svc.Create(ctx, CreateInput{
		Email:    "ana@example.com",
		Password: "testpass123",
		Name:     "Ana",
	})
	assert.ErrorIs(t, err, auth.ErrUserExists)
}

func TestService_Update(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateInput{Email: "ana@example.com", Password: "testpass123", Name: "Ana"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Email: "liam@example.com", Password: "testpass123", Name: "Liam"})
	require.NoError(t, err)

	before, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, first.ID, UpdateInput{
		Name: strPtr("Anabel"),
		Role: strPtr("admin"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Anabel", updated.Name)
	assert.Equal(t, "admin", updated.Role)

	// Updates never touch the password hash
	after, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, before.PasswordHash, after.PasswordHash)

	// Email conflicts are rejected
	_, err = svc.Update(ctx, first.ID, UpdateInput{Email: strPtr("liam@example.com")})
	assert.ErrorIs(t, err, auth.ErrUserExists)

	_, err = svc.Update(ctx, 999, UpdateInput{Name: strPtr("X")})
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}

func TestService_Delete(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	summary, err := svc.Create(ctx, CreateInput{Email: "ana@example.com", Password: "testpass123", Name: "Ana"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, summary.ID))

	stored, err := repo.GetByID(ctx, summary.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	listed, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)

	assert.ErrorIs(t, svc.Delete(ctx, 999), auth.ErrUserNotFound)
}

func TestService_List_ExcludesSensitiveFields(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Email: "ana@example.com", Password: "testpass123", Name: "Ana"})
	require.NoError(t, err)

	listed, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "ana@example.com", listed[0].Email)
	// Summary has no hash field at all; spot-check the shape
	assert.NotZero(t, listed[0].ID)
}
