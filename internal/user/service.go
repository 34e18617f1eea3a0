package user

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/followmee/crm/internal/auth"
)

type CreateInput struct {
	Email    string
	Password string
	Name     string
	LastName string
	Phone1   string
	Phone2   string
	Role     string
}

// UpdateInput carries optional field updates; nil means leave unchanged.
// Passwords are deliberately absent: they only change through the auth
// endpoints, where the current password or a reset token is verified.
type UpdateInput struct {
	Email    *string
	Name     *string
	LastName *string
	Phone1   *string
	Phone2   *string
	Role     *string
	IsActive *bool
}

type Service struct {
	log        *zap.Logger
	repository Repository
	hasher     auth.Hasher
}

func NewService(log *zap.Logger, repo Repository, hasher auth.Hasher) *Service {
	return &Service{log: log, repository: repo, hasher: hasher}
}

func (s *Service) List(ctx context.Context) ([]auth.Summary, error) {
	users, err := s.repository.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]auth.Summary, 0, len(users))
	for i := range users {
		summaries = append(summaries, users[i].Summary())
	}
	return summaries, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*auth.Summary, error) {
	user, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	summary := user.Summary()
	return &summary, nil
}

// Create hashes the password explicitly at this single mutation point;
// there is no save hook that re-hashes on the way to storage.
func (s *Service) Create(ctx context.Context, input CreateInput) (*auth.Summary, error) {
	if _, err := s.repository.GetByEmail(ctx, input.Email); err == nil {
		return nil, auth.ErrUserExists
	} else if !errors.Is(err, auth.ErrUserNotFound) {
		return nil, err
	}

	digest, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = "user"
	}

	user := &auth.User{
		Name:         input.Name,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: digest,
		Phone1:       input.Phone1,
		Phone2:       input.Phone2,
		Role:         role,
		IsActive:     true,
	}

	if err := s.repository.Create(ctx, user); err != nil {
		return nil, err
	}

	summary := user.Summary()
	return &summary, nil
}

func (s *Service) Update(ctx context.Context, id uint, input UpdateInput) (*auth.Summary, error) {
	user, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil && *input.Email != user.Email {
		if _, err := s.repository.GetByEmail(ctx, *input.Email); err == nil {
			return nil, auth.ErrUserExists
		} else if !errors.Is(err, auth.ErrUserNotFound) {
			return nil, err
		}
		user.Email = *input.Email
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Phone1 != nil {
		user.Phone1 = *input.Phone1
	}
	if input.Phone2 != nil {
		user.Phone2 = *input.Phone2
	}
	if input.Role != nil {
		user.Role = *input.Role
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.repository.Save(ctx, user); err != nil {
		return nil, err
	}

	summary := user.Summary()
	return &summary, nil
}

// Delete soft-deactivates the account; rows are never hard-deleted.
func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.repository.Deactivate(ctx, id)
}
