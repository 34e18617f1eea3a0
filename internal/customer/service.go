package customer

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreateInput struct {
	Name      string
	LastName  string
	Email     string
	Phone1    string
	Phone2    string
	Facebook  string
	Instagram string
	TikTok    string
	Line      string
	X         string
}

// UpdateInput carries optional field updates; nil means leave unchanged.
type UpdateInput struct {
	Name      *string
	LastName  *string
	Email     *string
	Phone1    *string
	Phone2    *string
	Facebook  *string
	Instagram *string
	TikTok    *string
	Line      *string
	X         *string
	IsActive  *bool
}

type Service struct {
	log        *zap.Logger
	repository Repository
}

func NewService(log *zap.Logger, repo Repository) *Service {
	return &Service{log: log, repository: repo}
}

func (s *Service) List(ctx context.Context, page Page) ([]Customer, int64, error) {
	return s.repository.ListActive(ctx, page)
}

func (s *Service) Search(ctx context.Context, query string) ([]Customer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Customer{}, nil
	}
	return s.repository.Search(ctx, query)
}

func (s *Service) Get(ctx context.Context, id string) (*Customer, error) {
	return s.repository.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, input CreateInput) (*Customer, error) {
	if _, err := s.repository.GetByEmail(ctx, input.Email); err == nil {
		return nil, ErrCustomerExists
	} else if !errors.Is(err, ErrCustomerNotFound) {
		return nil, err
	}

	customer := &Customer{
		ID:        uuid.NewString(),
		Name:      input.Name,
		LastName:  input.LastName,
		Email:     input.Email,
		Phone1:    input.Phone1,
		Phone2:    input.Phone2,
		Facebook:  input.Facebook,
		Instagram: input.Instagram,
		TikTok:    input.TikTok,
		Line:      input.Line,
		X:         input.X,
		IsActive:  true,
	}

	if err := s.repository.Create(ctx, customer); err != nil {
		return nil, err
	}

	return customer, nil
}

func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (*Customer, error) {
	customer, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil && *input.Email != customer.Email {
		if _, err := s.repository.GetByEmail(ctx, *input.Email); err == nil {
			return nil, ErrCustomerExists
		} else if !errors.Is(err, ErrCustomerNotFound) {
			return nil, err
		}
		customer.Email = *input.Email
	}

	applyString(&customer.Name, input.Name)
	applyString(&customer.LastName, input.LastName)
	applyString(&customer.Phone1, input.Phone1)
	applyString(&customer.Phone2, input.Phone2)
	applyString(&customer.Facebook, input.Facebook)
	applyString(&customer.Instagram, input.Instagram)
	applyString(&customer.TikTok, input.TikTok)
	applyString(&customer.Line, input.Line)
	applyString(&customer.X, input.X)
	if input.IsActive != nil {
		customer.IsActive = *input.IsActive
	}

	if err := s.repository.Save(ctx, customer); err != nil {
		return nil, err
	}

	return customer, nil
}

// Delete soft-deactivates; customer rows are never hard-deleted.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repository.Deactivate(ctx, id)
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
