// Package user exposes administrative management of user accounts,
// separate from the self-service flows in the auth package.
package user

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/followmee/crm/internal/auth"
)

type Repository interface {
	ListActive(ctx context.Context) ([]auth.User, error)
	GetByID(ctx context.Context, id uint) (*auth.User, error)
	GetByEmail(ctx context.Context, email string) (*auth.User, error)
	Create(ctx context.Context, user *auth.User) error
	Save(ctx context.Context, user *auth.User) error
	Deactivate(ctx context.Context, id uint) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListActive(ctx context.Context) ([]auth.User, error) {
	var users []auth.User
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&users).Error
	return users, err
}

func (r *repository) GetByID(ctx context.Context, id uint) (*auth.User, error) {
	var user auth.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	var user auth.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) Create(ctx context.Context, user *auth.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return auth.ErrUserExists
	}
	return err
}

func (r *repository) Save(ctx context.Context, user *auth.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *repository) Deactivate(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&auth.User{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}
