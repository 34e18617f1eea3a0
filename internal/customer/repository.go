package customer

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrCustomerExists   = errors.New("customer already exists")
)

type Page struct {
	Number int
	Size   int
}

func (p Page) normalized() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 || p.Size > 100 {
		p.Size = 10
	}
	return p
}

type Repository interface {
	Create(ctx context.Context, customer *Customer) error
	GetByID(ctx context.Context, id string) (*Customer, error)
	GetByEmail(ctx context.Context, email string) (*Customer, error)
	ListActive(ctx context.Context, page Page) ([]Customer, int64, error)
	Search(ctx context.Context, query string) ([]Customer, error)
	Save(ctx context.Context, customer *Customer) error
	Deactivate(ctx context.Context, id string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, customer *Customer) error {
	err := r.db.WithContext(ctx).Create(customer).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrCustomerExists
	}
	return err
}

func (r *repository) GetByID(ctx context.Context, id string) (*Customer, error) {
	var customer Customer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return &customer, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*Customer, error) {
	var customer Customer
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return &customer, nil
}

func (r *repository) ListActive(ctx context.Context, page Page) ([]Customer, int64, error) {
	page = page.normalized()

	var total int64
	if err := r.db.WithContext(ctx).Model(&Customer{}).
		Where("is_active = ?", true).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var customers []Customer
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Offset((page.Number - 1) * page.Size).
		Limit(page.Size).
		Find(&customers).Error
	return customers, total, err
}

func (r *repository) Search(ctx context.Context, query string) ([]Customer, error) {
	pattern := fmt.Sprintf("%%%s%%", query)

	var customers []Customer
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("name ILIKE ? OR last_name ILIKE ? OR email ILIKE ?", pattern, pattern, pattern).
		Order("created_at DESC").
		Limit(50).
		Find(&customers).Error
	return customers, err
}

func (r *repository) Save(ctx context.Context, customer *Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}

func (r *repository) Deactivate(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Model(&Customer{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCustomerNotFound
	}
	return nil
}
