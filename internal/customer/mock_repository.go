package customer

import (
	"context"
	"sort"
	"strings"
	"sync"
)

type mockRepository struct {
	mu        sync.RWMutex
	customers map[string]*Customer
}

func newMockRepository() *mockRepository {
	return &mockRepository{customers: make(map[string]*Customer)}
}

func (r *mockRepository) Create(_ context.Context, customer *Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.customers {
		if existing.Email == customer.Email {
			return ErrCustomerExists
		}
	}

	clone := *customer
	r.customers[customer.ID] = &clone
	return nil
}

func (r *mockRepository) GetByID(_ context.Context, id string) (*Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	customer, exists := r.customers[id]
	if !exists {
		return nil, ErrCustomerNotFound
	}
	clone := *customer
	return &clone, nil
}

func (r *mockRepository) GetByEmail(_ context.Context, email string) (*Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, customer := range r.customers {
		if customer.Email == email {
			clone := *customer
			return &clone, nil
		}
	}
	return nil, ErrCustomerNotFound
}

func (r *mockRepository) ListActive(_ context.Context, page Page) ([]Customer, int64, error) {
	page = page.normalized()

	r.mu.RLock()
	defer r.mu.RUnlock()

	var active []Customer
	for _, customer := range r.customers {
		if customer.IsActive {
			active = append(active, *customer)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].ID < active[j].ID
	})

	total := int64(len(active))
	start := (page.Number - 1) * page.Size
	if start >= len(active) {
		return []Customer{}, total, nil
	}
	end := start + page.Size
	if end > len(active) {
		end = len(active)
	}
	return active[start:end], total, nil
}

func (r *mockRepository) Search(_ context.Context, query string) ([]Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(query)
	var matched []Customer
	for _, customer := range r.customers {
		if !customer.IsActive {
			continue
		}
		if strings.Contains(strings.ToLower(customer.Name), needle) ||
			strings.Contains(strings.ToLower(customer.LastName), needle) ||
			strings.Contains(strings.ToLower(customer.Email), needle) {
			matched = append(matched, *customer)
		}
	}
	return matched, nil
}

func (r *mockRepository) Save(_ context.Context, customer *Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.customers[customer.ID]; !exists {
		return ErrCustomerNotFound
	}
	clone := *customer
	r.customers[customer.ID] = &clone
	return nil
}

func (r *mockRepository) Deactivate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	customer, exists := r.customers[id]
	if !exists {
		return ErrCustomerNotFound
	}
	customer.IsActive = false
	return nil
}
