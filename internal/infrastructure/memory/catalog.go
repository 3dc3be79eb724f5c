package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/masterstock-api/internal/domain/entity"
	domainRepo "github.com/sangkips/masterstock-api/internal/domain/repository"
	"github.com/sangkips/masterstock-api/pkg/apperror"
)

type catalogStore struct {
	mu       sync.RWMutex
	products map[string]entity.Product
	order    []string
}

// NewCatalogStore creates an empty in-memory catalog
func NewCatalogStore() domainRepo.CatalogStore {
	return &catalogStore{products: make(map[string]entity.Product)}
}

func (s *catalogStore) List(ctx context.Context) ([]entity.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.Product, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.products[id])
	}
	return out, nil
}

func (s *catalogStore) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *catalogStore) ListLowStock(ctx context.Context, threshold int) ([]entity.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []entity.Product{}
	for _, id := range s.order {
		if p := s.products[id]; p.Quantity <= threshold {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *catalogStore) Create(ctx context.Context, product *entity.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkNew(product); err != nil {
		return err
	}
	s.insert(product)
	return nil
}

func (s *catalogStore) CreateBatch(ctx context.Context, products []entity.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(products))
	for i := range products {
		if err := s.checkNew(&products[i]); err != nil {
			return err
		}
		if products[i].ID != "" {
			if seen[products[i].ID] {
				return apperror.NewConflictError("duplicate product id " + products[i].ID)
			}
			seen[products[i].ID] = true
		}
	}
	for i := range products {
		s.insert(&products[i])
	}
	return nil
}

func (s *catalogStore) Update(ctx context.Context, product *entity.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.products[product.ID]
	if !ok {
		return apperror.NewNotFoundError("Product")
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now()
	s.products[product.ID] = *product
	return nil
}

func (s *catalogStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return apperror.NewNotFoundError("Product")
	}
	delete(s.products, id)
	for i, pid := range s.order {
		if pid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *catalogStore) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = make(map[string]entity.Product)
	s.order = nil
	return nil
}

func (s *catalogStore) DecrementQuantity(ctx context.Context, id string, amount int) (int, error) {
	if amount < 0 {
		return 0, apperror.NewBadRequestError("decrement amount must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return 0, apperror.NewNotFoundError("Product")
	}
	if p.Quantity < amount {
		return p.Quantity, apperror.NewOutOfStockError(id, amount, p.Quantity)
	}
	p.Quantity -= amount
	p.UpdatedAt = time.Now()
	s.products[id] = p
	return p.Quantity, nil
}

// checkNew must be called with the write lock held.
func (s *catalogStore) checkNew(product *entity.Product) error {
	if product.ID == "" {
		return nil
	}
	if _, exists := s.products[product.ID]; exists {
		return apperror.NewConflictError("product " + product.ID + " already exists")
	}
	return nil
}

// insert must be called with the write lock held.
func (s *catalogStore) insert(product *entity.Product) {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	now := time.Now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	s.products[product.ID] = *product
	s.order = append(s.order, product.ID)
}
