package repository

import (
	"context"

	"github.com/sangkips/masterstock-api/internal/domain/entity"
)

// CatalogStore is the source of truth for product price and availability.
// Lookups return (nil, nil) when the product does not exist.
type CatalogStore interface {
	// List returns every product in render order (creation order).
	List(ctx context.Context) ([]entity.Product, error)
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// ListLowStock returns products whose quantity is at or below threshold.
	ListLowStock(ctx context.Context, threshold int) ([]entity.Product, error)
	Create(ctx context.Context, product *entity.Product) error
	// CreateBatch inserts all products or none.
	CreateBatch(ctx context.Context, products []entity.Product) error
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id string) error
	// DeleteAll removes every product.
	DeleteAll(ctx context.Context) error
	// DecrementQuantity reduces the stored quantity by amount and returns the
	// remaining quantity. Stock never goes below zero: when amount exceeds the
	// available quantity nothing changes and an out-of-stock error is returned.
	DecrementQuantity(ctx context.Context, id string, amount int) (int, error)
}
