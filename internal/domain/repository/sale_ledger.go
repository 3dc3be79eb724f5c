package repository

import (
	"context"

	"github.com/sangkips/masterstock-api/internal/domain/entity"
	"github.com/sangkips/masterstock-api/pkg/pagination"
)

// SaleLedger is the append-only history of finalized sales.
// GetByID returns (nil, nil) when no sale matches.
type SaleLedger interface {
	Append(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// List returns all sales in insertion order.
	List(ctx context.Context) ([]entity.Sale, error)
	// ListPage returns one page of sales in insertion order and the total count.
	ListPage(ctx context.Context, params *pagination.PaginationParams) ([]entity.Sale, int64, error)
	// Clear empties the ledger. Administrative only.
	Clear(ctx context.Context) error
}
