package memory

import (
	"context"
	"sync"

	"github.com/sangkips/masterstock-api/internal/domain/entity"
	domainRepo "github.com/sangkips/masterstock-api/internal/domain/repository"
	"github.com/sangkips/masterstock-api/pkg/apperror"
	"github.com/sangkips/masterstock-api/pkg/pagination"
)

type saleLedger struct {
	mu    sync.RWMutex
	sales []*entity.Sale
	index map[string]int
}

// NewSaleLedger creates an empty in-memory ledger
func NewSaleLedger() domainRepo.SaleLedger {
	return &saleLedger{index: make(map[string]int)}
}

func (l *saleLedger) Append(ctx context.Context, sale *entity.Sale) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.index[sale.ID]; exists {
		return apperror.NewConflictError("sale " + sale.ID + " already recorded")
	}
	l.index[sale.ID] = len(l.sales)
	l.sales = append(l.sales, sale.Clone())
	return nil
}

func (l *saleLedger) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i, ok := l.index[id]
	if !ok {
		return nil, nil
	}
	return l.sales[i].Clone(), nil
}

func (l *saleLedger) List(ctx context.Context) ([]entity.Sale, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.copyRange(0, len(l.sales)), nil
}

func (l *saleLedger) ListPage(ctx context.Context, params *pagination.PaginationParams) ([]entity.Sale, int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	params.Validate()
	start, end := params.Window(len(l.sales))
	return l.copyRange(start, end), int64(len(l.sales)), nil
}

func (l *saleLedger) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sales = nil
	l.index = make(map[string]int)
	return nil
}

func (l *saleLedger) copyRange(start, end int) []entity.Sale {
	out := make([]entity.Sale, 0, end-start)
	for _, s := range l.sales[start:end] {
		out = append(out, *s.Clone())
	}
	return out
}
