package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sangkips/masterstock-api/internal/domain/entity"
	"github.com/sangkips/masterstock-api/internal/domain/repository"
	"github.com/sangkips/masterstock-api/internal/infrastructure/memory"
	"github.com/sangkips/masterstock-api/pkg/metrics"
	"github.com/sangkips/masterstock-api/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

var saleTime = time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return saleTime }

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func product(id, name, price string, qty int) entity.Product {
	return entity.Product{ID: id, Name: name, Price: dec(price), Quantity: qty}
}

type fixture struct {
	catalog repository.CatalogStore
	ledger  repository.SaleLedger
	ids     *utils.SaleIDGenerator
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func newFixture(t *testing.T, products ...entity.Product) *fixture {
	t.Helper()

	f := &fixture{
		catalog: memory.NewCatalogStore(),
		ledger:  memory.NewSaleLedger(),
		ids:     utils.NewSaleIDGenerator(fixedClock),
		metrics: metrics.New("test"),
		logger:  zaptest.NewLogger(t),
	}
	for i := range products {
		require.NoError(t, f.catalog.Create(context.Background(), &products[i]))
	}
	return f
}

func (f *fixture) builder() *SaleBuilder {
	return NewSaleBuilder(f.catalog, f.ledger, f.ids, fixedClock, f.logger, f.metrics)
}

func (f *fixture) salesService() *SalesService {
	return NewSalesService(f.catalog, f.ledger, f.ids, fixedClock, "Main Street Store", f.logger, f.metrics)
}

func (f *fixture) quantity(t *testing.T, id string) int {
	t.Helper()
	p, err := f.catalog.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Quantity
}

func (f *fixture) ledgerLen(t *testing.T) int {
	t.Helper()
	sales, err := f.ledger.List(context.Background())
	require.NoError(t, err)
	return len(sales)
}

var errStoreDown = errors.New("store unavailable")

// failingDecrements rejects every stock decrement.
type failingDecrements struct {
	repository.CatalogStore
}

func (failingDecrements) DecrementQuantity(ctx context.Context, id string, amount int) (int, error) {
	return 0, errStoreDown
}

// failingLedger rejects every append.
type failingLedger struct {
	repository.SaleLedger
}

func (failingLedger) Append(ctx context.Context, sale *entity.Sale) error {
	return errStoreDown
}

// failingBatch rejects every batch insert.
type failingBatch struct {
	repository.CatalogStore
}

func (failingBatch) CreateBatch(ctx context.Context, products []entity.Product) error {
	return errStoreDown
}
