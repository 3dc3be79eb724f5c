package service

import (
	"context"

	"github.com/sangkips/masterstock-api/internal/domain/repository"
	"github.com/sangkips/masterstock-api/pkg/metrics"
	"go.uber.org/zap"
)

// SystemService performs store-wide administrative operations.
type SystemService struct {
	catalog repository.CatalogStore
	ledger  repository.SaleLedger
	sales   *SalesService
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewSystemService creates a new system service
func NewSystemService(
	catalog repository.CatalogStore,
	ledger repository.SaleLedger,
	sales *SalesService,
	logger *zap.Logger,
	m *metrics.Metrics,
) *SystemService {
	return &SystemService{
		catalog: catalog,
		ledger:  ledger,
		sales:   sales,
		logger:  logger,
		metrics: m,
	}
}

// Reset deletes every product and every recorded sale and discards all
// open carts. Users are kept.
func (s *SystemService) Reset(ctx context.Context, requestedBy string) error {
	if err := s.ledger.Clear(ctx); err != nil {
		return err
	}
	if err := s.catalog.DeleteAll(ctx); err != nil {
		return err
	}
	s.sales.DiscardSessions()
	s.metrics.ResetInventory()

	s.logger.Warn("system reset", zap.String("requested_by", requestedBy))
	return nil
}
