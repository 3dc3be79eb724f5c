package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/masterstock-api/internal/domain/entity"
	"github.com/sangkips/masterstock-api/internal/domain/repository"
	"github.com/sangkips/masterstock-api/pkg/apperror"
	"github.com/sangkips/masterstock-api/pkg/metrics"
	"github.com/sangkips/masterstock-api/pkg/pagination"
	"github.com/sangkips/masterstock-api/pkg/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SalesService keeps one cart per cashier and exposes the sale ledger.
type SalesService struct {
	catalog       repository.CatalogStore
	ledger        repository.SaleLedger
	ids           *utils.SaleIDGenerator
	now           func() time.Time
	storeLocation string
	logger        *zap.Logger
	metrics       *metrics.Metrics

	mu       sync.Mutex
	sessions map[uuid.UUID]*cartSession

	// checkoutMu makes the stock check, ledger append and decrements of one
	// checkout a single step with respect to other checkouts.
	checkoutMu sync.Mutex
}

type cartSession struct {
	mu      sync.Mutex
	builder *SaleBuilder
}

// NewSalesService creates a new sales service
func NewSalesService(
	catalog repository.CatalogStore,
	ledger repository.SaleLedger,
	ids *utils.SaleIDGenerator,
	now func() time.Time,
	storeLocation string,
	logger *zap.Logger,
	m *metrics.Metrics,
) *SalesService {
	return &SalesService{
		catalog:       catalog,
		ledger:        ledger,
		ids:           ids,
		now:           now,
		storeLocation: storeLocation,
		logger:        logger,
		metrics:       m,
		sessions:      make(map[uuid.UUID]*cartSession),
	}
}

// CartSummary is the state of a cart plus its derived totals.
type CartSummary struct {
	Items           []LineItem      `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Discount        decimal.Decimal `json:"discount"`
	Total           decimal.Decimal `json:"total"`
	PaymentReceived decimal.Decimal `json:"payment_received"`
	Change          decimal.Decimal `json:"change"`
}

func summarize(b *SaleBuilder) *CartSummary {
	return &CartSummary{
		Items:           b.Items(),
		Subtotal:        b.Subtotal(),
		Discount:        b.Discount(),
		Total:           b.Total(),
		PaymentReceived: b.PaymentReceived(),
		Change:          b.Change(),
	}
}

func (s *SalesService) session(userID uuid.UUID) *cartSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		sess = &cartSession{
			builder: NewSaleBuilder(s.catalog, s.ledger, s.ids, s.now, s.logger, s.metrics),
		}
		s.sessions[userID] = sess
	}
	return sess
}

// withCart runs fn on the caller's builder while holding its session lock and
// returns the resulting cart state.
func (s *SalesService) withCart(userID uuid.UUID, fn func(b *SaleBuilder) error) (*CartSummary, error) {
	sess := s.session(userID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if fn != nil {
		if err := fn(sess.builder); err != nil {
			return nil, err
		}
	}
	return summarize(sess.builder), nil
}

// GetCart returns the caller's cart.
func (s *SalesService) GetCart(userID uuid.UUID) *CartSummary {
	cart, _ := s.withCart(userID, nil)
	return cart
}

// SelectProduct adds one unit of a catalog product to the cart. Products
// with no stock cannot be selected.
func (s *SalesService) SelectProduct(ctx context.Context, userID uuid.UUID, productID string) (*CartSummary, error) {
	product, err := s.catalog.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	if !product.InStock() {
		return nil, apperror.NewOutOfStockError(product.ID, 1, product.Quantity)
	}

	return s.withCart(userID, func(b *SaleBuilder) error {
		b.SelectProduct(*product)
		return nil
	})
}

// SetQuantity replaces a line item quantity. Negative values leave it unchanged.
func (s *SalesService) SetQuantity(userID uuid.UUID, productID string, quantity int) (*CartSummary, error) {
	return s.withCart(userID, func(b *SaleBuilder) error {
		if !b.SetQuantity(productID, quantity) {
			return apperror.NewNotFoundError("Cart item")
		}
		return nil
	})
}

func (s *SalesService) RemoveItem(userID uuid.UUID, productID string) (*CartSummary, error) {
	return s.withCart(userID, func(b *SaleBuilder) error {
		if !b.RemoveItem(productID) {
			return apperror.NewNotFoundError("Cart item")
		}
		return nil
	})
}

func (s *SalesService) SetDiscount(userID uuid.UUID, amount decimal.Decimal) *CartSummary {
	cart, _ := s.withCart(userID, func(b *SaleBuilder) error {
		b.SetDiscount(amount)
		return nil
	})
	return cart
}

func (s *SalesService) SetPaymentReceived(userID uuid.UUID, amount decimal.Decimal) *CartSummary {
	cart, _ := s.withCart(userID, func(b *SaleBuilder) error {
		b.SetPaymentReceived(amount)
		return nil
	})
	return cart
}

// ClearCart empties the caller's cart.
func (s *SalesService) ClearCart(userID uuid.UUID) *CartSummary {
	cart, _ := s.withCart(userID, func(b *SaleBuilder) error {
		b.Reset()
		return nil
	})
	return cart
}

// Checkout finalizes the caller's cart as a sale rung up by cashier at the
// configured store location.
func (s *SalesService) Checkout(ctx context.Context, userID uuid.UUID, cashier string) (*entity.Sale, error) {
	sess := s.session(userID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	s.checkoutMu.Lock()
	defer s.checkoutMu.Unlock()

	return sess.builder.Finalize(ctx, FinalizeContext{
		Cashier:       cashier,
		StoreLocation: s.storeLocation,
	})
}

// GetSale returns a recorded sale.
func (s *SalesService) GetSale(ctx context.Context, id string) (*entity.Sale, error) {
	sale, err := s.ledger.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}
	return sale, nil
}

// ListSales returns one page of the ledger in recording order.
func (s *SalesService) ListSales(ctx context.Context, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Sale], error) {
	params.Validate()

	sales, total, err := s.ledger.ListPage(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(sales, pag), nil
}

// DiscardSessions drops every open cart.
func (s *SalesService) DiscardSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[uuid.UUID]*cartSession)
}
