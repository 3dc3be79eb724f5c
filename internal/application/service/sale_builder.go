package service

import (
	"context"
	"time"

	"github.com/sangkips/masterstock-api/internal/domain/entity"
	"github.com/sangkips/masterstock-api/internal/domain/repository"
	"github.com/sangkips/masterstock-api/pkg/apperror"
	"github.com/sangkips/masterstock-api/pkg/metrics"
	"github.com/sangkips/masterstock-api/pkg/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LineItem is one product in an in-progress sale.
type LineItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// LineTotal returns price x quantity
func (i LineItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// FinalizeContext identifies who rang up a sale and where.
type FinalizeContext struct {
	Cashier       string
	StoreLocation string
}

// SaleBuilder accumulates one candidate transaction. It is not safe for
// concurrent use; SalesService serialises access per cashier.
type SaleBuilder struct {
	catalog repository.CatalogStore
	ledger  repository.SaleLedger
	ids     *utils.SaleIDGenerator
	now     func() time.Time
	logger  *zap.Logger
	metrics *metrics.Metrics

	items    []LineItem
	discount decimal.Decimal
	payment  decimal.Decimal
}

// NewSaleBuilder creates an empty builder. A nil now uses time.Now.
func NewSaleBuilder(
	catalog repository.CatalogStore,
	ledger repository.SaleLedger,
	ids *utils.SaleIDGenerator,
	now func() time.Time,
	logger *zap.Logger,
	m *metrics.Metrics,
) *SaleBuilder {
	if now == nil {
		now = time.Now
	}
	return &SaleBuilder{
		catalog: catalog,
		ledger:  ledger,
		ids:     ids,
		now:     now,
		logger:  logger,
		metrics: m,
	}
}

// SelectProduct adds one unit of product to the sale, appending a new line
// item the first time the product is selected.
func (b *SaleBuilder) SelectProduct(product entity.Product) {
	for i := range b.items {
		if b.items[i].ProductID == product.ID {
			b.items[i].Quantity++
			return
		}
	}
	b.items = append(b.items, LineItem{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Quantity:  1,
	})
}

// SetQuantity replaces the quantity of a line item and reports whether the
// item is in the sale. Negative quantities are ignored. Zero is kept.
func (b *SaleBuilder) SetQuantity(productID string, quantity int) bool {
	idx := b.indexOf(productID)
	if idx < 0 {
		return false
	}
	if quantity >= 0 {
		b.items[idx].Quantity = quantity
	}
	return true
}

// RemoveItem deletes a line item and reports whether it was present.
func (b *SaleBuilder) RemoveItem(productID string) bool {
	idx := b.indexOf(productID)
	if idx < 0 {
		return false
	}
	b.items = append(b.items[:idx], b.items[idx+1:]...)
	return true
}

func (b *SaleBuilder) SetDiscount(amount decimal.Decimal) {
	b.discount = amount
}

func (b *SaleBuilder) SetPaymentReceived(amount decimal.Decimal) {
	b.payment = amount
}

// Items returns a copy of the line items in selection order.
func (b *SaleBuilder) Items() []LineItem {
	out := make([]LineItem, len(b.items))
	copy(out, b.items)
	return out
}

func (b *SaleBuilder) Discount() decimal.Decimal {
	return b.discount
}

func (b *SaleBuilder) PaymentReceived() decimal.Decimal {
	return b.payment
}

// Subtotal returns the sum of price x quantity over all line items.
func (b *SaleBuilder) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range b.items {
		sum = sum.Add(item.LineTotal())
	}
	return sum
}

// Total returns subtotal minus discount.
func (b *SaleBuilder) Total() decimal.Decimal {
	return b.Subtotal().Sub(b.discount)
}

// Change returns payment received minus total.
func (b *SaleBuilder) Change() decimal.Decimal {
	return b.payment.Sub(b.Total())
}

// Reset clears line items, discount and payment.
func (b *SaleBuilder) Reset() {
	b.items = nil
	b.discount = decimal.Zero
	b.payment = decimal.Zero
}

// Finalize validates the candidate sale, records it in the ledger,
// decrements stock for every line item and resets the builder.
//
// Validation and stock failures leave the builder, the ledger and the
// catalog untouched. Once the sale is appended it stands: a failed
// decrement is logged and counted but does not undo the sale.
func (b *SaleBuilder) Finalize(ctx context.Context, fc FinalizeContext) (*entity.Sale, error) {
	if len(b.items) == 0 {
		b.metrics.ObserveValidationFailure("empty_cart")
		return nil, apperror.ErrEmptyCart
	}

	subtotal := b.Subtotal()
	total := subtotal.Sub(b.discount)
	if b.payment.LessThan(total) {
		b.metrics.ObserveValidationFailure("insufficient_payment")
		return nil, apperror.ErrInsufficientPayment
	}

	if err := b.checkStock(ctx); err != nil {
		return nil, err
	}

	sale := &entity.Sale{
		ID:              b.ids.Next(),
		Items:           make([]entity.SaleItem, 0, len(b.items)),
		Subtotal:        subtotal,
		Discount:        b.discount,
		Total:           total,
		PaymentReceived: b.payment,
		Change:          b.payment.Sub(total),
		Date:            b.now(),
		Cashier:         fc.Cashier,
		StoreLocation:   fc.StoreLocation,
	}
	for i, item := range b.items {
		sale.Items = append(sale.Items, entity.SaleItem{
			SaleID:    sale.ID,
			Position:  i,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	if err := b.ledger.Append(ctx, sale); err != nil {
		return nil, err
	}

	b.decrementStock(ctx, sale)
	b.Reset()

	b.metrics.ObserveSale(sale.Total)
	b.logger.Info("sale finalized",
		zap.String("sale_id", sale.ID),
		zap.String("cashier", sale.Cashier),
		zap.Int("items", len(sale.Items)),
		zap.String("total", sale.Total.StringFixed(2)),
	)

	return sale, nil
}

func (b *SaleBuilder) checkStock(ctx context.Context) error {
	for _, item := range b.items {
		product, err := b.catalog.GetByID(ctx, item.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return apperror.NewNotFoundError("Product " + item.ProductID)
		}
		if product.Quantity < item.Quantity {
			b.metrics.ObserveValidationFailure("out_of_stock")
			return apperror.NewOutOfStockError(item.ProductID, item.Quantity, product.Quantity)
		}
	}
	return nil
}

func (b *SaleBuilder) decrementStock(ctx context.Context, sale *entity.Sale) {
	for _, item := range sale.Items {
		remaining, err := b.catalog.DecrementQuantity(ctx, item.ProductID, item.Quantity)
		if err != nil {
			b.metrics.ObserveDecrementFailure()
			b.logger.Warn("stock decrement failed",
				zap.String("sale_id", sale.ID),
				zap.String("product_id", item.ProductID),
				zap.Int("quantity", item.Quantity),
				zap.Error(err),
			)
			continue
		}
		b.metrics.SetInventory(item.ProductID, remaining)
	}
}

func (b *SaleBuilder) indexOf(productID string) int {
	for i := range b.items {
		if b.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}
