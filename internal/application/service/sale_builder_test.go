package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sangkips/masterstock-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaleBuilderDerivedTotals(t *testing.T) {
	f := newFixture(t)
	b := f.builder()

	cable := product("p-1", "Cable", "10", 5)
	mouse := product("p-2", "Mouse", "2.50", 5)
	b.SelectProduct(cable)
	b.SelectProduct(mouse)
	b.SelectProduct(cable)
	b.SetDiscount(dec("5"))
	b.SetPaymentReceived(dec("20"))

	items := b.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "p-1", items[0].ProductID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "p-2", items[1].ProductID)
	assert.Equal(t, 1, items[1].Quantity)

	assert.True(t, dec("22.50").Equal(b.Subtotal()))
	assert.True(t, dec("17.50").Equal(b.Total()))
	assert.True(t, dec("2.50").Equal(b.Change()))
}

func TestSaleBuilderSetQuantity(t *testing.T) {
	b := newFixture(t).builder()
	b.SelectProduct(product("p-1", "Cable", "10", 5))

	assert.True(t, b.SetQuantity("p-1", 4))
	assert.Equal(t, 4, b.Items()[0].Quantity)

	assert.True(t, b.SetQuantity("p-1", -1))
	assert.Equal(t, 4, b.Items()[0].Quantity, "negative quantity is ignored")

	assert.True(t, b.SetQuantity("p-1", 0))
	require.Len(t, b.Items(), 1, "zero quantity keeps the line item")
	assert.Equal(t, 0, b.Items()[0].Quantity)
	assert.True(t, b.Subtotal().IsZero())

	assert.False(t, b.SetQuantity("missing", 2))
}

func TestSaleBuilderRemoveItem(t *testing.T) {
	b := newFixture(t).builder()
	b.SelectProduct(product("p-1", "Cable", "10", 5))
	b.SelectProduct(product("p-2", "Mouse", "3", 5))

	assert.True(t, b.RemoveItem("p-1"))
	assert.False(t, b.RemoveItem("p-1"))
	require.Len(t, b.Items(), 1)
	assert.Equal(t, "p-2", b.Items()[0].ProductID)
}

func TestSaleBuilderItemsIsACopy(t *testing.T) {
	b := newFixture(t).builder()
	b.SelectProduct(product("p-1", "Cable", "10", 5))

	items := b.Items()
	items[0].Quantity = 99
	assert.Equal(t, 1, b.Items()[0].Quantity)
}

func TestFinalizeRecordsSale(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, product("p-1", "Cable", "10", 5))
	b := f.builder()

	b.SelectProduct(product("p-1", "Cable", "10", 5))
	b.SetQuantity("p-1", 2)
	b.SetDiscount(dec("5"))
	b.SetPaymentReceived(dec("20"))

	sale, err := b.Finalize(ctx, FinalizeContext{Cashier: "cashier1", StoreLocation: "Main Street Store"})
	require.NoError(t, err)

	assert.Equal(t, "SALE-1710513000000", sale.ID)
	assert.Equal(t, saleTime, sale.Date)
	assert.Equal(t, "cashier1", sale.Cashier)
	assert.Equal(t, "Main Street Store", sale.StoreLocation)
	assert.Equal(t, "20.00", sale.Subtotal.StringFixed(2))
	assert.Equal(t, "5.00", sale.Discount.StringFixed(2))
	assert.Equal(t, "15.00", sale.Total.StringFixed(2))
	assert.Equal(t, "20.00", sale.PaymentReceived.StringFixed(2))
	assert.Equal(t, "5.00", sale.Change.StringFixed(2))
	require.Len(t, sale.Items, 1)
	assert.Equal(t, "p-1", sale.Items[0].ProductID)
	assert.Equal(t, 2, sale.Items[0].Quantity)
	assert.True(t, dec("10").Equal(sale.Items[0].Price))

	stored, err := f.ledger.GetByID(ctx, sale.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.Total.Equal(sale.Total))
	assert.Equal(t, 1, f.ledgerLen(t))

	assert.Equal(t, 3, f.quantity(t, "p-1"))
	assert.Empty(t, b.Items())
	assert.True(t, b.Discount().IsZero())
	assert.True(t, b.PaymentReceived().IsZero())

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.SalesTotal))
	assert.Equal(t, 15.0, testutil.ToFloat64(f.metrics.SalesRevenue))
	assert.Equal(t, 3.0, testutil.ToFloat64(f.metrics.Inventory.WithLabelValues("p-1")))
}

func TestFinalizeEmptyCart(t *testing.T) {
	f := newFixture(t)
	b := f.builder()
	b.SetPaymentReceived(dec("100"))

	sale, err := b.Finalize(context.Background(), FinalizeContext{Cashier: "admin"})
	assert.Nil(t, sale)
	assert.True(t, errors.Is(err, apperror.ErrEmptyCart))
	assert.True(t, apperror.IsValidation(err))
	assert.Equal(t, 0, f.ledgerLen(t))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ValidationFailures.WithLabelValues("empty_cart")))
}

func TestFinalizeInsufficientPaymentLeavesStateUntouched(t *testing.T) {
	f := newFixture(t, product("p-1", "Monitor", "50", 3))
	b := f.builder()

	b.SelectProduct(product("p-1", "Monitor", "50", 3))
	b.SetPaymentReceived(dec("40"))

	sale, err := b.Finalize(context.Background(), FinalizeContext{Cashier: "admin"})
	assert.Nil(t, sale)
	assert.True(t, errors.Is(err, apperror.ErrInsufficientPayment))
	assert.True(t, apperror.IsValidation(err))

	assert.Equal(t, 0, f.ledgerLen(t))
	assert.Equal(t, 3, f.quantity(t, "p-1"))
	require.Len(t, b.Items(), 1)
	assert.True(t, dec("40").Equal(b.PaymentReceived()))
	assert.True(t, dec("50").Equal(b.Total()))
}

func TestFinalizeExactPayment(t *testing.T) {
	f := newFixture(t, product("p-1", "Monitor", "50", 3))
	b := f.builder()
	b.SelectProduct(product("p-1", "Monitor", "50", 3))
	b.SetPaymentReceived(dec("50"))

	sale, err := b.Finalize(context.Background(), FinalizeContext{Cashier: "admin"})
	require.NoError(t, err)
	assert.True(t, sale.Change.IsZero())
}

func TestFinalizeOutOfStockChangesNothing(t *testing.T) {
	f := newFixture(t,
		product("p-1", "Cable", "10", 5),
		product("p-2", "Mouse", "4", 1),
	)
	b := f.builder()
	b.SelectProduct(product("p-1", "Cable", "10", 5))
	b.SelectProduct(product("p-2", "Mouse", "4", 1))
	b.SetQuantity("p-2", 3)
	b.SetPaymentReceived(dec("100"))

	_, err := b.Finalize(context.Background(), FinalizeContext{Cashier: "admin"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrOutOfStock))
	assert.Contains(t, err.Error(), "requested 3, available 1")

	assert.Equal(t, 0, f.ledgerLen(t))
	assert.Equal(t, 5, f.quantity(t, "p-1"))
	assert.Equal(t, 1, f.quantity(t, "p-2"))
	assert.Len(t, b.Items(), 2)
}

func TestFinalizeProductRemovedFromCatalog(t *testing.T) {
	f := newFixture(t, product("p-1", "Cable", "10", 5))
	b := f.builder()
	b.SelectProduct(product("p-1", "Cable", "10", 5))
	b.SetPaymentReceived(dec("10"))

	require.NoError(t, f.catalog.Delete(context.Background(), "p-1"))

	_, err := b.Finalize(context.Background(), FinalizeContext{Cashier: "admin"})
	appErr := apperror.GetAppError(err)
	assert.Equal(t, 404, appErr.Code)
	assert.Equal(t, 0, f.ledgerLen(t))
}

func TestFinalizeKeepsZeroQuantityItems(t *testing.T) {
	f := newFixture(t,
		product("p-1", "Cable", "10", 5),
		product("p-2", "Mouse", "4", 2),
	)
	b := f.builder()
	b.SelectProduct(product("p-1", "Cable", "10", 5))
	b.SelectProduct(product("p-2", "Mouse", "4", 2))
	b.SetQuantity("p-2", 0)
	b.SetPaymentReceived(dec("10"))

	sale, err := b.Finalize(context.Background(), FinalizeContext{Cashier: "admin"})
	require.NoError(t, err)
	require.Len(t, sale.Items, 2)
	assert.Equal(t, 0, sale.Items[1].Quantity)
	assert.Equal(t, 4, f.quantity(t, "p-1"))
	assert.Equal(t, 2, f.quantity(t, "p-2"))
}

func TestFinalizeDecrementFailureDoesNotUndoSale(t *testing.T) {
	f := newFixture(t, product("p-1", "Cable", "10", 5))
	f.catalog = failingDecrements{f.catalog}
	b := f.builder()
	b.SelectProduct(product("p-1", "Cable", "10", 5))
	b.SetPaymentReceived(dec("10"))

	sale, err := b.Finalize(context.Background(), FinalizeContext{Cashier: "admin"})
	require.NoError(t, err)
	require.NotNil(t, sale)

	assert.Equal(t, 1, f.ledgerLen(t))
	assert.Equal(t, 5, f.quantity(t, "p-1"))
	assert.Empty(t, b.Items())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.DecrementFailures))
}

func TestFinalizeLedgerFailureKeepsCart(t *testing.T) {
	f := newFixture(t, product("p-1", "Cable", "10", 5))
	f.ledger = failingLedger{f.ledger}
	b := f.builder()
	b.SelectProduct(product("p-1", "Cable", "10", 5))
	b.SetPaymentReceived(dec("10"))

	_, err := b.Finalize(context.Background(), FinalizeContext{Cashier: "admin"})
	assert.ErrorIs(t, err, errStoreDown)
	assert.Len(t, b.Items(), 1)
	assert.Equal(t, 5, f.quantity(t, "p-1"))
}

func TestFinalizeIssuesUniqueIDs(t *testing.T) {
	f := newFixture(t, product("p-1", "Cable", "10", 5))
	b := f.builder()

	var ids []string
	for i := 0; i < 2; i++ {
		b.SelectProduct(product("p-1", "Cable", "10", 5))
		b.SetPaymentReceived(dec("10"))
		sale, err := b.Finalize(context.Background(), FinalizeContext{Cashier: "admin"})
		require.NoError(t, err)
		ids = append(ids, sale.ID)
	}

	assert.Equal(t, []string{"SALE-1710513000000", "SALE-1710513000001"}, ids)
	assert.Equal(t, 3, f.quantity(t, "p-1"))
}
