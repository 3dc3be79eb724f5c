package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sangkips/masterstock-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows ...[]interface{}) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestCatalogServiceCRUD(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewCatalogService(f.catalog, f.logger, f.metrics)

	created, err := svc.CreateProduct(ctx, &ProductInput{Name: "  Keyboard ", Price: dec("25.99"), Quantity: 4})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Keyboard", created.Name)
	assert.Equal(t, 4.0, testutil.ToFloat64(f.metrics.Inventory.WithLabelValues(created.ID)))

	updated, err := svc.UpdateProduct(ctx, created.ID, &ProductInput{Name: "Mech Keyboard", Price: dec("30"), Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, "Mech Keyboard", updated.Name)

	got, err := svc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, dec("30").Equal(got.Price))
	assert.Equal(t, 2, got.Quantity)

	require.NoError(t, svc.DeleteProduct(ctx, created.ID))
	_, err = svc.GetProduct(ctx, created.ID)
	assert.Equal(t, 404, apperror.GetAppError(err).Code)
	assert.Equal(t, 0, testutil.CollectAndCount(f.metrics.Inventory))
}

func TestCatalogServiceValidation(t *testing.T) {
	f := newFixture(t)
	svc := NewCatalogService(f.catalog, f.logger, f.metrics)

	_, err := svc.CreateProduct(context.Background(), &ProductInput{Name: "", Price: dec("-1"), Quantity: -2})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Len(t, apperror.GetAppError(err).Errors, 3)

	_, err = svc.UpdateProduct(context.Background(), "missing", &ProductInput{Name: "X", Price: dec("1")})
	assert.Equal(t, 404, apperror.GetAppError(err).Code)
}

func TestCatalogServiceLowStock(t *testing.T) {
	f := newFixture(t,
		product("p-1", "Cable", "10", 1),
		product("p-2", "Mouse", "4", 8),
		product("p-3", "Hub", "20", 0),
	)
	svc := NewCatalogService(f.catalog, f.logger, f.metrics)

	low, err := svc.GetLowStockProducts(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "p-1", low[0].ID)
	assert.Equal(t, "p-3", low[1].ID)

	_, err = svc.GetLowStockProducts(context.Background(), -1)
	assert.Equal(t, 400, apperror.GetAppError(err).Code)
}

func TestCatalogServiceSyncInventory(t *testing.T) {
	f := newFixture(t, product("p-1", "Cable", "10", 1), product("p-2", "Mouse", "4", 8))
	svc := NewCatalogService(f.catalog, f.logger, f.metrics)

	require.NoError(t, svc.SyncInventory(context.Background()))
	assert.Equal(t, 2, testutil.CollectAndCount(f.metrics.Inventory))
	assert.Equal(t, 8.0, testutil.ToFloat64(f.metrics.Inventory.WithLabelValues("p-2")))
}

func TestCatalogServiceDeleteAll(t *testing.T) {
	f := newFixture(t, product("p-1", "Cable", "10", 1), product("p-2", "Mouse", "4", 8))
	svc := NewCatalogService(f.catalog, f.logger, f.metrics)
	require.NoError(t, svc.SyncInventory(context.Background()))

	require.NoError(t, svc.DeleteAllProducts(context.Background()))

	products, err := svc.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.Equal(t, 0, testutil.CollectAndCount(f.metrics.Inventory))
}

func TestImportProducts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewCatalogService(f.catalog, f.logger, f.metrics)

	book := workbook(t,
		[]interface{}{"Quantity", "Name", "Price"},
		[]interface{}{10, "Cable", "9.99"},
		[]interface{}{"", "", ""},
		[]interface{}{5, "", "3"},
		[]interface{}{2, "Mouse", "abc"},
		[]interface{}{-1, "Hub", "12"},
		[]interface{}{3, "Monitor", 150},
	)

	result, err := svc.ImportProducts(ctx, book)
	require.NoError(t, err)

	assert.Equal(t, 5, result.TotalRows)
	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 3, result.Failed)
	require.Len(t, result.Errors, 3)
	assert.Equal(t, ImportRowError{Row: 4, Field: "name", Message: "Name is required"}, result.Errors[0])
	assert.Equal(t, 5, result.Errors[1].Row)
	assert.Equal(t, "price", result.Errors[1].Field)
	assert.Equal(t, 6, result.Errors[2].Row)
	assert.Equal(t, "quantity", result.Errors[2].Field)

	products, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Cable", products[0].Name)
	assert.True(t, dec("9.99").Equal(products[0].Price))
	assert.Equal(t, 10, products[0].Quantity)
	assert.Equal(t, "Monitor", products[1].Name)
	assert.True(t, dec("150").Equal(products[1].Price))
}

func TestImportProductsRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewCatalogService(f.catalog, f.logger, f.metrics)

	_, err := svc.ImportProducts(ctx, strings.NewReader("not a workbook"))
	assert.Equal(t, 400, apperror.GetAppError(err).Code)

	_, err = svc.ImportProducts(ctx, workbook(t, []interface{}{"name", "price"}, []interface{}{"Cable", 1}))
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	fields := apperror.GetAppError(err).Errors
	require.Len(t, fields, 1)
	assert.Equal(t, "quantity", fields[0].Field)
}

func TestImportProductsStoreFailure(t *testing.T) {
	f := newFixture(t)
	svc := NewCatalogService(failingBatch{f.catalog}, f.logger, f.metrics)

	_, err := svc.ImportProducts(context.Background(), workbook(t,
		[]interface{}{"name", "price", "quantity"},
		[]interface{}{"Cable", "1", "1"},
	))
	assert.True(t, errors.Is(err, errStoreDown))
}
