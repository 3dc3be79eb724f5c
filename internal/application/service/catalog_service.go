package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sangkips/masterstock-api/internal/domain/entity"
	"github.com/sangkips/masterstock-api/internal/domain/repository"
	"github.com/sangkips/masterstock-api/pkg/apperror"
	"github.com/sangkips/masterstock-api/pkg/metrics"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// CatalogService handles product-related operations
type CatalogService struct {
	catalog repository.CatalogStore
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewCatalogService creates a new catalog service
func NewCatalogService(catalog repository.CatalogStore, logger *zap.Logger, m *metrics.Metrics) *CatalogService {
	return &CatalogService{
		catalog: catalog,
		logger:  logger,
		metrics: m,
	}
}

// ProductInput represents the create and update product input
type ProductInput struct {
	Name     string
	Price    decimal.Decimal
	Quantity int
}

func (in *ProductInput) validate() error {
	var fields []apperror.FieldError
	if strings.TrimSpace(in.Name) == "" {
		fields = append(fields, apperror.FieldError{Field: "name", Message: "Name is required"})
	}
	if in.Price.IsNegative() {
		fields = append(fields, apperror.FieldError{Field: "price", Message: "Price must not be negative"})
	}
	if in.Quantity < 0 {
		fields = append(fields, apperror.FieldError{Field: "quantity", Message: "Quantity must not be negative"})
	}
	if len(fields) > 0 {
		return apperror.NewValidationError(fields)
	}
	return nil
}

// ListProducts returns the catalog in display order
func (s *CatalogService) ListProducts(ctx context.Context) ([]entity.Product, error) {
	return s.catalog.List(ctx)
}

// GetProduct retrieves a product by ID
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	product, err := s.catalog.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// CreateProduct creates a new product
func (s *CatalogService) CreateProduct(ctx context.Context, input *ProductInput) (*entity.Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	product := &entity.Product{
		Name:     strings.TrimSpace(input.Name),
		Price:    input.Price,
		Quantity: input.Quantity,
	}
	if err := s.catalog.Create(ctx, product); err != nil {
		return nil, err
	}

	s.metrics.SetInventory(product.ID, product.Quantity)
	s.logger.Info("product created", zap.String("product_id", product.ID), zap.String("name", product.Name))
	return product, nil
}

// UpdateProduct replaces name, price and quantity of a product
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, input *ProductInput) (*entity.Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = strings.TrimSpace(input.Name)
	product.Price = input.Price
	product.Quantity = input.Quantity
	if err := s.catalog.Update(ctx, product); err != nil {
		return nil, err
	}

	s.metrics.SetInventory(product.ID, product.Quantity)
	return product, nil
}

// DeleteProduct deletes a product. Sales that reference it are kept.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	if err := s.catalog.Delete(ctx, id); err != nil {
		return err
	}

	s.metrics.DeleteInventory(id)
	s.logger.Info("product deleted", zap.String("product_id", id))
	return nil
}

// DeleteAllProducts empties the catalog.
func (s *CatalogService) DeleteAllProducts(ctx context.Context) error {
	if err := s.catalog.DeleteAll(ctx); err != nil {
		return err
	}

	s.metrics.ResetInventory()
	s.logger.Warn("all products deleted")
	return nil
}

// GetLowStockProducts returns products at or below threshold units
func (s *CatalogService) GetLowStockProducts(ctx context.Context, threshold int) ([]entity.Product, error) {
	if threshold < 0 {
		return nil, apperror.NewBadRequestError("threshold must not be negative")
	}
	return s.catalog.ListLowStock(ctx, threshold)
}

// SyncInventory publishes the stock level of every product.
func (s *CatalogService) SyncInventory(ctx context.Context) error {
	products, err := s.catalog.List(ctx)
	if err != nil {
		return err
	}
	s.metrics.ResetInventory()
	for _, p := range products {
		s.metrics.SetInventory(p.ID, p.Quantity)
	}
	return nil
}

// ImportResult contains the result of a product import operation
type ImportResult struct {
	TotalRows  int              `json:"total_rows"`
	Successful int              `json:"successful"`
	Failed     int              `json:"failed"`
	Errors     []ImportRowError `json:"errors,omitempty"`
}

// ImportRowError describes an error for a specific row during import
type ImportRowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

var importColumns = []string{"name", "price", "quantity"}

// ImportProducts reads the first sheet of an xlsx workbook and creates one
// product per valid row. The header row names the columns name, price and
// quantity in any order. Invalid rows are reported and skipped; valid rows
// are created together.
func (s *CatalogService) ImportProducts(ctx context.Context, r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperror.NewBadRequestError("File is not a valid xlsx workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperror.NewValidationMessage("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperror.NewBadRequestError("Failed to read sheet " + sheets[0])
	}
	if len(rows) == 0 {
		return nil, apperror.NewValidationMessage("sheet has no header row")
	}

	index := make(map[string]int, len(importColumns))
	for i, h := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var missing []apperror.FieldError
	for _, col := range importColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, apperror.FieldError{Field: col, Message: "Column is missing from the header row"})
		}
	}
	if len(missing) > 0 {
		return nil, apperror.NewValidationError(missing)
	}

	cell := func(row []string, col string) string {
		i := index[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	result := &ImportResult{}
	var valid []entity.Product

	for i, row := range rows[1:] {
		rowNum := i + 2
		if isBlankRow(row) {
			continue
		}
		result.TotalRows++

		product, rowErr := parseImportRow(cell(row, "name"), cell(row, "price"), cell(row, "quantity"))
		if rowErr != nil {
			rowErr.Row = rowNum
			result.Errors = append(result.Errors, *rowErr)
			continue
		}
		valid = append(valid, *product)
	}

	if len(valid) > 0 {
		if err := s.catalog.CreateBatch(ctx, valid); err != nil {
			return nil, err
		}
		for _, p := range valid {
			s.metrics.SetInventory(p.ID, p.Quantity)
		}
	}

	result.Successful = len(valid)
	result.Failed = len(result.Errors)

	s.logger.Info("products imported",
		zap.Int("rows", result.TotalRows),
		zap.Int("successful", result.Successful),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

func parseImportRow(name, price, quantity string) (*entity.Product, *ImportRowError) {
	if name == "" {
		return nil, &ImportRowError{Field: "name", Message: "Name is required"}
	}

	p, err := decimal.NewFromString(price)
	if err != nil {
		return nil, &ImportRowError{Field: "price", Message: fmt.Sprintf("Invalid price %q", price)}
	}
	if p.IsNegative() {
		return nil, &ImportRowError{Field: "price", Message: "Price must not be negative"}
	}

	q, err := strconv.Atoi(quantity)
	if err != nil {
		return nil, &ImportRowError{Field: "quantity", Message: fmt.Sprintf("Invalid quantity %q", quantity)}
	}
	if q < 0 {
		return nil, &ImportRowError{Field: "quantity", Message: "Quantity must not be negative"}
	}

	return &entity.Product{Name: name, Price: p, Quantity: q}, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
