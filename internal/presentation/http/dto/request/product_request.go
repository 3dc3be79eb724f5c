package request

import "github.com/shopspring/decimal"

// ProductRequest represents a product create or update request.
// Range checks happen in the catalog service so all field errors are reported together.
type ProductRequest struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// LowStockRequest represents low stock filter parameters
type LowStockRequest struct {
	Threshold int `form:"threshold"`
}
