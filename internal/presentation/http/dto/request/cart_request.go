package request

import "github.com/shopspring/decimal"

// AddCartItemRequest selects a product for the cart
type AddCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

// SetQuantityRequest sets the quantity of a cart line
type SetQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// AmountRequest carries a discount or payment amount
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}
