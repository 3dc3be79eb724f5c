package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is a finalized transaction. It is created once at checkout and never
// modified afterwards.
type Sale struct {
	ID              string          `gorm:"type:varchar(32);primaryKey" json:"id"`
	Items           []SaleItem      `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"items"`
	Subtotal        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	Discount        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"discount"`
	Total           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	PaymentReceived decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"payment_received"`
	Change          decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"change"`
	Date            time.Time       `gorm:"not null;index" json:"date"`
	Cashier         string          `gorm:"size:255;not null" json:"cashier"`
	StoreLocation   string          `gorm:"size:255;not null" json:"store_location"`
}

// TableName returns the table name for the Sale model
func (Sale) TableName() string {
	return "sales"
}

// SaleItem records the quantity and unit price of one product in a sale.
// The product name is deliberately not stored.
type SaleItem struct {
	ID        uint            `gorm:"primaryKey" json:"-"`
	SaleID    string          `gorm:"type:varchar(32);not null;index" json:"-"`
	Position  int             `gorm:"not null" json:"-"`
	ProductID string          `gorm:"type:varchar(36);not null" json:"product_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
}

// TableName returns the table name for the SaleItem model
func (SaleItem) TableName() string {
	return "sale_items"
}

// LineTotal returns quantity x price
func (i SaleItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Clone returns a deep copy so callers cannot mutate stored records.
func (s *Sale) Clone() *Sale {
	c := *s
	c.Items = make([]SaleItem, len(s.Items))
	copy(c.Items, s.Items)
	return &c
}
