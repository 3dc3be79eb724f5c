package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a catalog item available for sale
type Product struct {
	ID        string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"price"`
	Quantity  int             `gorm:"not null;default:0" json:"quantity"`
	CreatedAt time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// BeforeCreate generates an ID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// InStock reports whether at least one unit is available
func (p *Product) InStock() bool {
	return p.Quantity > 0
}
