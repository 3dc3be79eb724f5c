package repository

import (
	"context"
	"errors"

	"github.com/sangkips/masterstock-api/internal/domain/entity"
	domainRepo "github.com/sangkips/masterstock-api/internal/domain/repository"
	"github.com/sangkips/masterstock-api/pkg/pagination"
	"gorm.io/gorm"
)

type saleLedger struct {
	db *gorm.DB
}

// NewSaleLedger creates a PostgreSQL-backed sale ledger
func NewSaleLedger(db *gorm.DB) domainRepo.SaleLedger {
	return &saleLedger{db: db}
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *saleLedger) Append(ctx context.Context, sale *entity.Sale) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Items are inserted with the sale through the has-many association.
		return duplicateAsConflict(tx.Create(sale).Error, "sale "+sale.ID+" already recorded")
	})
}

func (r *saleLedger) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	var sale entity.Sale
	err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		First(&sale, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleLedger) List(ctx context.Context) ([]entity.Sale, error) {
	sales := []entity.Sale{}
	err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		Order("date ASC, id ASC").
		Find(&sales).Error
	return sales, err
}

func (r *saleLedger) ListPage(ctx context.Context, params *pagination.PaginationParams) ([]entity.Sale, int64, error) {
	sales := []entity.Sale{}
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Sale{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Preload("Items", orderedItems).
		Order("date ASC, id ASC").
		Find(&sales).Error

	return sales, total, err
}

func (r *saleLedger) Clear(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := all.Delete(&entity.SaleItem{}).Error; err != nil {
			return err
		}
		return all.Delete(&entity.Sale{}).Error
	})
}
