package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sangkips/masterstock-api/internal/domain/entity"
	domainRepo "github.com/sangkips/masterstock-api/internal/domain/repository"
	"github.com/sangkips/masterstock-api/pkg/apperror"
	"gorm.io/gorm"
)

type catalogStore struct {
	db *gorm.DB
}

// NewCatalogStore creates a PostgreSQL-backed catalog
func NewCatalogStore(db *gorm.DB) domainRepo.CatalogStore {
	return &catalogStore{db: db}
}

func (r *catalogStore) List(ctx context.Context) ([]entity.Product, error) {
	products := []entity.Product{}
	err := r.db.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Find(&products).Error
	return products, err
}

func (r *catalogStore) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *catalogStore) ListLowStock(ctx context.Context, threshold int) ([]entity.Product, error) {
	products := []entity.Product{}
	err := r.db.WithContext(ctx).
		Where("quantity <= ?", threshold).
		Order("created_at ASC, id ASC").
		Find(&products).Error
	return products, err
}

func (r *catalogStore) Create(ctx context.Context, product *entity.Product) error {
	return duplicateAsConflict(r.db.WithContext(ctx).Create(product).Error, "product "+product.ID+" already exists")
}

func (r *catalogStore) CreateBatch(ctx context.Context, products []entity.Product) error {
	if len(products) == 0 {
		return nil
	}
	// Rows share one statement, so stagger created_at to keep file order.
	base := time.Now()
	for i := range products {
		if products[i].CreatedAt.IsZero() {
			products[i].CreatedAt = base.Add(time.Duration(i) * time.Microsecond)
		}
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return duplicateAsConflict(tx.Create(&products).Error, "duplicate product id in batch")
	})
}

func (r *catalogStore) Update(ctx context.Context, product *entity.Product) error {
	product.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"name":       product.Name,
			"price":      product.Price,
			"quantity":   product.Quantity,
			"updated_at": product.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.NewNotFoundError("Product")
	}
	return nil
}

func (r *catalogStore) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&entity.Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.NewNotFoundError("Product")
	}
	return nil
}

func (r *catalogStore) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&entity.Product{}).Error
}

// DecrementQuantity performs a conditional update so concurrent checkouts
// can never drive stock below zero.
func (r *catalogStore) DecrementQuantity(ctx context.Context, id string, amount int) (int, error) {
	if amount < 0 {
		return 0, apperror.NewBadRequestError("decrement amount must not be negative")
	}

	var remaining int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.Product{}).
			Where("id = ? AND quantity >= ?", id, amount).
			Updates(map[string]interface{}{
				"quantity":   gorm.Expr("quantity - ?", amount),
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}

		var product entity.Product
		if err := tx.Select("quantity").First(&product, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NewNotFoundError("Product")
			}
			return err
		}
		remaining = product.Quantity

		if res.RowsAffected == 0 {
			return apperror.NewOutOfStockError(id, amount, product.Quantity)
		}
		return nil
	})
	return remaining, err
}

func duplicateAsConflict(err error, message string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.NewConflictError(message)
	}
	return err
}
