package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/masterstock-api/internal/domain/entity"
)

// IdempotencyRepository defines the interface for idempotency key operations
type IdempotencyRepository interface {
	// GetByKey returns the stored response for key and user, or nil when absent or expired.
	GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error)
	// Create stores a processed response.
	Create(ctx context.Context, ikey *entity.IdempotencyKey) error
	// DeleteExpired removes expired keys.
	DeleteExpired(ctx context.Context) error
}
