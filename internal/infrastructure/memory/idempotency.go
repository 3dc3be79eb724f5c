package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/masterstock-api/internal/domain/entity"
	domainRepo "github.com/sangkips/masterstock-api/internal/domain/repository"
)

type idempotencyKey struct {
	userID uuid.UUID
	key    string
}

type idempotencyRepository struct {
	mu   sync.Mutex
	keys map[idempotencyKey]entity.IdempotencyKey
}

// NewIdempotencyRepository creates an in-memory idempotency key store
func NewIdempotencyRepository() domainRepo.IdempotencyRepository {
	return &idempotencyRepository{keys: make(map[idempotencyKey]entity.IdempotencyKey)}
}

func (r *idempotencyRepository) GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := idempotencyKey{userID: userID, key: key}
	stored, ok := r.keys[k]
	if !ok {
		return nil, nil
	}
	if stored.IsExpired() {
		delete(r.keys, k)
		return nil, nil
	}
	return &stored, nil
}

func (r *idempotencyRepository) Create(ctx context.Context, ikey *entity.IdempotencyKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ikey.ID == uuid.Nil {
		ikey.ID = uuid.New()
	}
	if ikey.CreatedAt.IsZero() {
		ikey.CreatedAt = time.Now()
	}
	r.keys[idempotencyKey{userID: ikey.UserID, key: ikey.Key}] = *ikey
	return nil
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k, v := range r.keys {
		if v.IsExpired() {
			delete(r.keys, k)
		}
	}
	return nil
}
