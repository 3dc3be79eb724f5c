package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sangkips/masterstock-api/internal/config"
	"github.com/sangkips/masterstock-api/internal/domain/entity"
	domainRepo "github.com/sangkips/masterstock-api/internal/domain/repository"
	"go.uber.org/zap"
)

// NewRedisClient connects to the server at cfg.URL and verifies it with a ping.
func NewRedisClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

type idempotencyRepository struct {
	rdb    redis.Cmdable
	logger *zap.Logger
}

// NewIdempotencyRepository stores idempotency keys in redis. Entries expire
// through the key TTL, so DeleteExpired has nothing to do.
func NewIdempotencyRepository(rdb redis.Cmdable, logger *zap.Logger) domainRepo.IdempotencyRepository {
	return &idempotencyRepository{rdb: rdb, logger: logger}
}

func (r *idempotencyRepository) idempotencyKey(userID uuid.UUID, key string) string {
	return fmt.Sprintf("idempotency:%s:%s", userID, key)
}

func (r *idempotencyRepository) GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	rkey := r.idempotencyKey(userID, key)

	raw, err := r.rdb.Get(ctx, rkey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("failed to read idempotency key", zap.String("key", rkey), zap.Error(err))
		return nil, err
	}

	var ikey entity.IdempotencyKey
	if err := json.Unmarshal(raw, &ikey); err != nil {
		return nil, fmt.Errorf("unmarshal idempotency key %s: %w", rkey, err)
	}
	if ikey.IsExpired() {
		return nil, nil
	}
	return &ikey, nil
}

func (r *idempotencyRepository) Create(ctx context.Context, ikey *entity.IdempotencyKey) error {
	if ikey.ID == uuid.Nil {
		ikey.ID = uuid.New()
	}
	if ikey.CreatedAt.IsZero() {
		ikey.CreatedAt = time.Now()
	}

	ttl := time.Until(ikey.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	b, err := json.Marshal(ikey)
	if err != nil {
		return fmt.Errorf("marshal idempotency key: %w", err)
	}

	rkey := r.idempotencyKey(ikey.UserID, ikey.Key)
	if err := r.rdb.Set(ctx, rkey, b, ttl).Err(); err != nil {
		r.logger.Error("failed to store idempotency key", zap.String("key", rkey), zap.Error(err))
		return err
	}
	return nil
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context) error {
	return nil
}
