package cache

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/sangkips/masterstock-api/internal/config"
	"github.com/sangkips/masterstock-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *config.RedisConfig) {
	t.Helper()
	srv := miniredis.RunT(t)
	return srv, &config.RedisConfig{URL: "redis://" + srv.Addr() + "/0"}
}

func TestNewRedisClient(t *testing.T) {
	_, cfg := newTestClient(t)

	client, err := NewRedisClient(context.Background(), cfg)
	require.NoError(t, err)
	defer client.Close()

	_, err = NewRedisClient(context.Background(), &config.RedisConfig{URL: "not-a-url"})
	assert.Error(t, err)
}

func TestIdempotencyRepository(t *testing.T) {
	ctx := context.Background()
	srv, cfg := newTestClient(t)
	client, err := NewRedisClient(ctx, cfg)
	require.NoError(t, err)
	defer client.Close()

	repo := NewIdempotencyRepository(client, zaptest.NewLogger(t))
	user := uuid.New()

	got, err := repo.GetByKey(ctx, "checkout-1", user)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.Create(ctx, &entity.IdempotencyKey{
		Key:          "checkout-1",
		UserID:       user,
		Endpoint:     "/api/v1/cart/checkout",
		ResponseCode: http.StatusCreated,
		ResponseBody: `{"success":true}`,
		ExpiresAt:    time.Now().Add(time.Hour),
	}))

	got, err = repo.GetByKey(ctx, "checkout-1", user)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, http.StatusCreated, got.ResponseCode)
	assert.Equal(t, `{"success":true}`, got.ResponseBody)

	other, err := repo.GetByKey(ctx, "checkout-1", uuid.New())
	require.NoError(t, err)
	assert.Nil(t, other, "keys are scoped per user")

	srv.FastForward(2 * time.Hour)
	got, err = repo.GetByKey(ctx, "checkout-1", user)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.NoError(t, repo.DeleteExpired(ctx))
}
