package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ainan-ahmed/EcommForAll-sub001/internal/cart/domain"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisCache instance
func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cache := NewRedisCache(client)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return cache, mr, cleanup
}

func testCart(userID uuid.UUID) *domain.Cart {
	price, _ := decimal.NewFromString("9.99")
	return &domain.Cart{
		ID:      uuid.New(),
		UserID:  userID,
		Version: 2,
		Items: []domain.CartItem{
			{ID: uuid.New(), ProductID: uuid.New(), Quantity: 2, UnitPrice: price},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestGet_Success(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	userID := uuid.New()
	cart := testCart(userID)

	cartJSON, _ := json.Marshal(cart)
	mr.Set(cacheKey(userID), string(cartJSON))

	result, err := cache.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, userID, result.UserID)
	assert.Equal(t, int64(2), result.Version)
	require.Len(t, result.Items, 1)
	assert.Equal(t, 2, result.Items[0].Quantity)
	assert.True(t, result.Items[0].UnitPrice.Equal(cart.Items[0].UnitPrice))
}

func TestGet_CacheMiss(t *testing.T) {
	cache, _, cleanup := setupTestRedis(t)
	defer cleanup()

	result, err := cache.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, result)
}

func TestGet_InvalidJSON(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	userID := uuid.New()
	mr.Set(cacheKey(userID), "not json")

	result, err := cache.Get(context.Background(), userID)
	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestSet_RoundTrip(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	userID := uuid.New()
	cart := testCart(userID)

	require.NoError(t, cache.Set(ctx, userID, cart))

	// The entry expires somewhere in the base TTL plus jitter window.
	ttl := mr.TTL(cacheKey(userID))
	assert.GreaterOrEqual(t, ttl, 15*time.Minute)
	assert.LessOrEqual(t, ttl, 20*time.Minute)

	result, err := cache.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, result.ID)
}

func TestDelete(t *testing.T) {
	cache, _, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, cache.Set(ctx, userID, testCart(userID)))
	require.NoError(t, cache.Delete(ctx, userID))

	_, err := cache.Get(ctx, userID)
	assert.ErrorIs(t, err, ErrCacheMiss)

	// Deleting an absent key is not an error.
	require.NoError(t, cache.Delete(ctx, uuid.New()))
}
