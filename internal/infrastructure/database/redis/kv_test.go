package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/handmade-storefront/internal/domain/cart"
)

func newTestKV(t *testing.T, ttl time.Duration) (*KV, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = client.Close() })
	return NewKV(client, ttl), mr
}

func TestKV_GetMissingKey(t *testing.T) {
	kv, _ := newTestKV(t, time.Hour)

	_, err := kv.Get(context.Background(), "cart:session:nobody")

	assert.ErrorIs(t, err, cart.ErrNotFound)
}

func TestKV_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	kv, mr := newTestKV(t, time.Hour)

	require.NoError(t, kv.Set(ctx, "k", []byte(`[1,2]`)))
	got, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(got))
	assert.Equal(t, time.Hour, mr.TTL("k"))

	require.NoError(t, kv.Delete(ctx, "k"))
	require.NoError(t, kv.Delete(ctx, "k"))
	assert.False(t, mr.Exists("k"))
}

func TestKV_ExpiresAbandonedCarts(t *testing.T) {
	ctx := context.Background()
	kv, mr := newTestKV(t, time.Minute)
	require.NoError(t, kv.Set(ctx, "k", []byte(`[]`)))

	mr.FastForward(2 * time.Minute)

	_, err := kv.Get(ctx, "k")
	assert.ErrorIs(t, err, cart.ErrNotFound)
}

func TestKV_UnavailableServerIsAnError(t *testing.T) {
	kv, mr := newTestKV(t, 0)
	mr.Close()

	_, err := kv.Get(context.Background(), "k")

	require.Error(t, err)
	assert.NotErrorIs(t, err, cart.ErrNotFound)
}

func TestKV_BacksCartMirror(t *testing.T) {
	ctx := context.Background()
	kv, _ := newTestKV(t, time.Hour)
	logger, _ := logtest.NewNullLogger()

	s := cart.NewStore(ctx, kv, "cart:session:s1", logger)
	_, err := s.Add(ctx, cart.ProductSnapshot{ID: "p1", Name: "Mug", UnitPrice: decimal.NewFromInt(18)})
	require.NoError(t, err)
	_, err = s.Add(ctx, cart.ProductSnapshot{ID: "p1", Name: "Mug", UnitPrice: decimal.NewFromInt(18)})
	require.NoError(t, err)

	restored := cart.NewStore(ctx, kv, "cart:session:s1", logger)
	assert.Equal(t, 2, restored.Totals().ItemCount)
	assert.True(t, restored.Totals().Subtotal.Equal(decimal.NewFromInt(36)))
}
