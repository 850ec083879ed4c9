package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/greencycle/waste-pickup-exchange/internal/domain/vendor"
	"github.com/greencycle/waste-pickup-exchange/internal/testutil/fixtures"
	"github.com/greencycle/waste-pickup-exchange/internal/testutil/mocks"
)

func setupCache(t *testing.T) (*CachedDirectory, *mocks.Directory, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	inner := new(mocks.Directory)
	cached := NewCachedDirectory(inner, client, 10*time.Minute, zap.NewNop())
	return cached, inner, mr
}

func TestCachedDirectory_ListVendorsByCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("caches the first lookup", func(t *testing.T) {
		cached, inner, _ := setupCache(t)
		vendors := []*vendor.Vendor{fixtures.NewVendorBuilder().Build(t)}

		inner.On("ListVendorsByCategory", ctx, "Plastic").Return(vendors, nil).Once()

		first, err := cached.ListVendorsByCategory(ctx, "Plastic")
		require.NoError(t, err)
		require.Len(t, first, 1)

		// Second read is served from Redis; the mock allows one call only.
		second, err := cached.ListVendorsByCategory(ctx, "Plastic")
		require.NoError(t, err)
		require.Len(t, second, 1)
		assert.Equal(t, first[0].ID, second[0].ID)

		inner.AssertExpectations(t)
	})

	t.Run("expired entries fall back to the directory", func(t *testing.T) {
		cached, inner, mr := setupCache(t)
		vendors := []*vendor.Vendor{fixtures.NewVendorBuilder().Build(t)}

		inner.On("ListVendorsByCategory", ctx, "Plastic").Return(vendors, nil).Twice()

		_, err := cached.ListVendorsByCategory(ctx, "Plastic")
		require.NoError(t, err)

		mr.FastForward(11 * time.Minute)

		_, err = cached.ListVendorsByCategory(ctx, "Plastic")
		require.NoError(t, err)
		inner.AssertExpectations(t)
	})

	t.Run("corrupt entries are overwritten", func(t *testing.T) {
		cached, inner, mr := setupCache(t)
		vendors := []*vendor.Vendor{fixtures.NewVendorBuilder().Build(t)}

		require.NoError(t, mr.Set("wpe:vendors:category:Plastic", "not json"))
		inner.On("ListVendorsByCategory", ctx, "Plastic").Return(vendors, nil).Once()

		got, err := cached.ListVendorsByCategory(ctx, "Plastic")
		require.NoError(t, err)
		require.Len(t, got, 1)

		// The rewrite repaired the entry; no further source reads.
		_, err = cached.ListVendorsByCategory(ctx, "Plastic")
		require.NoError(t, err)
		inner.AssertExpectations(t)
	})

	t.Run("redis outage degrades to the directory", func(t *testing.T) {
		cached, inner, mr := setupCache(t)
		vendors := []*vendor.Vendor{fixtures.NewVendorBuilder().Build(t)}

		mr.Close()
		inner.On("ListVendorsByCategory", ctx, "Plastic").Return(vendors, nil)

		got, err := cached.ListVendorsByCategory(ctx, "Plastic")
		require.NoError(t, err)
		require.Len(t, got, 1)
	})
}

func TestCachedDirectory_Invalidate(t *testing.T) {
	ctx := context.Background()
	cached, inner, _ := setupCache(t)
	vendors := []*vendor.Vendor{fixtures.NewVendorBuilder().Build(t)}

	inner.On("ListVendorsByCategory", ctx, "Plastic").Return(vendors, nil).Twice()

	_, err := cached.ListVendorsByCategory(ctx, "Plastic")
	require.NoError(t, err)

	require.NoError(t, cached.Invalidate(ctx, "Plastic"))

	_, err = cached.ListVendorsByCategory(ctx, "Plastic")
	require.NoError(t, err)
	inner.AssertExpectations(t)
}

func TestCachedDirectory_IdentityLookupsPassThrough(t *testing.T) {
	ctx := context.Background()
	cached, inner, _ := setupCache(t)
	v := fixtures.NewVendorBuilder().Build(t)

	inner.On("GetVendor", ctx, v.ID).Return(v, nil).Twice()

	for i := 0; i < 2; i++ {
		got, err := cached.GetVendor(ctx, v.ID)
		require.NoError(t, err)
		assert.Equal(t, v.ID, got.ID)
	}
	inner.AssertExpectations(t)
}
