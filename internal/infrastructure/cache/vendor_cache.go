package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/greencycle/waste-pickup-exchange/internal/domain/requester"
	"github.com/greencycle/waste-pickup-exchange/internal/domain/vendor"
	"github.com/greencycle/waste-pickup-exchange/internal/infrastructure/config"
	"github.com/greencycle/waste-pickup-exchange/internal/service/auction"
)

const vendorCategoryKeyPrefix = "wpe:vendors:category:"

// NewRedisClient connects a go-redis client using the shared config.
func NewRedisClient(cfg *config.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.URL,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.Info("redis cache initialized",
		zap.String("addr", cfg.URL),
		zap.Int("db", cfg.DB))

	return client, nil
}

// CachedDirectory decorates a Directory with a Redis cache over the
// per-category vendor lists, the hot path of every bid submission.
// Identity lookups pass through uncached. Cache failures degrade to the
// underlying directory, never to an error.
type CachedDirectory struct {
	inner  auction.Directory
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedDirectory wraps a directory with category-list caching.
func NewCachedDirectory(inner auction.Directory, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedDirectory {
	return &CachedDirectory{inner: inner, client: client, ttl: ttl, logger: logger}
}

func (d *CachedDirectory) GetProfile(ctx context.Context, id uuid.UUID) (*requester.Profile, error) {
	return d.inner.GetProfile(ctx, id)
}

func (d *CachedDirectory) GetFactory(ctx context.Context, id uuid.UUID) (*requester.Factory, error) {
	return d.inner.GetFactory(ctx, id)
}

func (d *CachedDirectory) GetVendor(ctx context.Context, id uuid.UUID) (*vendor.Vendor, error) {
	return d.inner.GetVendor(ctx, id)
}

func (d *CachedDirectory) ListVendorsByCategory(ctx context.Context, category string) ([]*vendor.Vendor, error) {
	key := vendorCategoryKeyPrefix + category

	cached, err := d.client.Get(ctx, key).Bytes()
	if err == nil {
		var vendors []*vendor.Vendor
		if err := json.Unmarshal(cached, &vendors); err == nil {
			return vendors, nil
		}
		// Corrupt entry; fall through to the source and overwrite.
		d.logger.Warn("dropping corrupt vendor cache entry", zap.String("key", key))
	} else if err != redis.Nil {
		d.logger.Warn("vendor cache read failed", zap.String("key", key), zap.Error(err))
	}

	vendors, err := d.inner.ListVendorsByCategory(ctx, category)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(vendors); err == nil {
		if err := d.client.Set(ctx, key, payload, d.ttl).Err(); err != nil {
			d.logger.Warn("vendor cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	return vendors, nil
}

// Invalidate drops the cached list for a category, for callers that
// know the directory changed.
func (d *CachedDirectory) Invalidate(ctx context.Context, category string) error {
	return d.client.Del(ctx, vendorCategoryKeyPrefix+category).Err()
}
