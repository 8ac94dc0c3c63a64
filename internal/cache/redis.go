package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"loyalty-backend/internal/config"
)

// Catalog cache keys. Balances and eligibility are never cached: both
// are purchase-history dependent and must be computed fresh per request.
const (
	catalogKeyFmt = "catalog:category:%d"
	bannersRawKey = "catalog:banners"
)

var client *redis.Client

// Init initializes the Redis connection. The cache is optional: when
// Redis is unreachable every helper degrades to a no-op.
func Init(cfg *config.Config) error {
	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		client = nil
		return err
	}
	return nil
}

// GetClient returns the Redis client (nil when the cache is disabled)
func GetClient() *redis.Client {
	return client
}

// hashCredentials creates a hash of cnpj+password for the auth cache key
func hashCredentials(cnpj, password string) string {
	h := sha256.New()
	h.Write([]byte(cnpj + ":" + password))
	return "auth:" + hex.EncodeToString(h.Sum(nil))[:32]
}

// GetCachedAuth checks if agency credentials are cached and valid
func GetCachedAuth(ctx context.Context, cnpj, password string) (int64, bool) {
	if client == nil {
		return 0, false
	}
	key := hashCredentials(cnpj, password)
	agencyID, err := client.Get(ctx, key).Int64()
	if err != nil {
		return 0, false
	}
	return agencyID, true
}

// CacheAuth caches valid credentials for 15 minutes
func CacheAuth(ctx context.Context, cnpj, password string, agencyID int64) {
	if client == nil {
		return
	}
	client.Set(ctx, hashCredentials(cnpj, password), agencyID, 15*time.Minute)
}

// GetCachedCatalog returns the cached raw product list for a category
func GetCachedCatalog(ctx context.Context, categoryID int64) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, fmt.Sprintf(catalogKeyFmt, categoryID)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// CacheCatalog stores the raw product list for a category (5 minutes).
// Only the lot/product rows are cached; per-agency eligibility is
// always recomputed on top of them.
func CacheCatalog(ctx context.Context, categoryID int64, data []byte) {
	if client == nil {
		return
	}
	client.Set(ctx, fmt.Sprintf(catalogKeyFmt, categoryID), data, 5*time.Minute)
}

// GetCachedBanners returns the cached raw banner list
func GetCachedBanners(ctx context.Context) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, bannersRawKey).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// CacheBanners stores the raw banner list (5 minutes)
func CacheBanners(ctx context.Context, data []byte) {
	if client == nil {
		return
	}
	client.Set(ctx, bannersRawKey, data, 5*time.Minute)
}

// InvalidateCatalog drops catalog caches after an admin write
func InvalidateCatalog(ctx context.Context) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, "catalog:*", 100).Iterator()
	for iter.Next(ctx) {
		client.Del(ctx, iter.Val())
	}
}
