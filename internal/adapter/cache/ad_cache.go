package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/domain"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/platform/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	adKeyPrefix     = "ad:"
	sellerKeyPrefix = "seller:ads:"
)

// AdCache stores resolved advertisement details in Redis.
type AdCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAdCache(client *redis.Client, ttl time.Duration) *AdCache {
	return &AdCache{client: client, ttl: ttl}
}

func adKey(id int64) string {
	return adKeyPrefix + strconv.FormatInt(id, 10)
}

// sellerKey names the set of cached ad ids that embed the seller summary.
func sellerKey(sellerID int64) string {
	return sellerKeyPrefix + strconv.FormatInt(sellerID, 10)
}

// Get returns nil, nil on a cache miss.
func (c *AdCache) Get(ctx context.Context, id int64) (*domain.AdvertisementDetail, error) {
	data, err := c.client.Get(ctx, adKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var detail domain.AdvertisementDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Set stores detail and records its id under the seller index. The index
// outlives every entry it lists.
func (c *AdCache) Set(ctx context.Context, detail *domain.AdvertisementDetail) error {
	data, err := json.Marshal(detail)
	if err != nil {
		return err
	}
	sk := sellerKey(detail.SellerID)
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, adKey(detail.ID), data, c.ttl)
		pipe.SAdd(ctx, sk, detail.ID)
		if c.ttl > 0 {
			pipe.Expire(ctx, sk, c.ttl)
		}
		return nil
	})
	return err
}

func (c *AdCache) Delete(ctx context.Context, id int64) error {
	return c.client.Del(ctx, adKey(id)).Err()
}

// DeleteBySeller drops every cached ad of the seller together with the index.
func (c *AdCache) DeleteBySeller(ctx context.Context, sellerID int64) error {
	sk := sellerKey(sellerID)
	ids, err := c.client.SMembers(ctx, sk).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, adKeyPrefix+id)
	}
	keys = append(keys, sk)
	return c.client.Del(ctx, keys...).Err()
}

// DetailCache is the cache contract used by CachingBackend.
type DetailCache interface {
	Get(ctx context.Context, id int64) (*domain.AdvertisementDetail, error)
	Set(ctx context.Context, detail *domain.AdvertisementDetail) error
	Delete(ctx context.Context, id int64) error
	DeleteBySeller(ctx context.Context, sellerID int64) error
}

// CachingBackend serves GetAdvertisement from the cache. Ad updates and
// deletes invalidate the ad; profile updates invalidate every ad of the
// seller. Cache failures are logged and never fail a call.
//
// A detail loaded before an invalidation is not written back: every
// invalidation bumps epoch, and fills only store when epoch is unchanged.
type CachingBackend struct {
	domain.Backend
	cache  DetailCache
	logger *logger.Logger

	mu    sync.RWMutex
	epoch uint64
}

func NewCachingBackend(next domain.Backend, cache DetailCache, log *logger.Logger) *CachingBackend {
	return &CachingBackend{Backend: next, cache: cache, logger: log.Named("AdCache")}
}

func (b *CachingBackend) GetAdvertisement(ctx context.Context, id int64) (*domain.AdvertisementDetail, error) {
	cached, err := b.cache.Get(ctx, id)
	if err != nil {
		b.logger.Warn("Cache read failed", zap.Int64("ad_id", id), zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	b.mu.RLock()
	epoch := b.epoch
	b.mu.RUnlock()

	detail, err := b.Backend.GetAdvertisement(ctx, id)
	if err != nil {
		return nil, err
	}
	b.fill(ctx, epoch, detail)
	return detail, nil
}

func (b *CachingBackend) fill(ctx context.Context, epoch uint64, detail *domain.AdvertisementDetail) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.epoch != epoch {
		b.logger.Debug("Skipping cache write after invalidation", zap.Int64("ad_id", detail.ID))
		return
	}
	if err := b.cache.Set(ctx, detail); err != nil {
		b.logger.Warn("Cache write failed", zap.Int64("ad_id", detail.ID), zap.Error(err))
	}
}

// bump invalidates fills that started before it. In-flight fills holding the
// read lock finish first, so the delete that follows removes them.
func (b *CachingBackend) bump() {
	b.mu.Lock()
	b.epoch++
	b.mu.Unlock()
}

func (b *CachingBackend) UpdateAdvertisement(ctx context.Context, id int64, payload domain.AdvertisementPayload, images []domain.ImageUpload, token string) (*domain.AdvertisementDetail, error) {
	detail, err := b.Backend.UpdateAdvertisement(ctx, id, payload, images, token)
	if err != nil {
		return nil, err
	}
	b.invalidate(ctx, id)
	return detail, nil
}

func (b *CachingBackend) DeleteAdvertisement(ctx context.Context, id int64, token string) error {
	if err := b.Backend.DeleteAdvertisement(ctx, id, token); err != nil {
		return err
	}
	b.invalidate(ctx, id)
	return nil
}

// UpdateUserProfile drops the cached ads of the profile owner, since each
// detail embeds the seller summary.
func (b *CachingBackend) UpdateUserProfile(ctx context.Context, payload domain.ProfilePayload, avatar *domain.ImageUpload, token string) (*domain.UserProfile, error) {
	profile, err := b.Backend.UpdateUserProfile(ctx, payload, avatar, token)
	if err != nil {
		return nil, err
	}
	b.bump()
	if err := b.cache.DeleteBySeller(ctx, profile.ID); err != nil {
		b.logger.Warn("Seller cache invalidation failed", zap.Int64("seller_id", profile.ID), zap.Error(err))
	}
	return profile, nil
}

func (b *CachingBackend) invalidate(ctx context.Context, id int64) {
	b.bump()
	if err := b.cache.Delete(ctx, id); err != nil {
		b.logger.Warn("Cache invalidation failed", zap.Int64("ad_id", id), zap.Error(err))
	}
}
