package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"digital-storefront/internal/domain/model"
	"digital-storefront/internal/domain/ports/repository"
	"digital-storefront/internal/infra/metrics"
	red "digital-storefront/internal/infra/redis"
)

var _ repository.ProductRepository = (*productRepoCacheDecorator)(nil)

const productListKey = "products:active"

// productRepoCacheDecorator caches catalog reads. Lookups inside a DB
// transaction bypass the cache so fulfillment always sees committed rows.
type productRepoCacheDecorator struct {
	inner  repository.ProductRepository
	cache  red.RedisClient
	ttl    time.Duration
	logger *zerolog.Logger
}

func NewProductRepoCacheDecorator(inner repository.ProductRepository, cache red.RedisClient, ttl time.Duration, logger *zerolog.Logger) repository.ProductRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	l := logger.With().Str("component", "product_cache").Logger()
	return &productRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl, logger: &l}
}

func productKey(id string) string { return "product:" + id }

func (d *productRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Product, error) {
	if tx != nil {
		return d.inner.FindByID(ctx, tx, id)
	}
	key := productKey(id)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		var p model.Product
		if json.Unmarshal([]byte(val), &p) == nil {
			metrics.IncCacheRequest("product", "hit")
			return &p, nil
		}
	} else if !red.IsMiss(err) {
		d.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}

	metrics.IncCacheRequest("product", "miss")
	p, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(p); err == nil {
		_ = d.cache.Set(ctx, key, b, d.ttl)
	}
	return p, nil
}

// Only the public active listing is cached.
func (d *productRepoCacheDecorator) List(ctx context.Context, tx repository.Tx, onlyActive bool) ([]*model.Product, error) {
	if !onlyActive || tx != nil {
		return d.inner.List(ctx, tx, onlyActive)
	}
	val, err := d.cache.Get(ctx, productListKey)
	if err == nil {
		var list []*model.Product
		if json.Unmarshal([]byte(val), &list) == nil {
			metrics.IncCacheRequest("product_list", "hit")
			return list, nil
		}
	} else if !red.IsMiss(err) {
		d.logger.Warn().Err(err).Msg("cache read failed")
	}

	metrics.IncCacheRequest("product_list", "miss")
	list, err := d.inner.List(ctx, tx, onlyActive)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(list); err == nil {
		_ = d.cache.Set(ctx, productListKey, b, d.ttl)
	}
	return list, nil
}

// Save writes through and invalidates both the entry and the listing.
// Count is only used by the admin dashboard and is not cached.
func (d *productRepoCacheDecorator) Count(ctx context.Context, tx repository.Tx) (int, error) {
	return d.inner.Count(ctx, tx)
}

func (d *productRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, p *model.Product) error {
	if err := d.inner.Save(ctx, tx, p); err != nil {
		return err
	}
	if err := d.cache.Del(ctx, productKey(p.ID), productListKey); err != nil {
		d.logger.Warn().Err(err).Str("product_id", p.ID).Msg("cache invalidation failed")
	}
	return nil
}
