package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"deliverypdv/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const notFoundMarker = "notfound"

// CachedTenantRepository is a read-through Redis cache in front of a
// TenantRepository. Tenants are resolved on every /v1/:tenantSlug request.
// Redis failures degrade to the wrapped repository.
type CachedTenantRepository struct {
	real TenantRepository
	rdb  *redis.Client
	ttl  time.Duration
}

func NewCachedTenantRepository(real TenantRepository, rdb *redis.Client, ttl time.Duration) *CachedTenantRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedTenantRepository{real: real, rdb: rdb, ttl: ttl}
}

var _ TenantRepository = (*CachedTenantRepository)(nil)

func (c *CachedTenantRepository) Create(ctx context.Context, t *model.Tenant) error {
	if err := c.real.Create(ctx, t); err != nil {
		return err
	}
	c.invalidate(ctx, t.Slug)
	return nil
}

func (c *CachedTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Tenant, error) {
	return c.real.FindByID(ctx, id)
}

func (c *CachedTenantRepository) FindBySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	key := tenantKey(slug)

	data, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if string(data) == notFoundMarker {
			return nil, ErrNotFound
		}
		var t model.Tenant
		if err := json.Unmarshal(data, &t); err == nil {
			return &t, nil
		}
		log.Warn().Err(err).Str("key", key).Msg("tenant_cache: corrupt entry, falling back to db")
	case errors.Is(err, redis.Nil):
	default:
		log.Warn().Err(err).Msg("tenant_cache: redis unavailable, falling back to db")
	}

	t, err := c.real.FindBySlug(ctx, slug)
	if errors.Is(err, ErrNotFound) {
		if setErr := c.rdb.Set(ctx, key, notFoundMarker, time.Minute).Err(); setErr != nil {
			log.Warn().Err(setErr).Msg("tenant_cache: failed to cache miss")
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(t); err == nil {
		if err := c.rdb.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
			log.Warn().Err(err).Msg("tenant_cache: failed to cache tenant")
		}
	}
	return t, nil
}

func (c *CachedTenantRepository) invalidate(ctx context.Context, slug string) {
	if err := c.rdb.Del(ctx, tenantKey(slug)).Err(); err != nil {
		log.Warn().Err(err).Str("slug", slug).Msg("tenant_cache: failed to invalidate")
	}
}

func tenantKey(slug string) string { return fmt.Sprintf("tenant:slug:%s", slug) }
