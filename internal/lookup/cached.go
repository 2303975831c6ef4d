// internal/lookup/cached.go
package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"caab-workers/internal/common/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const keyPrefix = "lookup:"

// Cached is a cache-aside decorator over another Resolver. Unknown codes are not cached, and a
// failing cache degrades to the inner resolver.
type Cached struct {
	inner Resolver
	rdb   redis.UniversalClient
	ttl   time.Duration
}

func NewCached(inner Resolver, rdb redis.UniversalClient, ttl time.Duration) *Cached {
	return &Cached{inner: inner, rdb: rdb, ttl: ttl}
}

func (c *Cached) Value(ctx context.Context, domain Domain, code string) (Value, error) {
	key := keyPrefix + string(domain) + ":" + code
	return cacheAside(ctx, c, key, func() (Value, error) {
		return c.inner.Value(ctx, domain, code)
	})
}

func (c *Cached) Provider(ctx context.Context, id int) (Provider, error) {
	key := keyPrefix + "provider:" + strconv.Itoa(id)
	return cacheAside(ctx, c, key, func() (Provider, error) {
		return c.inner.Provider(ctx, id)
	})
}

func (c *Cached) PriorAuthorityType(ctx context.Context, code string) (PriorAuthorityType, error) {
	key := keyPrefix + "prior-authority-type:" + code
	return cacheAside(ctx, c, key, func() (PriorAuthorityType, error) {
		return c.inner.PriorAuthorityType(ctx, code)
	})
}

func (c *Cached) CostLimitation(ctx context.Context, q ScopeLimitationQuery) (decimal.Decimal, error) {
	key := fmt.Sprintf("%scost-limitation:%s:%s:%s:%s:%s:%t", keyPrefix,
		q.CategoryOfLaw, q.MatterType, q.ProceedingType, q.LevelOfService, q.ScopeLimitation, q.Emergency)
	return cacheAside(ctx, c, key, func() (decimal.Decimal, error) {
		return c.inner.CostLimitation(ctx, q)
	})
}

func cacheAside[T any](ctx context.Context, c *Cached, key string, load func() (T, error)) (T, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var v T
		if json.Unmarshal(raw, &v) == nil {
			metrics.LookupCache.WithLabelValues("hit").Inc()
			return v, nil
		}
		metrics.LookupCache.WithLabelValues("corrupt").Inc()
	case errors.Is(err, redis.Nil):
		metrics.LookupCache.WithLabelValues("miss").Inc()
	default:
		metrics.LookupCache.WithLabelValues("error").Inc()
	}

	v, err := load()
	if err != nil {
		return v, err
	}
	if data, err := json.Marshal(v); err == nil {
		c.rdb.Set(ctx, key, data, c.ttl)
	}
	return v, nil
}
