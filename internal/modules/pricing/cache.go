// README: Redis cache-aside wrapper around another rules source.
package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"cabfare/internal/metrics"
)

const activeRulesKey = "pricing:rules:active"

type CachedSource struct {
	next   RulesSource
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedSource(next RulesSource, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSource{next: next, redis: client, ttl: ttl, logger: logger}
}

// Rules serves the cached document when present. Redis failures degrade to
// the underlying source rather than failing the quote.
func (c *CachedSource) Rules(ctx context.Context) (*PricingRules, error) {
	data, err := c.redis.Get(ctx, activeRulesKey).Bytes()
	switch {
	case err == nil:
		var r PricingRules
		uerr := json.Unmarshal(data, &r)
		if uerr == nil {
			metrics.RulesCacheHits.Inc()
			return &r, nil
		}
		c.logger.Warn("discarding undecodable cached rules", zap.Error(uerr))
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("rules cache read failed", zap.Error(err))
	}
	metrics.RulesCacheMisses.Inc()

	r, err := c.next.Rules(ctx)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(r); err == nil {
		if err := c.redis.Set(ctx, activeRulesKey, data, c.ttl).Err(); err != nil {
			c.logger.Warn("rules cache write failed", zap.Error(err))
		}
	}
	return r, nil
}

// Invalidate drops the cached document, e.g. after a new version is activated.
func (c *CachedSource) Invalidate(ctx context.Context) error {
	return c.redis.Del(ctx, activeRulesKey).Err()
}
