package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mikeydub/go-storefront/service/logger"
	"github.com/mikeydub/go-storefront/service/persist"
	"github.com/mikeydub/go-storefront/service/redis"
)

// Cache is the subset of redis.Cache used to store ledger snapshots
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, expiration time.Duration) error
}

// CachedLedger serves ledger snapshots from a cache and collapses concurrent misses into one upstream query
type CachedLedger struct {
	ledger Ledger
	cache  Cache
	ttl    time.Duration
	group  singleflight.Group
}

func NewCachedLedger(ledger Ledger, cache Cache, ttl time.Duration) *CachedLedger {
	return &CachedLedger{ledger: ledger, cache: cache, ttl: ttl}
}

func (c *CachedLedger) GetTokensByCollection(ctx context.Context, collection persist.EthereumAddress) ([]IssuedToken, error) {
	key := strings.ToLower(collection.String())

	bs, err := c.cache.Get(ctx, key)
	if err == nil {
		var tokens []IssuedToken
		if err := json.Unmarshal(bs, &tokens); err == nil {
			return tokens, nil
		}
		logger.For(ctx).Warnf("discarding corrupt ledger snapshot for %s", collection)
	} else if !errors.As(err, &redis.ErrKeyNotFound{}) {
		logger.For(ctx).WithError(err).Warn("failed to read ledger cache")
	}

	res, err, _ := c.group.Do(key, func() (interface{}, error) {
		tokens, err := c.ledger.GetTokensByCollection(ctx, collection)
		if err != nil {
			return nil, err
		}

		bs, err := json.Marshal(tokens)
		if err != nil {
			return nil, err
		}

		if err := c.cache.Set(ctx, key, bs, c.ttl); err != nil {
			logger.For(ctx).WithError(err).Warn("failed to write ledger cache")
		}

		return tokens, nil
	})
	if err != nil {
		return nil, err
	}

	return res.([]IssuedToken), nil
}
