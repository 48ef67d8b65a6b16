package reservation

import (
	"context"
	"strconv"
	"time"

	"github.com/bsm/redislock"

	"github.com/mikeydub/go-storefront/service/logger"
	"github.com/mikeydub/go-storefront/service/persist"
	"github.com/mikeydub/go-storefront/service/redis"
)

const lockTTL = 5 * time.Second

// RedisStore keeps one key per reserved id holding the holder's address, expiring with the reservation
type RedisStore struct {
	cache *redis.Cache
	locks *redislock.Client
}

func NewRedisStore(cache *redis.Cache, locks *redislock.Client) *RedisStore {
	return &RedisStore{cache: cache, locks: locks}
}

func (r *RedisStore) Reserve(ctx context.Context, id int, holder persist.EthereumAddress, until time.Time) (bool, error) {
	ttl := time.Until(until)
	if ttl <= 0 {
		return false, nil
	}

	key := strconv.Itoa(id)

	lock, err := r.locks.Obtain(ctx, key, lockTTL, nil)
	if err == redislock.ErrNotObtained {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer func() {
		if err := lock.Release(ctx); err != nil && err != redislock.ErrLockNotHeld {
			logger.For(ctx).WithError(err).Warnf("failed to release reservation lock for %d", id)
		}
	}()

	value := []byte(holder.String())

	ok, err := r.cache.SetNX(ctx, key, value, ttl)
	if err != nil || ok {
		return ok, err
	}

	current, err := r.cache.Get(ctx, key)
	if _, expired := err.(redis.ErrKeyNotFound); expired {
		return r.cache.SetNX(ctx, key, value, ttl)
	}
	if err != nil {
		return false, err
	}
	if !SameHolder(persist.EthereumAddress(current), holder) {
		return false, nil
	}

	return true, r.cache.Set(ctx, key, value, ttl)
}

func (r *RedisStore) Release(ctx context.Context, id int) error {
	return r.cache.Delete(ctx, strconv.Itoa(id))
}

// Reserved lists every live key. Redis expires keys on its own so now is not consulted.
func (r *RedisStore) Reserved(ctx context.Context, now time.Time) ([]int, error) {
	keys, err := r.cache.Keys(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(keys))
	for _, k := range keys {
		id, err := strconv.Atoi(k)
		if err != nil {
			logger.For(ctx).Warnf("ignoring unexpected reservation key %s", k)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
