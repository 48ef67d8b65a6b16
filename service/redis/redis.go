package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bsm/redislock"
	"github.com/go-redis/redis/v8"

	"github.com/mikeydub/go-storefront/env"
	"github.com/mikeydub/go-storefront/service/tracing"
)

type ErrKeyNotFound struct {
	Key string
}

type redisDB int

type CacheConfig struct {
	database    redisDB
	displayName string
	keyPrefix   string
}

const (
	locks        redisDB = 0
	ledger       redisDB = 1
	reservations redisDB = 2
)

// Every cache is uniquely defined by its database and key prefix. Display names are used for logging.

var (
	ReservationLockCache = CacheConfig{database: locks, keyPrefix: "reservation", displayName: "reservationLocks"}
	LedgerCache          = CacheConfig{database: ledger, keyPrefix: "tokens", displayName: "ledger"}
	ReservationCache     = CacheConfig{database: reservations, keyPrefix: "reservation", displayName: "reservations"}
)

func newClient(config CacheConfig) *redis.Client {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	client := redis.NewClient(&redis.Options{
		Addr:     env.GetString(ctx, "REDIS_URL"),
		Password: env.GetString(ctx, "REDIS_PASS"),
		DB:       int(config.database),
	})
	client.AddHook(tracing.NewRedisHook(int(config.database), config.displayName, true))
	if err := client.Ping(ctx).Err(); err != nil {
		panic(err)
	}
	return client
}

// Cache represents an abstraction over a redis client
type Cache struct {
	client      *redis.Client
	keyPrefix   string
	displayName string
	scripter    *scripter
}

// NewCache creates a new redis cache
func NewCache(config CacheConfig) *Cache {
	return NewCacheFromClient(newClient(config), config.keyPrefix, config.displayName)
}

// NewCacheFromClient wraps an existing client, namespacing keys with the prefix
func NewCacheFromClient(client *redis.Client, keyPrefix, displayName string) *Cache {
	cache := &Cache{
		client:      client,
		keyPrefix:   keyPrefix,
		displayName: displayName,
	}

	cache.scripter = &scripter{cache: cache}

	return cache
}

func (c *Cache) Client() *redis.Client {
	return c.client
}

func (c *Cache) Prefix() string {
	return c.keyPrefix
}

func (c *Cache) Name() string {
	return c.displayName
}

// Set sets a value in the redis cache
func (c *Cache) Set(pCtx context.Context, key string, value []byte, expiration time.Duration) error {
	return c.client.Set(pCtx, c.getPrefixedKey(key), value, expiration).Err()
}

// SetNX sets a value in the redis cache if it doesn't already exist. Returns true if the key did not
// already exist and was set, false if the key did exist and therefore was not set.
func (c *Cache) SetNX(pCtx context.Context, key string, value []byte, expiration time.Duration) (bool, error) {
	cmd := c.client.SetNX(pCtx, c.getPrefixedKey(key), value, expiration)

	err := cmd.Err()
	if err != nil {
		return false, err
	}

	return cmd.Val(), nil
}

// Get gets a value from the redis cache
func (c *Cache) Get(pCtx context.Context, key string) ([]byte, error) {
	bs, err := c.client.Get(pCtx, c.getPrefixedKey(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrKeyNotFound{Key: key}
		}
		return nil, err
	}
	return bs, nil
}

// Keys returns every key under the cache's prefix, with the prefix removed
func (c *Cache) Keys(ctx context.Context) ([]string, error) {
	pattern := "*"
	if c.keyPrefix != "" {
		pattern = c.keyPrefix + ":*"
	}

	var keys []string
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), c.keyPrefix+":"))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

func (c *Cache) Delete(pCtx context.Context, key string) error {
	return c.client.Del(pCtx, c.getPrefixedKey(key)).Err()
}

// Close closes the underlying redis client
func (c *Cache) Close() error {
	return c.client.Close()
}

func (c *Cache) getPrefixedKey(key string) string {
	if c.keyPrefix == "" {
		return key
	}

	return c.keyPrefix + ":" + key
}

func (c *Cache) getPrefixedKeys(keys []string) []string {
	if c.keyPrefix == "" {
		return keys
	}

	prefixedKeys := make([]string, len(keys))
	for i, key := range keys {
		prefixedKeys[i] = c.keyPrefix + ":" + key
	}
	return prefixedKeys
}

func (e ErrKeyNotFound) Error() string {
	return fmt.Sprintf("key %s not found", e.Key)
}

// scripter is an implementation of the redis.Scripter interface that uses a Cache to namespace keys
type scripter struct {
	cache *Cache
}

func (s scripter) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	return s.cache.client.Eval(ctx, script, s.cache.getPrefixedKeys(keys), args...)
}

func (s scripter) EvalSha(ctx context.Context, sha1 string, keys []string, args ...interface{}) *redis.Cmd {
	return s.cache.client.EvalSha(ctx, sha1, s.cache.getPrefixedKeys(keys), args...)
}

func (s scripter) ScriptExists(ctx context.Context, scripts ...string) *redis.BoolSliceCmd {
	return s.cache.client.ScriptExists(ctx, scripts...)
}

func (s scripter) ScriptLoad(ctx context.Context, script string) *redis.StringCmd {
	return s.cache.client.ScriptLoad(ctx, script)
}

func NewLockClient(cache *Cache) *redislock.Client {
	return redislock.New(&redislockCacheClient{
		scripter: *cache.scripter,
	})
}

// redislockCacheClient is a minimal implementation of redislock.RedisClient that uses a Cache to namespace its keys.
type redislockCacheClient struct {
	scripter
}

func (r *redislockCacheClient) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	return r.cache.client.SetNX(ctx, r.cache.getPrefixedKey(key), value, expiration)
}
