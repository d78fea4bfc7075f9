package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const defaultLoadTimeout = 5 * time.Second

// storeIfGen writes KEYS[1] only while the generation in KEYS[2] still equals
// the one read before loading. ARGV: generation, value, ttl in ms.
var storeIfGen = redis.NewScript(`
local cur = redis.call('GET', KEYS[2])
if cur == false then cur = '0' end
if cur ~= ARGV[1] then return 0 end
if tonumber(ARGV[3]) > 0 then
  redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
else
  redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`)

type Cache struct {
	RDB *redis.Client
	// LoadTimeout bounds a shared load, which outlives the caller that
	// started it. Zero means 5s.
	LoadTimeout time.Duration

	sf    singleflight.Group
	mu    sync.Mutex
	dirty map[string]struct{}
}

func New(addr, pass string, db int) *Cache {
	return &Cache{
		RDB:   redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}),
		dirty: map[string]struct{}{},
	}
}

func (c *Cache) Ping(ctx context.Context) error { return c.RDB.Ping(ctx).Err() }

func (c *Cache) Close() error { return c.RDB.Close() }

func genKey(key string) string { return key + ":gen" }

// GetOrLoad returns the cached bytes for key, or runs load once for all
// concurrent callers and stores the result for ttl. A Redis failure falls
// through to load. The result is not stored if key was invalidated while
// load ran.
func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	if c.isDirty(key) && c.Invalidate(ctx, key) != nil {
		return load(ctx)
	}
	if b, err := c.RDB.Get(ctx, key).Bytes(); err == nil {
		return b, nil
	}
	v, err, _ := c.sf.Do(key, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout())
		defer cancel()

		gen, gerr := c.RDB.Get(lctx, genKey(key)).Int64()
		b, e := load(lctx)
		if e != nil {
			return nil, e
		}
		if gerr == nil || errors.Is(gerr, redis.Nil) {
			_ = storeIfGen.Run(lctx, c.RDB, []string{key, genKey(key)}, gen, b, ttl.Milliseconds()).Err()
		}
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Invalidate drops keys and bumps their generation so loads already running
// cannot store what they read. If Redis cannot be reached the keys stay
// dirty: reads bypass the cache until an invalidation succeeds.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		c.sf.Forget(k)
	}
	_, err := c.RDB.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for _, k := range keys {
			p.Incr(ctx, genKey(k))
		}
		p.Del(ctx, keys...)
		return nil
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dirty == nil {
		c.dirty = map[string]struct{}{}
	}
	for _, k := range keys {
		if err != nil {
			c.dirty[k] = struct{}{}
		} else {
			delete(c.dirty, k)
		}
	}
	return err
}

func (c *Cache) isDirty(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.dirty[key]
	return ok
}

func (c *Cache) loadTimeout() time.Duration {
	if c.LoadTimeout > 0 {
		return c.LoadTimeout
	}
	return defaultLoadTimeout
}
