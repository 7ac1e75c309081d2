package cart

import (
	"context"
	"errors"
	"time"

	"github.com/perxlab/catalog-widget/pkg/config"
	pkgerrors "github.com/perxlab/catalog-widget/pkg/errors"
	"github.com/perxlab/catalog-widget/pkg/redis"
)

// redisCommands is the slice of the redis wrapper the storage needs.
type redisCommands interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// RedisStorage persists the cart blob under a namespaced redis key. The
// timestamp inside the blob stays authoritative for expiry; the redis TTL is
// set alongside so abandoned carts age out of redis on their own.
type RedisStorage struct {
	client redisCommands
	key    string
	ttl    time.Duration
	now    func() time.Time
}

// RedisParams groups dependencies for the redis storage backend.
type RedisParams struct {
	Client redisCommands
	Cart   config.CartConfig
	Now    func() time.Time
}

// NewRedisStorage builds a redis-backed cart storage.
func NewRedisStorage(params RedisParams) (*RedisStorage, error) {
	if params.Client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "redis client is required")
	}
	key := params.Cart.StorageKey
	if key == "" {
		key = "perx_cart"
	}
	ttl := params.Cart.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &RedisStorage{
		client: params.Client,
		key:    redis.CartKey(key),
		ttl:    ttl,
		now:    now,
	}, nil
}

// Load fetches and decodes the blob, deleting the key when expired.
func (r *RedisStorage) Load(ctx context.Context) ([]Entry, error) {
	raw, err := r.client.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart blob")
	}
	entries, expired := decodeCart([]byte(raw), r.now(), r.ttl)
	if expired {
		if delErr := r.client.Del(ctx, r.key); delErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, delErr, "drop expired cart blob")
		}
		return nil, nil
	}
	return entries, nil
}

// Save overwrites the blob and refreshes the redis-side TTL.
func (r *RedisStorage) Save(ctx context.Context, entries []Entry) error {
	raw, err := encodeCart(entries, r.now())
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, string(raw), r.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart blob")
	}
	return nil
}

// Clear removes the key entirely.
func (r *RedisStorage) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart blob")
	}
	return nil
}
