package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"ordena.org/internal/obs"
	"ordena.org/internal/order"
)

const keyPrefix = "ordena:"

// Redis is a shared cache backed by a redis instance. All methods are
// best-effort: a redis failure degrades to a cache miss and is logged, never
// surfaced to the caller.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Redis{client: client, ttl: ttl}
}

var _ order.ListCache = (*Redis)(nil)

func (r *Redis) Get(ctx context.Context, key string) ([]order.Order, bool) {
	data, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logError("get", err)
		}
		return nil, false
	}
	var orders []order.Order
	if err := json.Unmarshal(data, &orders); err != nil {
		r.logError("decode", err)
		return nil, false
	}
	return orders, true
}

func (r *Redis) Set(ctx context.Context, key string, orders []order.Order) {
	data, err := json.Marshal(orders)
	if err != nil {
		r.logError("encode", err)
		return
	}
	if err := r.client.Set(ctx, keyPrefix+key, data, r.ttl).Err(); err != nil {
		r.logError("set", err)
	}
}

func (r *Redis) Invalidate(ctx context.Context) {
	iter := r.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		r.logError("scan", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.logError("del", err)
	}
}

func (r *Redis) logError(op string, err error) {
	obs.LogEntry(map[string]any{
		"ts":    time.Now().UTC().Format(time.RFC3339Nano),
		"level": "warn",
		"msg":   "order list cache degraded",
		"op":    op,
		"error": err.Error(),
	})
}
