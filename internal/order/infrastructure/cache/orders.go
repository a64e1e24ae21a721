package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/orderflow/order-service/internal/order/application"
	"github.com/orderflow/order-service/internal/order/domain"
)

// Store is the slice of the redis client the cache needs; tests fake it with
// redis.NewStringResult and friends.
type Store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// OrderRepository is a read-through decorator: single-order reads come from
// redis when fresh, and every mutation evicts. Cache failures degrade to the
// inner repository, never to the caller.
type OrderRepository struct {
	log   *slog.Logger
	inner application.OrderRepository
	store Store
	ttl   time.Duration
}

func NewOrderRepository(log *slog.Logger, inner application.OrderRepository, store Store, ttl time.Duration) *OrderRepository {
	return &OrderRepository{log: log, inner: inner, store: store, ttl: ttl}
}

func key(id string) string { return "order:" + id }

type cachedOrder struct {
	Order domain.Order `json:"order"`
}

func (r *OrderRepository) Get(ctx context.Context, id string) (domain.Order, error) {
	raw, err := r.store.Get(ctx, key(id)).Result()
	if err == nil {
		var c cachedOrder
		if err := json.Unmarshal([]byte(raw), &c); err == nil {
			return c.Order, nil
		}
		r.log.Warn("cache entry corrupt, falling through", "order_id", id)
	} else if !errors.Is(err, redis.Nil) {
		r.log.Warn("cache read failed, falling through", "order_id", id, "err", err)
	}

	o, err := r.inner.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}

	if payload, err := json.Marshal(cachedOrder{Order: o}); err == nil {
		if err := r.store.Set(ctx, key(id), payload, r.ttl).Err(); err != nil {
			r.log.Warn("cache write failed", "order_id", id, "err", err)
		}
	}
	return o, nil
}

func (r *OrderRepository) Save(ctx context.Context, o domain.Order) error {
	if err := r.inner.Save(ctx, o); err != nil {
		return err
	}
	r.evict(ctx, o.ID)
	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	if err := r.inner.Delete(ctx, id); err != nil {
		return err
	}
	r.evict(ctx, id)
	return nil
}

func (r *OrderRepository) PurgeCancelledBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	// Purged orders may linger in the cache until their TTL expires; the
	// retention sweep only removes long-cancelled rows, so that is fine.
	return r.inner.PurgeCancelledBefore(ctx, cutoff)
}

func (r *OrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	return r.inner.List(ctx)
}

func (r *OrderRepository) ListByCustomerEmail(ctx context.Context, email string) ([]domain.Order, error) {
	return r.inner.ListByCustomerEmail(ctx, email)
}

func (r *OrderRepository) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Order, error) {
	return r.inner.ListByStatus(ctx, status)
}

func (r *OrderRepository) ListWithoutCancelled(ctx context.Context) ([]domain.Order, error) {
	return r.inner.ListWithoutCancelled(ctx)
}

func (r *OrderRepository) evict(ctx context.Context, id string) {
	if err := r.store.Del(ctx, key(id)).Err(); err != nil {
		r.log.Warn("cache eviction failed", "order_id", id, "err", err)
	}
}
