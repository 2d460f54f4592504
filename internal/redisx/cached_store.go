package redisx

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"order-mesh/internal/orders"
)

// CachedStore decorates an order store with a read-through Redis cache on
// FindByID. The primary store stays the source of truth: writes go through
// and invalidate, cache misses and cache errors fall back to the primary.
type CachedStore struct {
	Primary orders.Store
	Redis   *redis.Client
}

func (s *CachedStore) Save(ctx context.Context, o *orders.Order) error {
	defer s.Redis.Del(ctx, fmt.Sprintf(KeyOrder, o.ID))
	return s.Primary.Save(ctx, o)
}

func (s *CachedStore) FindByID(ctx context.Context, id string) (*orders.Order, error) {
	key := fmt.Sprintf(KeyOrder, id)
	if b, err := s.Redis.Get(ctx, key).Bytes(); err == nil {
		var o orders.Order
		if err := json.Unmarshal(b, &o); err == nil {
			return &o, nil
		}
	}

	o, err := s.Primary.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(o); err == nil {
		_ = s.Redis.Set(ctx, key, b, TTLOrder).Err()
	}
	return o, nil
}

func (s *CachedStore) FindByCustomerEmail(ctx context.Context, email string) ([]*orders.Order, error) {
	return s.Primary.FindByCustomerEmail(ctx, email)
}
