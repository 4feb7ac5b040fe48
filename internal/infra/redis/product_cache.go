package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"delivery-service/internal/domain"
	"delivery-service/internal/infra"

	goredis "github.com/go-redis/redis/v8"
)

var _ infra.ProductCache = (*ProductCache)(nil)

// ProductCache stores products as JSON under product:<id>. Products are immutable once
// created, so entries only expire by TTL.
type ProductCache struct {
	rdb *goredis.Client
	ttl time.Duration
}

func NewProductCache(rdb *goredis.Client, ttl time.Duration) *ProductCache {
	return &ProductCache{rdb: rdb, ttl: ttl}
}

func productKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

func (c *ProductCache) Get(ctx context.Context, id string) (*domain.Product, error) {
	cached, err := c.rdb.Get(ctx, productKey(id)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var p domain.Product
	if err := json.Unmarshal([]byte(cached), &p); err != nil {
		return nil, fmt.Errorf("decode cached product %s: %w", id, err)
	}
	return &p, nil
}

func (c *ProductCache) Set(ctx context.Context, product *domain.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, productKey(product.ID), data, c.ttl).Err()
}
