package repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/storefront/internal/models"
)

var ErrCacheMiss = errors.New("cache miss")

// RedisProductCache keeps JSON copies of products under product:<id>.
type RedisProductCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func productKey(id uuid.UUID) string { return "product:" + id.String() }

func (c *RedisProductCache) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	raw, err := c.Client.Get(ctx, productKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var p models.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *RedisProductCache) Set(ctx context.Context, p *models.Product) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, productKey(p.ID), raw, c.TTL).Err()
}

func (c *RedisProductCache) Delete(ctx context.Context, id uuid.UUID) error {
	return c.Client.Del(ctx, productKey(id)).Err()
}
