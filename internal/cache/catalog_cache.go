package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/behuman/cascade/internal/model"
)

// CatalogCache caches immutable assessment catalogs. The TTL is the reload
// boundary: a reseeded catalog becomes visible within one TTL.
type CatalogCache interface {
	Set(ctx context.Context, catalog *model.Catalog) error
	Get(ctx context.Context, id string) (*model.Catalog, error)
}

type catalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCatalogCache creates a new catalog cache.
func NewCatalogCache(client *redis.Client) CatalogCache {
	return &catalogCache{
		client: client,
		ttl:    time.Hour,
	}
}

func (c *catalogCache) key(id string) string {
	return "catalog:" + id
}

func (c *catalogCache) Set(ctx context.Context, catalog *model.Catalog) error {
	data, err := json.Marshal(catalog)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(catalog.ID), data, c.ttl).Err()
}

func (c *catalogCache) Get(ctx context.Context, id string) (*model.Catalog, error) {
	data, err := c.client.Get(ctx, c.key(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var catalog model.Catalog
	if err := json.Unmarshal([]byte(data), &catalog); err != nil {
		return nil, err
	}
	return &catalog, nil
}
