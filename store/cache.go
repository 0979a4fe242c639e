package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"grocery-backend/model"
)

const (
	productKeyPrefix = "product:"
	productsAllKey   = "products:all"
)

// CachedStore is a read-through redis cache over the catalog read paths
// of a Store. Writes delegate to the inner store and invalidate. Cache
// failures are logged and degrade to the database; they never fail the
// request. Checkout and cart paths pass straight through so their
// transactional guarantees are untouched.
type CachedStore struct {
	Store
	rdb *redis.Client
	log *zap.Logger
	ttl time.Duration
}

func NewCachedStore(inner Store, rdb *redis.Client, log *zap.Logger) *CachedStore {
	return &CachedStore{
		Store: inner,
		rdb:   rdb,
		log:   log,
		ttl:   5 * time.Minute,
	}
}

func (c *CachedStore) GetProduct(ctx context.Context, id int64) (ProductRow, error) {
	key := fmt.Sprintf("%s%d", productKeyPrefix, id)

	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var p ProductRow
		if uerr := json.Unmarshal(data, &p); uerr == nil {
			return p, nil
		}
		c.log.Warn("bad cached product, falling back to db", zap.String("key", key))
	} else if err != redis.Nil {
		c.log.Warn("redis get failed, falling back to db", zap.Error(err))
	}

	p, err := c.Store.GetProduct(ctx, id)
	if err != nil {
		return p, err
	}
	if data, merr := json.Marshal(p); merr == nil {
		if serr := c.rdb.Set(ctx, key, data, c.ttl).Err(); serr != nil {
			c.log.Warn("failed to cache product", zap.Error(serr))
		}
	}
	return p, nil
}

func (c *CachedStore) ListProducts(ctx context.Context) ([]ProductRow, error) {
	data, err := c.rdb.Get(ctx, productsAllKey).Bytes()
	if err == nil {
		var out []ProductRow
		if uerr := json.Unmarshal(data, &out); uerr == nil {
			return out, nil
		}
	} else if err != redis.Nil {
		c.log.Warn("redis get failed, falling back to db", zap.Error(err))
	}

	out, err := c.Store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	if data, merr := json.Marshal(out); merr == nil {
		if serr := c.rdb.Set(ctx, productsAllKey, data, c.ttl).Err(); serr != nil {
			c.log.Warn("failed to cache products", zap.Error(serr))
		}
	}
	return out, nil
}

func (c *CachedStore) CreateProduct(ctx context.Context, name string, sellingPrice, costPrice int64, stock int, smallCategoryID, merchantID int64) (ProductRow, error) {
	c.invalidate(ctx, productsAllKey)
	return c.Store.CreateProduct(ctx, name, sellingPrice, costPrice, stock, smallCategoryID, merchantID)
}

func (c *CachedStore) Restock(ctx context.Context, productID int64, qty int) (ProductRow, error) {
	p, err := c.Store.Restock(ctx, productID, qty)
	c.invalidate(ctx, fmt.Sprintf("%s%d", productKeyPrefix, productID), productsAllKey)
	return p, err
}

func (c *CachedStore) PlaceOrder(ctx context.Context, cartID, customerName, address string, fulfillment model.FulfillmentType) (OrderRow, []OrderItemRow, error) {
	order, items, err := c.Store.PlaceOrder(ctx, cartID, customerName, address, fulfillment)
	if err != nil {
		return order, items, err
	}
	keys := []string{productsAllKey}
	for _, it := range items {
		keys = append(keys, fmt.Sprintf("%s%d", productKeyPrefix, it.ProductID))
	}
	c.invalidate(ctx, keys...)
	return order, items, nil
}

func (c *CachedStore) invalidate(ctx context.Context, keys ...string) {
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
