// Package ratecard serves rate-card line items per category through redis.
package ratecard

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/carelink-ndis/care-roster/backend/internal/billing"
	"github.com/carelink-ndis/care-roster/backend/internal/domain"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ratecard:"

// Source is where line items live when the cache misses.
type Source interface {
	GetLineItemsByCategory(ctx context.Context, category string) ([]*domain.LineItem, error)
}

type Cache struct {
	rdb *redis.Client
	src Source
	ttl time.Duration
}

func NewCache(rdb *redis.Client, src Source, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, src: src, ttl: ttl}
}

func Key(category string) string {
	return keyPrefix + category
}

// Items returns the line items of category. Redis failures are logged and
// the source is read directly.
func (c *Cache) Items(ctx context.Context, category string) ([]billing.LineItem, error) {
	key := Key(category)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		items, err := decode(raw)
		if err == nil {
			return items, nil
		}
		slog.Warn("discarding unreadable rate card cache entry", "key", key, "error", err)
	case !errors.Is(err, redis.Nil):
		slog.Warn("rate card cache read failed", "key", key, "error", err)
	}

	rows, err := c.src.GetLineItemsByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	items := domain.RateCard(rows)

	if raw, err := encode(items); err == nil {
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			slog.Warn("rate card cache write failed", "key", key, "error", err)
		}
	}

	return items, nil
}

// Invalidate drops the cached items of every given category.
func (c *Cache) Invalidate(ctx context.Context, categories ...string) {
	if len(categories) == 0 {
		return
	}

	keys := make([]string, 0, len(categories))
	for _, category := range categories {
		keys = append(keys, Key(category))
	}

	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		slog.Warn("rate card cache invalidation failed", "keys", keys, "error", err)
	}
}

func encode(items []billing.LineItem) ([]byte, error) {
	return json.Marshal(items)
}

func decode(raw []byte) ([]billing.LineItem, error) {
	items := make([]billing.LineItem, 0)
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}
