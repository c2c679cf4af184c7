package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"giftcode-market/internal/infra/readstore"
	"giftcode-market/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const availabilityKeyPrefix = "availability:product:"

// AvailabilityCache is a read-through Redis cache over the code pool
// counts. Stock answers may lag by up to the TTL; the fulfillment worker
// invalidates entries after every allocation so the window stays short.
type AvailabilityCache struct {
	rdb   *redis.Client
	store *readstore.CodePoolReadStore
	ttl   time.Duration
}

func NewAvailabilityCache(rdb *redis.Client, store *readstore.CodePoolReadStore, ttl time.Duration) *AvailabilityCache {
	return &AvailabilityCache{
		rdb:   rdb,
		store: store,
		ttl:   ttl,
	}
}

func (c *AvailabilityCache) AvailableCount(ctx context.Context, productID uuid.UUID) (*queries.ProductAvailabilityView, error) {
	key := availabilityKeyPrefix + productID.String()

	cached, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var view queries.ProductAvailabilityView
		if jsonErr := json.Unmarshal(cached, &view); jsonErr == nil {
			return &view, nil
		}
		// Corrupt entry, fall through to the database
	} else if !errors.Is(err, redis.Nil) {
		// Redis being down must not take stock queries down with it
		slog.Warn("availability cache read failed", "product_id", productID, "error", err.Error())
	}

	view, err := c.store.Availability(ctx, productID)
	if err != nil {
		return nil, err
	}

	if data, jsonErr := json.Marshal(view); jsonErr == nil {
		if setErr := c.rdb.Set(ctx, key, data, c.ttl).Err(); setErr != nil {
			slog.Warn("availability cache write failed", "product_id", productID, "error", setErr.Error())
		}
	}
	return view, nil
}

func (c *AvailabilityCache) Invalidate(ctx context.Context, productIDs ...uuid.UUID) {
	if len(productIDs) == 0 {
		return
	}
	keys := make([]string, len(productIDs))
	for i, id := range productIDs {
		keys[i] = availabilityKeyPrefix + id.String()
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		slog.Warn("availability cache invalidation failed", "error", err.Error())
	}
}
