// FilePath: internal/statuscache/statuscache.go
package statuscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/PedroDanesvara/api-regador/internal/config"
	"github.com/PedroDanesvara/api-regador/internal/models"
	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"
)

// Cache is a read-through cache for pump status views, keyed per device and
// invalidated on every ledger append. Failures degrade to cache misses; the
// database row stays authoritative.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis and verifies the connection
func New(cfg config.RedisConfig) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("error connecting to redis: %w", err)
	}

	nuts.L.Infof("[StatusCache] Connected to %s:%d", cfg.Host, cfg.Port)
	return &Cache{client: client, ttl: cfg.StatusTTL}, nil
}

func key(deviceID string) string {
	return "pump:status:" + deviceID
}

// Get returns the cached view for a device, or nil on miss
func (c *Cache) Get(ctx context.Context, deviceID string) *models.PumpStatusView {
	if c == nil {
		return nil
	}
	raw, err := c.client.Get(ctx, key(deviceID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			nuts.L.Warnf("[StatusCache] Get failed for %s: %v", deviceID, err)
		}
		return nil
	}
	view := &models.PumpStatusView{}
	if err := json.Unmarshal(raw, view); err != nil {
		nuts.L.Warnf("[StatusCache] Corrupt entry for %s: %v", deviceID, err)
		return nil
	}
	return view
}

// Set stores the view under the device key
func (c *Cache) Set(ctx context.Context, view *models.PumpStatusView) {
	if c == nil || view == nil {
		return
	}
	raw, err := json.Marshal(view)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key(view.DeviceID), raw, c.ttl).Err(); err != nil {
		nuts.L.Warnf("[StatusCache] Set failed for %s: %v", view.DeviceID, err)
	}
}

// Invalidate drops the cached view for a device
func (c *Cache) Invalidate(ctx context.Context, deviceID string) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, key(deviceID)).Err(); err != nil {
		nuts.L.Warnf("[StatusCache] Invalidate failed for %s: %v", deviceID, err)
	}
}

// Close releases the underlying connection
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
