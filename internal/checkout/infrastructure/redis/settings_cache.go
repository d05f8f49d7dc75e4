package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmehra2102/storefront/internal/checkout/application"
	"github.com/dmehra2102/storefront/internal/checkout/domain"
)

const settingsKey = "storefront:settings"

// SettingsCache keeps a copy of the store settings in Redis for ttl. Cache
// errors are logged and bypassed.
type SettingsCache struct {
	log  *slog.Logger
	rdb  *redis.Client
	next application.SettingsProvider
	ttl  time.Duration
}

func NewSettingsCache(log *slog.Logger, rdb *redis.Client, next application.SettingsProvider, ttl time.Duration) *SettingsCache {
	return &SettingsCache{log: log, rdb: rdb, next: next, ttl: ttl}
}

func (c *SettingsCache) Settings(ctx context.Context) (domain.Settings, error) {
	raw, err := c.rdb.Get(ctx, settingsKey).Bytes()
	switch {
	case err == nil:
		var s domain.Settings
		if err := json.Unmarshal(raw, &s); err == nil {
			return s, nil
		}
		c.log.Warn("cached settings unreadable, reloading")
	case !errors.Is(err, redis.Nil):
		c.log.Warn("settings cache read failed", "err", err)
	}

	s, err := c.next.Settings(ctx)
	if err != nil {
		return domain.Settings{}, err
	}
	if raw, err := json.Marshal(s); err == nil {
		if err := c.rdb.Set(ctx, settingsKey, raw, c.ttl).Err(); err != nil {
			c.log.Warn("settings cache write failed", "err", err)
		}
	}
	return s, nil
}

var _ application.SettingsProvider = (*SettingsCache)(nil)
