package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmehra2102/storefront/internal/cart/domain"
)

const maxUpdateAttempts = 5

var ErrConflict = errors.New("cart changed concurrently")

// Repository stores each session cart as JSON under cart:session:<id>. The
// key expires ttl after the last write, which ends the session.
type Repository struct {
	log *slog.Logger
	rdb *redis.Client
	ttl time.Duration
}

func NewRepository(log *slog.Logger, rdb *redis.Client, ttl time.Duration) *Repository {
	return &Repository{log: log, rdb: rdb, ttl: ttl}
}

func (r *Repository) key(sessionID string) string {
	return "cart:session:" + sessionID
}

func (r *Repository) Load(ctx context.Context, sessionID string) (domain.Cart, error) {
	return read(ctx, r.rdb, r.key(sessionID))
}

func (r *Repository) Update(ctx context.Context, sessionID string, fn func(domain.Cart) (domain.Cart, error)) (domain.Cart, error) {
	key := r.key(sessionID)

	var out domain.Cart
	txf := func(tx *redis.Tx) error {
		current, err := read(ctx, tx, key)
		if err != nil {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode cart: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, r.ttl)
			return nil
		})
		if err == nil {
			out = next
		}
		return err
	}

	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		err := r.rdb.Watch(ctx, txf, key)
		if err == nil {
			return out, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return domain.Cart{}, err
		}
		r.log.Warn("cart update raced, retrying", "session_id", sessionID, "attempt", attempt)
	}
	return domain.Cart{}, ErrConflict
}

func (r *Repository) Delete(ctx context.Context, sessionID string) error {
	return r.rdb.Del(ctx, r.key(sessionID)).Err()
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func read(ctx context.Context, c getter, key string) (domain.Cart, error) {
	raw, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.New(), nil
	}
	if err != nil {
		return domain.Cart{}, err
	}
	var cart domain.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return domain.Cart{}, fmt.Errorf("decode cart: %w", err)
	}
	return cart, nil
}
