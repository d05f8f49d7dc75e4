package memory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/storefront/internal/cart/domain"
)

func newTestRepo(ttl time.Duration) (*Repository, *time.Time) {
	r := NewRepository(slog.New(slog.NewTextHandler(io.Discard, nil)), ttl)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	return r, &now
}

func addOne(c domain.Cart) (domain.Cart, error) {
	next, _ := c.Add(domain.NewItem{Name: "Açaí", Price: decimal.NewFromInt(10), Quantity: 1})
	return next, nil
}

func TestRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown session loads empty", func(t *testing.T) {
		r, _ := newTestRepo(time.Hour)
		c, err := r.Load(ctx, "s1")
		require.NoError(t, err)
		assert.True(t, c.IsEmpty())
	})

	t.Run("sessions are isolated", func(t *testing.T) {
		r, _ := newTestRepo(time.Hour)
		_, err := r.Update(ctx, "s1", addOne)
		require.NoError(t, err)

		c1, _ := r.Load(ctx, "s1")
		c2, _ := r.Load(ctx, "s2")
		assert.Equal(t, 1, c1.Len())
		assert.True(t, c2.IsEmpty())
	})

	t.Run("failed update keeps the previous cart", func(t *testing.T) {
		r, _ := newTestRepo(time.Hour)
		_, err := r.Update(ctx, "s1", addOne)
		require.NoError(t, err)

		boom := errors.New("boom")
		_, err = r.Update(ctx, "s1", func(domain.Cart) (domain.Cart, error) { return domain.New(), boom })
		require.ErrorIs(t, err, boom)

		c, _ := r.Load(ctx, "s1")
		assert.Equal(t, 1, c.Len())
	})

	t.Run("idle sessions expire", func(t *testing.T) {
		r, now := newTestRepo(time.Minute)
		_, err := r.Update(ctx, "s1", addOne)
		require.NoError(t, err)

		*now = now.Add(2 * time.Minute)
		c, _ := r.Load(ctx, "s1")
		assert.True(t, c.IsEmpty())
	})

	t.Run("sweep removes expired sessions only", func(t *testing.T) {
		r, now := newTestRepo(time.Minute)
		_, _ = r.Update(ctx, "old", addOne)
		*now = now.Add(50 * time.Second)
		_, _ = r.Update(ctx, "fresh", addOne)
		*now = now.Add(20 * time.Second)

		assert.Equal(t, 1, r.Sweep())
		c, _ := r.Load(ctx, "fresh")
		assert.Equal(t, 1, c.Len())
	})

	t.Run("delete discards the session", func(t *testing.T) {
		r, _ := newTestRepo(time.Hour)
		_, _ = r.Update(ctx, "s1", addOne)
		require.NoError(t, r.Delete(ctx, "s1"))
		c, _ := r.Load(ctx, "s1")
		assert.True(t, c.IsEmpty())
	})
}
