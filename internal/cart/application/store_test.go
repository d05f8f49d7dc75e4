package application

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
	"github.com/dmehra2102/storefront/internal/cart/infrastructure/memory"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService() *Service {
	return NewService(discardLogger(), memory.NewRepository(discardLogger(), time.Hour))
}

func TestSessionStore(t *testing.T) {
	ctx := context.Background()

	t.Run("add, update, remove", func(t *testing.T) {
		store := newService().ForSession("s1")

		item, err := store.AddItem(ctx, domain.NewItem{
			ProductID: "acai-500",
			Name:      "Açaí 500ml",
			Price:     decimal.NewFromInt(20),
			Quantity:  0,
			Addons:    []domain.Addon{{ID: "g", Name: "Granola", Price: decimal.NewFromInt(2)}},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, item.Quantity)

		require.NoError(t, store.UpdateQuantity(ctx, item.ID, 3))
		c, err := store.Snapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, c.TotalItems())
		assert.True(t, decimal.NewFromInt(66).Equal(c.Subtotal()))

		require.NoError(t, store.UpdateQuantity(ctx, item.ID, 0))
		c, _ = store.Snapshot(ctx)
		assert.True(t, c.IsEmpty())
	})

	t.Run("remove and clear", func(t *testing.T) {
		store := newService().ForSession("s1")
		a, _ := store.AddItem(ctx, domain.NewItem{Name: "A", Price: decimal.NewFromInt(1), Quantity: 1})
		_, _ = store.AddItem(ctx, domain.NewItem{Name: "B", Price: decimal.NewFromInt(1), Quantity: 1})

		require.NoError(t, store.RemoveItem(ctx, a.ID))
		c, _ := store.Snapshot(ctx)
		assert.Equal(t, 1, c.Len())

		require.NoError(t, store.Clear(ctx))
		c, _ = store.Snapshot(ctx)
		assert.True(t, c.IsEmpty())
	})

	t.Run("sessions share nothing", func(t *testing.T) {
		svc := newService()
		_, _ = svc.ForSession("a").AddItem(ctx, domain.NewItem{Name: "A", Quantity: 1})

		c, _ := svc.ForSession("b").Snapshot(ctx)
		assert.True(t, c.IsEmpty())

		require.NoError(t, svc.Discard(ctx, "a"))
		c, _ = svc.ForSession("a").Snapshot(ctx)
		assert.True(t, c.IsEmpty())
	})
}

func TestSessionStoreTakeAll(t *testing.T) {
	ctx := context.Background()
	store := newService().ForSession("s1")
	_, _ = store.AddItem(ctx, domain.NewItem{Name: "A", Price: decimal.NewFromInt(4), Quantity: 2})
	_, _ = store.AddItem(ctx, domain.NewItem{Name: "B", Price: decimal.NewFromInt(1), Quantity: 1})

	taken, err := store.TakeAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, taken.Len())
	assert.True(t, decimal.NewFromInt(9).Equal(taken.Subtotal()))

	left, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.True(t, left.IsEmpty())

	again, err := store.TakeAll(ctx)
	require.NoError(t, err)
	assert.True(t, again.IsEmpty())
}

type failingRepo struct{ err error }

func (f failingRepo) Load(context.Context, string) (domain.Cart, error) {
	return domain.Cart{}, f.err
}

func (f failingRepo) Update(context.Context, string, func(domain.Cart) (domain.Cart, error)) (domain.Cart, error) {
	return domain.Cart{}, f.err
}

func (f failingRepo) Delete(context.Context, string) error { return f.err }

func TestSessionStoreErrors(t *testing.T) {
	boom := errors.New("redis down")
	store := NewService(discardLogger(), failingRepo{err: boom}).ForSession("s1")
	ctx := context.Background()

	_, err := store.AddItem(ctx, domain.NewItem{Name: "A"})
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, store.RemoveItem(ctx, "x"), boom)
	assert.ErrorIs(t, store.UpdateQuantity(ctx, "x", 2), boom)
	assert.ErrorIs(t, store.Clear(ctx), boom)
	_, err = store.TakeAll(ctx)
	assert.ErrorIs(t, err, boom)
	_, err = store.Snapshot(ctx)
	assert.ErrorIs(t, err, boom)
}

func TestFromContext(t *testing.T) {
	ctx := context.Background()

	t.Run("falls back to a no-op cart", func(t *testing.T) {
		store := FromContext(ctx)
		assert.IsType(t, Nop{}, store)
		assert.Empty(t, SessionID(ctx))

		_, err := store.AddItem(ctx, domain.NewItem{Name: "A", Quantity: 2})
		require.NoError(t, err)
		require.NoError(t, store.UpdateQuantity(ctx, "x", 3))
		require.NoError(t, store.RemoveItem(ctx, "x"))
		require.NoError(t, store.Clear(ctx))
		taken, err := store.TakeAll(ctx)
		require.NoError(t, err)
		assert.True(t, taken.IsEmpty())

		c, err := store.Snapshot(ctx)
		require.NoError(t, err)
		assert.True(t, c.IsEmpty())
		assert.Equal(t, 0, c.TotalItems())
		assert.True(t, c.Subtotal().IsZero())
	})

	t.Run("returns the bound store", func(t *testing.T) {
		store := newService().ForSession("s1")
		bound := WithStore(ctx, "s1", store)

		assert.Same(t, store, FromContext(bound))
		assert.Equal(t, "s1", SessionID(bound))
	})
}
