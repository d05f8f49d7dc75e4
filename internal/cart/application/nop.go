package application

import (
	"context"

	"github.com/dmehra2102/storefront/internal/cart/domain"
)

// Nop is the stand-in handed to callers that run outside a session: it is
// always empty and ignores mutations.
type Nop struct{}

func (Nop) Snapshot(context.Context) (domain.Cart, error) { return domain.New(), nil }

func (Nop) AddItem(context.Context, domain.NewItem) (domain.Item, error) { return domain.Item{}, nil }

func (Nop) RemoveItem(context.Context, string) error { return nil }

func (Nop) UpdateQuantity(context.Context, string, int) error { return nil }

func (Nop) Clear(context.Context) error { return nil }

func (Nop) TakeAll(context.Context) (domain.Cart, error) { return domain.New(), nil }
