package application

import (
	"context"

	"github.com/dmehra2102/storefront/internal/cart/domain"
)

// Repository holds one cart per browsing session. A session with no stored
// cart loads as an empty cart.
type Repository interface {
	Load(ctx context.Context, sessionID string) (domain.Cart, error)
	Update(ctx context.Context, sessionID string, fn func(domain.Cart) (domain.Cart, error)) (domain.Cart, error)
	Delete(ctx context.Context, sessionID string) error
}
