package application

import (
	"context"

	"github.com/dmehra2102/storefront/internal/checkout/domain"
)

type SettingsProvider interface {
	Settings(ctx context.Context) (domain.Settings, error)
}

// SubmissionGuard reports whether key was already seen, marking it seen.
// Forget unmarks a key whose submission did not go through.
type SubmissionGuard interface {
	Seen(ctx context.Context, key string) (bool, error)
	Forget(ctx context.Context, key string) error
}

type OrderPublisher interface {
	Publish(ctx context.Context, ev domain.OrderSubmitted) error
}

// StaticSettings serves fixed settings, used when no settings database is
// configured.
type StaticSettings domain.Settings

func (s StaticSettings) Settings(context.Context) (domain.Settings, error) {
	return domain.Settings(s), nil
}
