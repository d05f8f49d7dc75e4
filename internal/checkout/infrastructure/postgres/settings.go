package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dmehra2102/storefront/internal/checkout/domain"
)

// SettingsRepository reads the store_settings row maintained by the store's
// admin tooling.
type SettingsRepository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewSettingsRepository(log *slog.Logger, pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{log: log, pool: pool}
}

func (r *SettingsRepository) Settings(ctx context.Context) (domain.Settings, error) {
	var (
		fee    *string
		number *string
	)
	err := r.pool.QueryRow(ctx, `
		SELECT delivery_fee::text, whatsapp_number
		FROM store_settings
		ORDER BY id
		LIMIT 1`).Scan(&fee, &number)
	if errors.Is(err, pgx.ErrNoRows) {
		r.log.Warn("store_settings is empty, using defaults")
		return domain.DefaultSettings(), nil
	}
	if err != nil {
		return domain.Settings{}, fmt.Errorf("query store settings: %w", err)
	}

	s := domain.DefaultSettings()
	if fee != nil {
		d, err := decimal.NewFromString(*fee)
		if err != nil {
			return domain.Settings{}, fmt.Errorf("parse delivery fee %q: %w", *fee, err)
		}
		s.DeliveryFee = d
	}
	if number != nil && *number != "" {
		s.WhatsAppNumber = *number
	}
	return s, nil
}
