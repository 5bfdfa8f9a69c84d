package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain"
)

var ErrPaymentConfigNotFound = errors.New("payment config not set")

// PaymentConfigRepository reads and writes the single shop-wide payment
// settings row.
type PaymentConfigRepository interface {
	Get(ctx context.Context) (*domain.PaymentConfig, error)
	Save(ctx context.Context, cfg *domain.PaymentConfig) error
}

type paymentConfigRepository struct {
	db *sql.DB
}

func NewPaymentConfigRepository(db *sql.DB) PaymentConfigRepository {
	return &paymentConfigRepository{db: db}
}

func (r *paymentConfigRepository) Get(ctx context.Context) (*domain.PaymentConfig, error) {
	cfg := &domain.PaymentConfig{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, currency, tax_rate, shipping_fee, free_shipping_threshold, enabled, updated_at
		FROM payment_configs WHERE id = 1
	`).Scan(&cfg.ID, &cfg.Currency, &cfg.TaxRate, &cfg.ShippingFee, &cfg.FreeShippingThreshold, &cfg.Enabled, &cfg.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentConfigNotFound
		}
		return nil, fmt.Errorf("failed to load payment config: %w", err)
	}
	return cfg, nil
}

func (r *paymentConfigRepository) Save(ctx context.Context, cfg *domain.PaymentConfig) error {
	cfg.ID = 1
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payment_configs (id, currency, tax_rate, shipping_fee, free_shipping_threshold, enabled, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET currency = EXCLUDED.currency,
		    tax_rate = EXCLUDED.tax_rate,
		    shipping_fee = EXCLUDED.shipping_fee,
		    free_shipping_threshold = EXCLUDED.free_shipping_threshold,
		    enabled = EXCLUDED.enabled,
		    updated_at = EXCLUDED.updated_at
	`, cfg.ID, cfg.Currency, cfg.TaxRate, cfg.ShippingFee, cfg.FreeShippingThreshold, cfg.Enabled, cfg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save payment config: %w", err)
	}
	return nil
}
