package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

var ErrInvalidPaymentConfig = errors.New("invalid payment configuration")

// PaymentConfigInput is the back office form for shop pricing settings.
type PaymentConfigInput struct {
	Currency              string
	TaxRate               float64
	ShippingFee           float64
	FreeShippingThreshold float64
	Enabled               bool
}

type PaymentConfigService interface {
	// Get returns the stored settings, or the defaults if none were saved.
	Get(ctx context.Context) (*domain.PaymentConfig, error)
	Update(ctx context.Context, input PaymentConfigInput) (*domain.PaymentConfig, error)
}

type paymentConfigService struct {
	repo repository.PaymentConfigRepository
}

func NewPaymentConfigService(repo repository.PaymentConfigRepository) PaymentConfigService {
	return &paymentConfigService{repo: repo}
}

func (s *paymentConfigService) Get(ctx context.Context) (*domain.PaymentConfig, error) {
	cfg, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentConfigNotFound) {
			return domain.DefaultPaymentConfig(), nil
		}
		return nil, fmt.Errorf("failed to load payment config: %w", err)
	}
	return cfg, nil
}

func (s *paymentConfigService) Update(ctx context.Context, input PaymentConfigInput) (*domain.PaymentConfig, error) {
	currency := strings.ToLower(strings.TrimSpace(input.Currency))
	if len(currency) != 3 {
		return nil, fmt.Errorf("%w: currency must be a 3-letter code", ErrInvalidPaymentConfig)
	}
	if input.TaxRate < 0 || input.TaxRate > 1 {
		return nil, fmt.Errorf("%w: tax_rate must be between 0 and 1", ErrInvalidPaymentConfig)
	}
	if input.ShippingFee < 0 || input.FreeShippingThreshold < 0 {
		return nil, fmt.Errorf("%w: amounts must not be negative", ErrInvalidPaymentConfig)
	}

	cfg := &domain.PaymentConfig{
		ID:                    1,
		Currency:              currency,
		TaxRate:               input.TaxRate,
		ShippingFee:           domain.RoundCents(input.ShippingFee),
		FreeShippingThreshold: domain.RoundCents(input.FreeShippingThreshold),
		Enabled:               input.Enabled,
		UpdatedAt:             time.Now(),
	}
	if err := s.repo.Save(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to save payment config: %w", err)
	}
	return cfg, nil
}
