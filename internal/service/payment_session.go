package service

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/payment"
	"storefront/internal/repository"

	"go.uber.org/zap"
)

// ErrPaymentInProgress is returned when the customer already completed the
// order's payment session and the provider has not confirmed the funds yet.
var ErrPaymentInProgress = errors.New("payment for this order is already being processed")

// sessionCloser retires the payment session of a PENDING order before the
// order gets a new session or leaves PENDING.
type sessionCloser struct {
	orders   repository.OrderRepository
	provider payment.Provider
	logger   *zap.Logger
}

// close detaches the session from the order, so the provider's expiry event
// no longer matches it, and then expires it. When expiring fails the session
// is attached again.
func (c sessionCloser) close(ctx context.Context, order *domain.Order) error {
	sessionID := order.PaymentSessionID
	if sessionID == "" {
		return nil
	}
	if err := c.orders.SetPaymentSession(ctx, order.ID, ""); err != nil {
		return err
	}

	err := c.provider.ExpireSession(ctx, sessionID)
	if err == nil {
		order.PaymentSessionID = ""
		return nil
	}

	if restoreErr := c.orders.SetPaymentSession(ctx, order.ID, sessionID); restoreErr != nil {
		c.logger.Error("Failed to reattach payment session",
			zap.String("order_id", order.ID.String()),
			zap.String("session_id", sessionID),
			zap.Error(restoreErr),
		)
	}
	if errors.Is(err, payment.ErrSessionCompleted) {
		return ErrPaymentInProgress
	}
	c.logger.Error("Failed to expire payment session",
		zap.String("order_id", order.ID.String()),
		zap.String("session_id", sessionID),
		zap.Error(err),
	)
	return fmt.Errorf("%w: %v", ErrPaymentProvider, err)
}
