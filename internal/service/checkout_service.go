package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/metrics"
	"storefront/internal/payment"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrPaymentsDisabled = errors.New("payments are currently disabled")
	ErrPaymentProvider  = errors.New("payment provider unavailable")
	ErrOrderNotPayable  = errors.New("only pending orders can be paid")
)

// CheckoutResult is returned to the client, which redirects to RedirectURL.
type CheckoutResult struct {
	Order       *domain.Order `json:"order"`
	SessionID   string        `json:"session_id"`
	RedirectURL string        `json:"redirect_url"`
}

type CheckoutService interface {
	// Checkout turns the user's cart into a PENDING order shipped to the
	// given address and opens a payment session for it.
	Checkout(ctx context.Context, userID, addressID uuid.UUID) (*CheckoutResult, error)
	// Pay opens a fresh payment session for a PENDING order.
	Pay(ctx context.Context, userID, orderID uuid.UUID) (*CheckoutResult, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type checkoutService struct {
	carts     repository.CartRepository
	addresses repository.AddressRepository
	orders    repository.OrderRepository
	users     repository.UserRepository
	pricing   PaymentConfigService
	provider  payment.Provider
	urls      config.PaymentConfig
	sessions  sessionCloser
	logger    *zap.Logger
}

func NewCheckoutService(
	carts repository.CartRepository,
	addresses repository.AddressRepository,
	orders repository.OrderRepository,
	users repository.UserRepository,
	pricing PaymentConfigService,
	provider payment.Provider,
	urls config.PaymentConfig,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutService{
		carts:     carts,
		addresses: addresses,
		orders:    orders,
		users:     users,
		pricing:   pricing,
		provider:  provider,
		urls:      urls,
		sessions:  sessionCloser{orders: orders, provider: provider, logger: logger},
		logger:    logger,
	}
}

func (s *checkoutService) Checkout(ctx context.Context, userID, addressID uuid.UUID) (*CheckoutResult, error) {
	cfg, err := s.pricing.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		metrics.CheckoutsFailed.WithLabelValues("disabled").Inc()
		return nil, ErrPaymentsDisabled
	}

	address, err := s.addresses.FindByID(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}

	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.carts.Items(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		metrics.CheckoutsFailed.WithLabelValues("empty_cart").Inc()
		return nil, ErrEmptyCart
	}

	pending, err := s.orders.FindPendingByUser(ctx, userID)
	switch {
	case err == nil:
		if pending.Matches(address.Snapshot(), items) {
			return s.reopen(ctx, pending)
		}
		if items, err = s.supersede(ctx, pending, cart.ID); err != nil {
			return nil, err
		}
	case !errors.Is(err, repository.ErrOrderNotFound):
		return nil, err
	}

	order, err := buildOrder(userID, address, items, cfg)
	if err != nil {
		metrics.CheckoutsFailed.WithLabelValues("unavailable").Inc()
		return nil, err
	}
	if err := s.orders.CreateWithItems(ctx, order); err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientStock):
			metrics.CheckoutsFailed.WithLabelValues("stock").Inc()
		case errors.Is(err, repository.ErrPendingOrderExists):
			metrics.CheckoutsFailed.WithLabelValues("in_progress").Inc()
		}
		return nil, err
	}
	metrics.OrdersCreated.Inc()
	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Float64("total", order.Total),
	)

	return s.openSession(ctx, order)
}

// supersede cancels a PENDING order whose cart or address changed since it
// was placed. Its reservation goes back to stock, so the cart is read again.
func (s *checkoutService) supersede(ctx context.Context, order *domain.Order, cartID uuid.UUID) ([]domain.CartItem, error) {
	if err := s.sessions.close(ctx, order); err != nil {
		return nil, err
	}
	err := s.orders.TransitionStatus(ctx, order.ID, domain.OrderStatusPending, domain.OrderStatusCanceled)
	if err != nil && !errors.Is(err, repository.ErrOrderStatusConflict) {
		return nil, err
	}
	s.logger.Info("Pending order replaced by a new checkout",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", order.UserID.String()),
	)
	return s.carts.Items(ctx, cartID)
}

func (s *checkoutService) Pay(ctx context.Context, userID, orderID uuid.UUID) (*CheckoutResult, error) {
	cfg, err := s.pricing.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		return nil, ErrPaymentsDisabled
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, repository.ErrOrderNotFound
	}
	if order.Status != domain.OrderStatusPending {
		return nil, ErrOrderNotPayable
	}
	return s.reopen(ctx, order)
}

// reopen replaces the order's payment session so at most one is open.
func (s *checkoutService) reopen(ctx context.Context, order *domain.Order) (*CheckoutResult, error) {
	if err := s.sessions.close(ctx, order); err != nil {
		return nil, err
	}
	return s.openSession(ctx, order)
}

// openSession leaves the order PENDING when the provider fails so the
// customer can retry through Pay.
func (s *checkoutService) openSession(ctx context.Context, order *domain.Order) (*CheckoutResult, error) {
	req := payment.SessionRequest{
		OrderID:    order.ID,
		Currency:   order.Currency,
		Shipping:   domain.MinorUnits(order.Shipping),
		SuccessURL: s.urls.SuccessURL,
		CancelURL:  s.urls.CancelURL,
	}
	if user, err := s.users.FindByID(ctx, order.UserID); err == nil {
		req.CustomerEmail = user.Email
	}
	for _, item := range order.Items {
		req.Items = append(req.Items, payment.LineItem{
			Name:       item.ProductName,
			UnitAmount: domain.MinorUnits(item.UnitPrice),
			Quantity:   int64(item.Quantity),
		})
	}

	session, err := s.provider.CreateCheckoutSession(ctx, req)
	if err != nil {
		metrics.CheckoutsFailed.WithLabelValues("provider").Inc()
		s.logger.Error("Failed to create payment session",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}

	if err := s.orders.SetPaymentSession(ctx, order.ID, session.ID); err != nil {
		return nil, err
	}
	order.PaymentSessionID = session.ID

	return &CheckoutResult{Order: order, SessionID: session.ID, RedirectURL: session.URL}, nil
}

func (s *checkoutService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.provider.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}

	switch event.Type {
	case payment.EventCheckoutCompleted:
		if !event.Paid() {
			// Delayed methods report the outcome in a later async event.
			s.logger.Info("Checkout completed, awaiting payment",
				zap.String("session_id", event.SessionID),
				zap.String("payment_status", event.PaymentStatus),
			)
			return nil
		}
		return s.markPaid(ctx, event)
	case payment.EventAsyncPaymentSucceeded:
		return s.markPaid(ctx, event)
	case payment.EventCheckoutExpired, payment.EventAsyncPaymentFailed:
		return s.expire(ctx, event)
	default:
		s.logger.Debug("Ignoring payment event", zap.String("type", event.Type), zap.String("event_id", event.ID))
		return nil
	}
}

func (s *checkoutService) markPaid(ctx context.Context, event *payment.Event) error {
	order, err := s.orders.FindByPaymentSession(ctx, event.SessionID)
	if errors.Is(err, repository.ErrOrderNotFound) && event.OrderID != "" {
		// Sessions are detached from the order when it is canceled or re-opened.
		if id, parseErr := uuid.Parse(event.OrderID); parseErr == nil {
			order, err = s.orders.FindByID(ctx, id)
		}
	}
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			metrics.PaymentsUnmatched.WithLabelValues("unknown_order").Inc()
			s.logger.Error("Payment received for unknown order",
				zap.String("session_id", event.SessionID),
				zap.String("order_ref", event.OrderID),
			)
			return nil
		}
		return err
	}

	if order.Status != domain.OrderStatusPending {
		if order.Status != domain.OrderStatusCanceled && order.PaymentSessionID == event.SessionID {
			// Redelivery of an event already applied.
			return nil
		}
		s.unmatched(order, event)
		return nil
	}
	err = s.orders.TransitionStatus(ctx, order.ID, domain.OrderStatusPending, domain.OrderStatusPaid)
	if errors.Is(err, repository.ErrOrderStatusConflict) {
		s.unmatched(order, event)
		return nil
	}
	if err != nil {
		return err
	}
	metrics.PaymentsCompleted.Inc()
	if order.PaymentSessionID != event.SessionID {
		if err := s.orders.SetPaymentSession(ctx, order.ID, event.SessionID); err != nil {
			s.logger.Warn("Failed to record paying session",
				zap.String("order_id", order.ID.String()),
				zap.Error(err),
			)
		}
	}
	s.logger.Info("Order paid",
		zap.String("order_id", order.ID.String()),
		zap.String("session_id", event.SessionID),
		zap.Time("at", time.Now()),
	)

	// Lines added to the cart after checkout stay in it.
	if err := s.carts.SubtractOrdered(ctx, order.UserID, order.Items); err != nil {
		s.logger.Warn("Failed to remove ordered items from cart",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}
	return nil
}

// unmatched records money taken for an order that can no longer be paid.
// These need a manual refund.
func (s *checkoutService) unmatched(order *domain.Order, event *payment.Event) {
	metrics.PaymentsUnmatched.WithLabelValues("order_not_pending").Inc()
	s.logger.Error("Payment received for order that is not pending",
		zap.String("order_id", order.ID.String()),
		zap.String("status", string(order.Status)),
		zap.String("session_id", event.SessionID),
	)
}

// expire cancels the order behind an abandoned or failed session. Sessions
// replaced by a newer one no longer match the order and are ignored.
func (s *checkoutService) expire(ctx context.Context, event *payment.Event) error {
	order, err := s.orders.FindByPaymentSession(ctx, event.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil
		}
		return err
	}
	if order.Status != domain.OrderStatusPending {
		return nil
	}
	err = s.orders.TransitionStatus(ctx, order.ID, domain.OrderStatusPending, domain.OrderStatusCanceled)
	if err != nil && !errors.Is(err, repository.ErrOrderStatusConflict) {
		return err
	}
	s.logger.Info("Order canceled after payment session ended",
		zap.String("order_id", order.ID.String()),
		zap.String("event", event.Type),
	)
	return nil
}

func buildOrder(userID uuid.UUID, address *domain.Address, items []domain.CartItem, cfg *domain.PaymentConfig) (*domain.Order, error) {
	now := time.Now()
	order := &domain.Order{
		ID:              uuid.New(),
		UserID:          userID,
		Status:          domain.OrderStatusPending,
		Currency:        cfg.Currency,
		ShippingAddress: address.Snapshot(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	lines := make([]domain.LineItem, 0, len(items))
	for _, item := range items {
		if !item.IsActive {
			return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, item.ProductName)
		}
		if item.Quantity > item.Stock {
			return nil, fmt.Errorf("%w: only %d of %s left", ErrInsufficientStock, item.Stock, item.ProductName)
		}
		order.Items = append(order.Items, domain.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			LineTotal:   domain.RoundCents(item.UnitPrice * float64(item.Quantity)),
		})
		lines = append(lines, domain.LineItem{UnitPrice: item.UnitPrice, Quantity: item.Quantity})
	}

	totals := domain.CalculateCartTotals(lines, cfg.Pricing())
	order.Subtotal = totals.Subtotal
	order.Tax = totals.Tax
	order.Shipping = totals.Shipping
	order.Total = totals.Total
	return order, nil
}
