package service

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/payment"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidStatus           = errors.New("unknown order status")
	ErrInvalidStatusTransition = errors.New("order status cannot change this way")
)

type OrderService interface {
	ListForUser(ctx context.Context, userID uuid.UUID, status domain.OrderStatus, page domain.PageRequest) (domain.Page[*domain.Order], error)
	// GetForUser reports orders of other users as not found.
	GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error)
	// CancelForUser cancels the user's own order while it is still PENDING.
	CancelForUser(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error)

	List(ctx context.Context, filter domain.OrderFilter, page domain.PageRequest) (domain.Page[*domain.Order], error)
	Get(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) (*domain.Order, error)
	Stats(ctx context.Context) (*domain.DashboardStats, error)
}

type orderService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	users    repository.UserRepository
	sessions sessionCloser
}

func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	users repository.UserRepository,
	provider payment.Provider,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		orders:   orders,
		products: products,
		users:    users,
		sessions: sessionCloser{orders: orders, provider: provider, logger: logger},
	}
}

func (s *orderService) ListForUser(ctx context.Context, userID uuid.UUID, status domain.OrderStatus, page domain.PageRequest) (domain.Page[*domain.Order], error) {
	return s.List(ctx, domain.OrderFilter{UserID: &userID, Status: status}, page)
}

func (s *orderService) GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) CancelForUser(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.GetForUser(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.OrderStatusPending {
		return nil, ErrInvalidStatusTransition
	}
	return s.transition(ctx, order, domain.OrderStatusCanceled)
}

func (s *orderService) List(ctx context.Context, filter domain.OrderFilter, page domain.PageRequest) (domain.Page[*domain.Order], error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return domain.Page[*domain.Order]{}, ErrInvalidStatus
	}
	page = page.Normalize()
	orders, total, err := s.orders.List(ctx, filter, page)
	if err != nil {
		return domain.Page[*domain.Order]{}, err
	}
	return domain.NewPage(orders, total, page), nil
}

func (s *orderService) Get(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	return s.orders.FindByID(ctx, orderID)
}

func (s *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, order, status)
}

func (s *orderService) transition(ctx context.Context, order *domain.Order, next domain.OrderStatus) (*domain.Order, error) {
	if !order.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidStatusTransition, order.Status, next)
	}
	if order.Status == domain.OrderStatusPending {
		// The customer must not be able to pay once the order moved on.
		if err := s.sessions.close(ctx, order); err != nil {
			return nil, err
		}
	}
	if err := s.orders.TransitionStatus(ctx, order.ID, order.Status, next); err != nil {
		if errors.Is(err, repository.ErrOrderStatusConflict) {
			return nil, ErrInvalidStatusTransition
		}
		return nil, err
	}
	return s.orders.FindByID(ctx, order.ID)
}

func (s *orderService) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	byStatus, revenue, err := s.orders.Stats(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.products.Count(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.DashboardStats{
		OrdersByStatus: byStatus,
		Revenue:        domain.RoundCents(revenue),
		ProductCount:   products,
		UserCount:      users,
	}, nil
}
