package service

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrProductUnavailable = errors.New("product is not available")
	ErrInsufficientStock  = repository.ErrInsufficientStock
	ErrEmptyCart          = errors.New("cart is empty")
)

type CartService interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.CartView, error)
	// AddItem merges quantity into the existing line for the product.
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.CartView, error)
	// SetQuantity sets the absolute quantity. Zero removes the line.
	SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.CartView, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*domain.CartView, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type cartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	pricing  PaymentConfigService
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository, pricing PaymentConfigService) CartService {
	return &cartService{carts: carts, products: products, pricing: pricing}
}

func (s *cartService) Get(ctx context.Context, userID uuid.UUID) (*domain.CartView, error) {
	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, cart.ID)
}

func (s *cartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.CartView, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	existing := 0
	item, err := s.carts.FindItem(ctx, cart.ID, productID)
	switch {
	case err == nil:
		existing = item.Quantity
	case !errors.Is(err, repository.ErrCartItemNotFound):
		return nil, err
	}

	if err := s.store(ctx, cart.ID, productID, existing+quantity); err != nil {
		return nil, err
	}
	return s.view(ctx, cart.ID)
}

func (s *cartService) SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.CartView, error) {
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	if quantity == 0 {
		return s.RemoveItem(ctx, userID, productID)
	}
	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.store(ctx, cart.ID, productID, quantity); err != nil {
		return nil, err
	}
	return s.view(ctx, cart.ID)
}

func (s *cartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*domain.CartView, error) {
	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.carts.RemoveItem(ctx, cart.ID, productID); err != nil {
		return nil, err
	}
	return s.view(ctx, cart.ID)
}

func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) error {
	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	return s.carts.Clear(ctx, cart.ID)
}

func (s *cartService) store(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	if !product.IsActive {
		return ErrProductUnavailable
	}
	if quantity > product.Stock {
		return fmt.Errorf("%w: only %d of %s left", ErrInsufficientStock, product.Stock, product.Name)
	}
	return s.carts.UpsertItem(ctx, cartID, productID, quantity)
}

func (s *cartService) view(ctx context.Context, cartID uuid.UUID) (*domain.CartView, error) {
	items, err := s.carts.Items(ctx, cartID)
	if err != nil {
		return nil, err
	}
	cfg, err := s.pricing.Get(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.CartView{
		Items:  items,
		Totals: domain.CalculateCartTotals(purchasableLines(items), cfg.Pricing()),
	}, nil
}

// purchasableLines drops lines whose product was deactivated after it was
// added; they are shown but neither priced nor checked out.
func purchasableLines(items []domain.CartItem) []domain.LineItem {
	lines := make([]domain.LineItem, 0, len(items))
	for _, item := range items {
		if !item.IsActive {
			continue
		}
		lines = append(lines, domain.LineItem{UnitPrice: item.UnitPrice, Quantity: item.Quantity})
	}
	return lines
}
