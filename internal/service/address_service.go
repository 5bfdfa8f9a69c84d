package service

import (
	"context"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

// AddressInput carries the editable address fields.
type AddressInput struct {
	Label         string
	RecipientName string
	Phone         string
	Line1         string
	Line2         string
	City          string
	State         string
	PostalCode    string
	Country       string
	IsDefault     bool
}

type AddressService interface {
	List(ctx context.Context, userID uuid.UUID) ([]*domain.Address, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.Address, error)
	Create(ctx context.Context, userID uuid.UUID, input AddressInput) (*domain.Address, error)
	Update(ctx context.Context, userID, id uuid.UUID, input AddressInput) (*domain.Address, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type addressService struct {
	repo repository.AddressRepository
}

func NewAddressService(repo repository.AddressRepository) AddressService {
	return &addressService{repo: repo}
}

func (s *addressService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Address, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *addressService) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Address, error) {
	return s.repo.FindByID(ctx, userID, id)
}

func (s *addressService) Create(ctx context.Context, userID uuid.UUID, input AddressInput) (*domain.Address, error) {
	now := time.Now()
	address := &domain.Address{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyAddressInput(address, input)
	if err := s.repo.Create(ctx, address); err != nil {
		return nil, err
	}
	return address, nil
}

func (s *addressService) Update(ctx context.Context, userID, id uuid.UUID, input AddressInput) (*domain.Address, error) {
	address, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	applyAddressInput(address, input)
	address.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, address); err != nil {
		return nil, err
	}
	return address, nil
}

func (s *addressService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.Delete(ctx, userID, id)
}

func applyAddressInput(a *domain.Address, in AddressInput) {
	a.Label = strings.TrimSpace(in.Label)
	a.RecipientName = strings.TrimSpace(in.RecipientName)
	a.Phone = strings.TrimSpace(in.Phone)
	a.Line1 = strings.TrimSpace(in.Line1)
	a.Line2 = strings.TrimSpace(in.Line2)
	a.City = strings.TrimSpace(in.City)
	a.State = strings.TrimSpace(in.State)
	a.PostalCode = strings.TrimSpace(in.PostalCode)
	a.Country = strings.ToUpper(strings.TrimSpace(in.Country))
	a.IsDefault = in.IsDefault
}
