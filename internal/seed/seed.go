// Package seed fills an empty database with a demo catalog so the storefront
// has something to show after the first deploy. Every step is idempotent.
package seed

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type category struct {
	name        string
	description string
}

type product struct {
	category    string
	name        string
	description string
	price       float64
	stock       int
}

var categories = []category{
	{"Coffee", "Single origin beans and blends"},
	{"Tea", "Loose leaf teas"},
	{"Equipment", "Brewers, grinders and kettles"},
}

var products = []product{
	{"Coffee", "House Blend 1kg", "Medium roast, chocolate and hazelnut", 24.9, 40},
	{"Coffee", "Ethiopia Yirgacheffe 250g", "Light roast, jasmine and lemon", 14.5, 25},
	{"Coffee", "Decaf Colombia 250g", "Swiss water process", 12, 15},
	{"Tea", "Sencha 100g", "Steamed Japanese green tea", 9.8, 30},
	{"Tea", "Earl Grey 100g", "Black tea with bergamot", 7.5, 30},
	{"Equipment", "Pour Over Dripper", "Ceramic, size 02", 29, 10},
	{"Equipment", "Burr Grinder", "Hand grinder with steel burrs", 89, 5},
}

var banners = []service.BannerInput{
	{Title: "Fresh roasts every week", ImageURL: "https://picsum.photos/seed/roast/1200/400", LinkURL: "/products"},
	{Title: "Free shipping over 50", ImageURL: "https://picsum.photos/seed/ship/1200/400"},
}

// Seeder writes the demo data through the services so validation and cache
// invalidation apply as they would for an admin.
type Seeder struct {
	Catalog        service.CatalogService
	Banners        service.BannerService
	PaymentConfigs repository.PaymentConfigRepository
	Logger         *zap.Logger
}

type step struct {
	name string
	run  func(ctx context.Context) error
}

// Run executes every step in order and stops at the first failure.
func (s *Seeder) Run(ctx context.Context) error {
	steps := []step{
		{"payment config", s.seedPaymentConfig},
		{"catalog", s.seedCatalog},
		{"banners", s.seedBanners},
	}
	for _, st := range steps {
		s.Logger.Info("Running seeder", zap.String("seeder", st.name))
		if err := st.run(ctx); err != nil {
			return fmt.Errorf("seed %s: %w", st.name, err)
		}
	}
	return nil
}

func (s *Seeder) seedPaymentConfig(ctx context.Context) error {
	_, err := s.PaymentConfigs.Get(ctx)
	if err == nil {
		s.Logger.Info("Payment config already present")
		return nil
	}
	if !errors.Is(err, repository.ErrPaymentConfigNotFound) {
		return err
	}
	return s.PaymentConfigs.Save(ctx, domain.DefaultPaymentConfig())
}

func (s *Seeder) seedCatalog(ctx context.Context) error {
	existing, err := s.Catalog.ListCategories(ctx)
	if err != nil {
		return err
	}
	ids := make(map[string]uuid.UUID, len(existing))
	for _, c := range existing {
		ids[c.Name] = c.ID
	}
	for _, c := range categories {
		if _, ok := ids[c.name]; ok {
			continue
		}
		created, err := s.Catalog.CreateCategory(ctx, c.name, c.description)
		if err != nil {
			return err
		}
		ids[c.name] = created.ID
	}

	count, err := s.Catalog.CountProducts(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		s.Logger.Info("Products already present", zap.Int("count", count))
		return nil
	}
	for _, p := range products {
		_, err := s.Catalog.CreateProduct(ctx, service.ProductInput{
			Name:        p.name,
			Description: p.description,
			Price:       p.price,
			CategoryID:  ids[p.category],
			Stock:       p.stock,
		})
		if err != nil {
			return fmt.Errorf("product %q: %w", p.name, err)
		}
	}
	return nil
}

func (s *Seeder) seedBanners(ctx context.Context) error {
	existing, err := s.Banners.ListAll(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, b := range banners {
		if _, err := s.Banners.Create(ctx, b); err != nil {
			return err
		}
	}
	return nil
}
