package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/metrics"
	custommiddleware "storefront/internal/middleware"
	"storefront/internal/payment"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/storage"
	"storefront/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Dependencies are the external resources the server is built on. Redis is
// optional: without it the read cache is disabled and auth routes are not
// rate limited.
type Dependencies struct {
	DB       *sql.DB
	Redis    *redis.Client
	Disk     storage.Disk
	Payments payment.Provider
}

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	deps   Dependencies
}

func NewServer(cfg *config.Config, logger *zap.Logger, deps Dependencies) *Server {
	router := chi.NewRouter()

	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(metrics.Middleware)
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.IsDevelopment()))

	db := database.NewFromDB(deps.DB)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := db.Health(r.Context())
		status := http.StatusOK
		if health["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		custommiddleware.RespondWithJSON(w, status, health)
	})
	router.Handle("/metrics", metrics.Handler())

	if local, ok := deps.Disk.(*storage.Local); ok && cfg.IsDevelopment() {
		router.Handle("/storage/*", http.StripPrefix("/storage/", http.FileServer(http.Dir(local.Root()))))
	}

	var readCache cache.Cache = cache.Noop{}
	limit := func(next http.Handler) http.Handler { return next }
	if deps.Redis != nil {
		readCache = cache.NewRedis(deps.Redis)
		limit = custommiddleware.RateLimitMiddleware(deps.Redis, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "ratelimit:auth",
		}, logger)
	}
	payments := deps.Payments
	if payments == nil {
		payments = payment.Disabled{}
	}

	// Repositories
	userRepo := repository.NewUserRepository(deps.DB)
	refreshTokenRepo := repository.NewRefreshTokenRepository(deps.DB)
	categoryRepo := repository.NewCategoryRepository(deps.DB)
	productRepo := repository.NewProductRepository(deps.DB)
	reviewRepo := repository.NewReviewRepository(deps.DB)
	cartRepo := repository.NewCartRepository(deps.DB)
	addressRepo := repository.NewAddressRepository(deps.DB)
	orderRepo := repository.NewOrderRepository(deps.DB)
	bannerRepo := repository.NewBannerRepository(deps.DB)
	carouselRepo := repository.NewCarouselRepository(deps.DB)
	paymentConfigRepo := repository.NewPaymentConfigRepository(deps.DB)

	// Services
	userService := service.NewUserService(userRepo, refreshTokenRepo, cfg.JWT)
	paymentConfigService := service.NewPaymentConfigService(paymentConfigRepo)
	catalogService := service.NewCatalogService(categoryRepo, productRepo, reviewRepo, readCache, cfg.Redis.CacheTTL)
	reviewService := service.NewReviewService(reviewRepo, productRepo, orderRepo)
	cartService := service.NewCartService(cartRepo, productRepo, paymentConfigService)
	addressService := service.NewAddressService(addressRepo)
	orderService := service.NewOrderService(orderRepo, productRepo, userRepo, payments, logger)
	checkoutService := service.NewCheckoutService(cartRepo, addressRepo, orderRepo, userRepo,
		paymentConfigService, payments, cfg.Payment, logger)
	bannerService := service.NewBannerService(bannerRepo, readCache, cfg.Redis.CacheTTL)
	carouselService := service.NewCarouselService(carouselRepo, readCache, cfg.Redis.CacheTTL)
	uploadService := service.NewUploadService(deps.Disk)

	// Handlers
	userHandler := transport.NewUserHandler(userService, logger)
	catalogHandler := transport.NewCatalogHandler(catalogService, logger)
	reviewHandler := transport.NewReviewHandler(reviewService, logger)
	cartHandler := transport.NewCartHandler(cartService, logger)
	addressHandler := transport.NewAddressHandler(addressService, logger)
	checkoutHandler := transport.NewCheckoutHandler(checkoutService, logger)
	orderHandler := transport.NewOrderHandler(orderService, logger)
	contentHandler := transport.NewContentHandler(bannerService, carouselService, logger)
	paymentConfigHandler := transport.NewPaymentConfigHandler(paymentConfigService, logger)
	uploadHandler := transport.NewUploadHandler(uploadService, logger)

	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)

	userHandler.RegisterRoutes(router, authMiddleware, limit)
	catalogHandler.RegisterRoutes(router)
	reviewHandler.RegisterRoutes(router, authMiddleware)
	cartHandler.RegisterRoutes(router, authMiddleware)
	addressHandler.RegisterRoutes(router, authMiddleware)
	checkoutHandler.RegisterRoutes(router, authMiddleware)
	orderHandler.RegisterRoutes(router, authMiddleware)
	contentHandler.RegisterRoutes(router)

	router.Route("/api/admin", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(custommiddleware.RequireAdmin(logger))

		userHandler.RegisterAdminRoutes(r)
		catalogHandler.RegisterAdminRoutes(r)
		reviewHandler.RegisterAdminRoutes(r)
		orderHandler.RegisterAdminRoutes(r)
		contentHandler.RegisterAdminRoutes(r)
		paymentConfigHandler.RegisterAdminRoutes(r)
		uploadHandler.RegisterAdminRoutes(r)
	})

	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		deps:   deps,
	}
}

// Close releases the database pool and the redis client.
func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.deps.Redis != nil {
		if err := s.deps.Redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}
	if s.deps.DB != nil {
		if err := s.deps.DB.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
