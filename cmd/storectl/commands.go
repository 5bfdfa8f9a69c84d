package main

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/logger"
	"storefront/internal/repository"
	"storefront/internal/seed"
	"storefront/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type env struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *database.Service
}

// boot loads configuration and opens the database.
func boot() (*env, error) {
	cfg := config.Load()
	log, err := logger.New(cfg.Server.Env, cfg.Server.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	db, err := database.New(cfg.Database)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: log, db: db}, nil
}

func (e *env) close() {
	e.db.Close()
	e.logger.Sync()
}

// withEnv adapts a command body that needs the database.
func withEnv(fn func(ctx context.Context, e *env, cmd *cobra.Command) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		e, err := boot()
		if err != nil {
			return err
		}
		defer e.close()
		return fn(cmd.Context(), e, cmd)
	}
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply all pending migrations",
	RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command) error {
		return database.RunMigrations(e.db.DB(), e.logger)
	}),
}

var migrateStatusCmd = &cobra.Command{
	Use:   "migrate-status",
	Short: "Show which migrations are applied",
	RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command) error {
		return database.MigrationStatus(e.db.DB(), e.logger)
	}),
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Revert the most recent migration",
	RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command) error {
		return database.RollbackMigration(e.db.DB(), e.logger)
	}),
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert demo categories, products, banners and the payment config",
	RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command) error {
		db := e.db.DB()
		// Cached listings are invalidated on write when redis is reachable.
		var c cache.Cache = cache.Noop{}
		if client, err := cache.Connect(ctx, e.cfg.Redis); err == nil {
			defer client.Close()
			c = cache.NewRedis(client)
		}

		seeder := &seed.Seeder{
			Catalog: service.NewCatalogService(
				repository.NewCategoryRepository(db),
				repository.NewProductRepository(db),
				repository.NewReviewRepository(db),
				c,
				e.cfg.Redis.CacheTTL,
			),
			Banners:        service.NewBannerService(repository.NewBannerRepository(db), c, e.cfg.Redis.CacheTTL),
			PaymentConfigs: repository.NewPaymentConfigRepository(db),
			Logger:         e.logger,
		}
		if err := seeder.Run(ctx); err != nil {
			return err
		}
		e.logger.Info("Seed completed")
		return nil
	}),
}

func newCreateAdminCmd() *cobra.Command {
	var email, password, firstName, lastName string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a back office account",
		RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command) error {
			if len(password) < 8 {
				return fmt.Errorf("password must be at least 8 characters")
			}
			db := e.db.DB()
			users := service.NewUserService(
				repository.NewUserRepository(db),
				repository.NewRefreshTokenRepository(db),
				e.cfg.JWT,
			)
			user, err := users.CreateAdmin(ctx, email, password, firstName, lastName)
			if err != nil {
				return err
			}
			e.logger.Info("Admin created", zap.String("user_id", user.ID.String()), zap.String("email", user.Email))
			return nil
		}),
	}

	cmd.Flags().StringVar(&email, "email", "", "admin email (required)")
	cmd.Flags().StringVar(&password, "password", "", "admin password, at least 8 characters (required)")
	cmd.Flags().StringVar(&firstName, "first-name", "Store", "first name")
	cmd.Flags().StringVar(&lastName, "last-name", "Admin", "last name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newPruneTokensCmd() *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune-tokens",
		Short: "Delete expired and revoked refresh tokens",
		RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command) error {
			n, err := repository.NewRefreshTokenRepository(e.db.DB()).DeleteStale(ctx, time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			e.logger.Info("Refresh tokens pruned", zap.Int64("deleted", n))
			return nil
		}),
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "only delete tokens that went stale at least this long ago")
	return cmd
}
