package database

import (
	"database/sql"
	"fmt"

	"storefront/migrations"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// gooseLogger routes goose output through zap.
type gooseLogger struct {
	logger *zap.SugaredLogger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Infof(format, v...)
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Fatalf(format, v...)
}

func setupGoose(logger *zap.Logger) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(gooseLogger{logger: logger.Sugar()})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return nil
}

// RunMigrations executes all pending embedded migrations
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	if err := setupGoose(logger); err != nil {
		return err
	}

	logger.Info("Checking for pending migrations...")

	if err := goose.Up(db, "."); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Migrations completed successfully")
	return nil
}

// MigrationStatus logs the applied state of every embedded migration
func MigrationStatus(db *sql.DB, logger *zap.Logger) error {
	if err := setupGoose(logger); err != nil {
		return err
	}
	return goose.Status(db, ".")
}

// RollbackMigration reverts the most recent migration
func RollbackMigration(db *sql.DB, logger *zap.Logger) error {
	if err := setupGoose(logger); err != nil {
		return err
	}
	if err := goose.Down(db, "."); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return nil
}
