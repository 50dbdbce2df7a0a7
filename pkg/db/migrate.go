package db

import (
	"context"
	"fmt"

	"github.com/quatton/filesmanager/pkg/db/migrations"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// Migrate runs the database migrations and returns a short summary.
func Migrate(ctx context.Context, db *bun.DB) (string, error) {
	migrator := migrate.NewMigrator(db, migrations.Migrations)

	// Initialize the migration tables if they don't exist
	if err := migrator.Init(ctx); err != nil {
		return "", fmt.Errorf("failed to init migrations: %w", err)
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to migrate: %w", err)
	}

	if group.ID == 0 {
		return "database is up to date", nil
	}
	return fmt.Sprintf("migrated to %s", group), nil
}

// Rollback reverts the last migration group.
func Rollback(ctx context.Context, db *bun.DB) (string, error) {
	migrator := migrate.NewMigrator(db, migrations.Migrations)

	group, err := migrator.Rollback(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to rollback: %w", err)
	}

	if group.ID == 0 {
		return "there are no groups to roll back", nil
	}
	return fmt.Sprintf("rolled back %s", group), nil
}
