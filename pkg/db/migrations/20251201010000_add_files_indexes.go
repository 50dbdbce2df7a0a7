package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		stmts := []string{
			"CREATE INDEX IF NOT EXISTS files_user_id_idx ON files (user_id)",
			"CREATE INDEX IF NOT EXISTS files_parent_id_idx ON files (parent_id)",
		}

		for _, stmt := range stmts {
			if _, err := db.NewRaw(stmt).Exec(ctx); err != nil {
				return err
			}
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		stmts := []string{
			"DROP INDEX IF EXISTS files_parent_id_idx",
			"DROP INDEX IF EXISTS files_user_id_idx",
		}

		for _, stmt := range stmts {
			if _, err := db.NewRaw(stmt).Exec(ctx); err != nil {
				return err
			}
		}

		return nil
	})
}
