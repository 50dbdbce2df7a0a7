package migrations

import (
	"context"

	"github.com/quatton/filesmanager/pkg/db/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewCreateTable().
			Model((*models.User)(nil)).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return err
		}

		_, err = db.NewCreateTable().
			Model((*models.File)(nil)).
			IfNotExists().
			ForeignKey(`("user_id") REFERENCES users ("id") ON DELETE CASCADE`).
			ForeignKey(`("parent_id") REFERENCES files ("id") ON DELETE CASCADE`).
			Exec(ctx)
		if err != nil {
			return err
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewDropTable().Model((*models.File)(nil)).IfExists().Exec(ctx)
		if err != nil {
			return err
		}

		_, err = db.NewDropTable().Model((*models.User)(nil)).IfExists().Exec(ctx)
		return err
	})
}
