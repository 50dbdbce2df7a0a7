package docstore

import (
	"context"
	"fmt"

	"github.com/quatton/filesmanager/pkg/db"
	"github.com/uptrace/bun"
)

type postgresBackend struct {
	db *bun.DB
}

// DialPostgres returns a Dialer backed by PostgreSQL. Collections map to the
// tables created by the db migrations.
func DialPostgres(cfg db.Config) Dialer {
	return func(ctx context.Context) (Backend, error) {
		database, err := db.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &postgresBackend{db: database}, nil
	}
}

func (b *postgresBackend) CountDocuments(ctx context.Context, collection string) (int64, error) {
	n, err := b.db.NewSelect().Table(collection).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", collection, err)
	}
	return int64(n), nil
}

func (b *postgresBackend) Close(_ context.Context) error {
	return b.db.Close()
}
