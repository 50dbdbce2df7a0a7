package docstore

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	mongooptions "go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig holds configuration for connecting to MongoDB.
type MongoConfig struct {
	Host     string
	Port     int
	Database string
	// ConnectTimeout also bounds server selection, so an unreachable host
	// fails the dial instead of hanging until the first query.
	ConnectTimeout time.Duration
}

// URI returns the connection string for cfg.
func (cfg MongoConfig) URI() string {
	return "mongodb://" + net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
}

type mongoBackend struct {
	client *mongo.Client
	db     *mongo.Database
}

// DialMongo returns a Dialer that connects to MongoDB, confirms the server
// answers a ping, and selects cfg.Database.
func DialMongo(cfg MongoConfig) Dialer {
	return func(ctx context.Context) (Backend, error) {
		opts := mongooptions.Client().ApplyURI(cfg.URI())
		if cfg.ConnectTimeout > 0 {
			opts.SetConnectTimeout(cfg.ConnectTimeout)
			opts.SetServerSelectionTimeout(cfg.ConnectTimeout)
		}

		client, err := mongo.Connect(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("connecting to %s: %w", cfg.URI(), err)
		}

		if err := client.Ping(ctx, nil); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("failed to ping mongodb: %w", err)
		}

		return &mongoBackend{client: client, db: client.Database(cfg.Database)}, nil
	}
}

func (b *mongoBackend) CountDocuments(ctx context.Context, collection string) (int64, error) {
	return b.db.Collection(collection).CountDocuments(ctx, bson.D{})
}

func (b *mongoBackend) Close(ctx context.Context) error {
	return b.client.Disconnect(ctx)
}
