package services

import (
	"context"
	"errors"

	"github.com/quatton/filesmanager/pkg/config"
	"github.com/quatton/filesmanager/pkg/db"
	"github.com/quatton/filesmanager/pkg/docstore"
	"github.com/quatton/filesmanager/pkg/fmlog"
	"github.com/quatton/filesmanager/pkg/kv"
)

// Services holds the process-wide store façades. Build it once at startup
// and hand it to whatever needs the stores.
type Services struct {
	DB *docstore.Client
	KV *kv.Client
}

// NewServices builds both façades from cfg. Neither waits for its backend;
// both start connecting in the background.
func NewServices(cfg *config.EnvConfig, log *fmlog.Logger) *Services {
	return &Services{
		DB: docstore.New(Dialer(cfg),
			docstore.WithLogger(log),
			docstore.WithConnectTimeout(cfg.DBConnectTimeout),
		),
		KV: kv.NewClient(Store(cfg), kvOptions(cfg, log)...),
	}
}

// Dialer selects the document backend named by cfg.DBDriver.
func Dialer(cfg *config.EnvConfig) docstore.Dialer {
	if cfg.DBDriver == config.DBDriverPostgres {
		return docstore.DialPostgres(db.Config{
			Host:        cfg.DBHost,
			Port:        cfg.DBPort,
			User:        cfg.DBUser,
			Password:    cfg.DBPassword,
			Database:    cfg.DBDatabase,
			SSLMode:     cfg.DBSSLMode,
			DialTimeout: cfg.DBConnectTimeout,
		})
	}
	return docstore.DialMongo(docstore.MongoConfig{
		Host:           cfg.DBHost,
		Port:           cfg.DBPort,
		Database:       cfg.DBDatabase,
		ConnectTimeout: cfg.DBConnectTimeout,
	})
}

// Store selects the key-value backend named by cfg.KVDriver.
func Store(cfg *config.EnvConfig) kv.Store {
	if cfg.KVDriver == config.KVDriverMemory {
		return kv.NewMemoryStore()
	}
	return kv.NewRedisStore(redisConfig(cfg))
}

func redisConfig(cfg *config.EnvConfig) kv.RedisConfig {
	return kv.RedisConfig{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: cfg.RedisDialTimeout,
	}
}

func kvOptions(cfg *config.EnvConfig, log *fmlog.Logger) []kv.Option {
	opts := []kv.Option{kv.WithLogger(log)}
	if cfg.KVOptimisticStart {
		opts = append(opts, kv.WithOptimisticStart())
	}
	return opts
}

// Close releases both stores.
func (s *Services) Close(ctx context.Context) error {
	var errs []error
	if s.DB != nil {
		errs = append(errs, s.DB.Close(ctx))
	}
	if s.KV != nil {
		errs = append(errs, s.KV.Close())
	}
	return errors.Join(errs...)
}
