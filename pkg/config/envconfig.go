package config

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/quatton/filesmanager/pkg/utils"
)

const (
	DBDriverMongo    = "mongodb"
	DBDriverPostgres = "postgres"

	KVDriverRedis  = "redis"
	KVDriverMemory = "memory"
)

type EnvConfig struct {
	Port              string        `envconfig:"PORT" default:"5000"`
	Environment       string        `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel          string        `envconfig:"LOG_LEVEL" default:"info"`
	DBDriver          string        `envconfig:"DB_DRIVER" default:"mongodb"`
	DBHost            string        `envconfig:"DB_HOST" default:"localhost"`
	DBPort            int           `envconfig:"DB_PORT" default:"27017"`
	DBDatabase        string        `envconfig:"DB_DATABASE" default:"files_manager"`
	DBUser            string        `envconfig:"DB_USER"`
	DBPassword        string        `envconfig:"DB_PASSWORD"`
	DBSSLMode         string        `envconfig:"DB_SSLMODE" default:"disable"`
	DBConnectTimeout  time.Duration `envconfig:"DB_CONNECT_TIMEOUT" default:"5s"`
	KVDriver          string        `envconfig:"KV_DRIVER" default:"redis"`
	RedisAddr         string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword     string        `envconfig:"REDIS_PASSWORD"`
	RedisDB           int           `envconfig:"REDIS_DB" default:"0"`
	RedisDialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	KVOptimisticStart bool          `envconfig:"KV_OPTIMISTIC_START" default:"false"`
}

func ValidateEnv() (*EnvConfig, error) {
	if utils.IsDev() {
		if err := godotenv.Load(); err != nil {
			log.Println("ℹ No .env file found")
		} else {
			log.Println("✓ Loaded .env file")
		}
	}

	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate reports every invalid option at once.
func (c *EnvConfig) Validate() error {
	var errors []string

	if p, err := strconv.Atoi(c.Port); err != nil || p < 1 || p > 65535 {
		errors = append(errors, "  ❌ PORT must be a number between 1 and 65535")
	}

	switch c.DBDriver {
	case DBDriverMongo, DBDriverPostgres:
	default:
		errors = append(errors, fmt.Sprintf("  ❌ DB_DRIVER must be %q or %q", DBDriverMongo, DBDriverPostgres))
	}

	if c.DBPort < 1 || c.DBPort > 65535 {
		errors = append(errors, "  ❌ DB_PORT must be between 1 and 65535")
	}

	if c.DBDatabase == "" {
		errors = append(errors, "  ❌ DB_DATABASE must not be empty")
	}

	if c.DBDriver == DBDriverPostgres && c.DBUser == "" {
		errors = append(errors, "  ❌ DB_USER is required when DB_DRIVER=postgres")
	}

	if c.DBConnectTimeout <= 0 {
		errors = append(errors, "  ❌ DB_CONNECT_TIMEOUT must be positive")
	}

	switch c.KVDriver {
	case KVDriverRedis, KVDriverMemory:
	default:
		errors = append(errors, fmt.Sprintf("  ❌ KV_DRIVER must be %q or %q", KVDriverRedis, KVDriverMemory))
	}

	if c.RedisDB < 0 {
		errors = append(errors, "  ❌ REDIS_DB must not be negative")
	}

	if c.KVDriver == KVDriverRedis && c.RedisDialTimeout <= 0 {
		errors = append(errors, "  ❌ REDIS_DIAL_TIMEOUT must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("environment validation failed:\n%s", strings.Join(errors, "\n"))
	}
	return nil
}

func MaskSecret(secret string) string {
	if secret == "" {
		return "<not set>"
	}
	if len(secret) <= 8 {
		return "***"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}

func (c *EnvConfig) Print(fmtr func(string, ...interface{})) {
	fmtr("📋 Configuration:\n")
	fmtr("  Environment: %s\n", c.Environment)
	fmtr("  Port: %s\n", c.Port)
	fmtr("  Log level: %s\n", c.LogLevel)

	switch c.DBDriver {
	case DBDriverPostgres:
		fmtr("  Database: postgres %s@%s:%d/%s (sslmode=%s)\n", c.DBUser, c.DBHost, c.DBPort, c.DBDatabase, c.DBSSLMode)
		fmtr("    Password: %s\n", MaskSecret(c.DBPassword))
	default:
		fmtr("  Database: mongodb %s:%d/%s\n", c.DBHost, c.DBPort, c.DBDatabase)
	}
	fmtr("    Connect timeout: %s\n", c.DBConnectTimeout)

	switch c.KVDriver {
	case KVDriverMemory:
		fmtr("  Key-value: in-memory\n")
	default:
		fmtr("  Key-value: redis %s/%d\n", c.RedisAddr, c.RedisDB)
		fmtr("    Password: %s\n", MaskSecret(c.RedisPassword))
		fmtr("    Dial timeout: %s\n", c.RedisDialTimeout)
	}

	if c.KVOptimisticStart {
		fmtr("  Key-value liveness: ✓ optimistic start\n")
	}
}
