package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	// TokenTTLMinutes bounds how long an issued bearer token stays valid.
	TokenTTLMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES, default=30"`
	LogLevel        string `env:"LOG_LEVEL, default=info"`

	Postgres PostgresConfig
	Redis    RedisConfig
	Admin    AdminConfig
}

type PostgresConfig struct {
	DSN string `env:"DATABASE_URL, default=postgres://localhost:5432/crm?sslmode=disable"`
}

// RedisConfig is optional: with an empty Addr the token revocation store is
// disabled and tokens stay valid until natural expiry.
type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

// AdminConfig seeds the initial admin account on first start so the
// admin-only user endpoints are reachable on a fresh database.
type AdminConfig struct {
	Username string `env:"ADMIN_NAME,     default=admin"`
	Password string `env:"ADMIN_PASSWORD"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
