package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/salesdesk/crm-api/internal/api"
	"github.com/salesdesk/crm-api/internal/auth"
	"github.com/salesdesk/crm-api/internal/core/domain"
	"github.com/salesdesk/crm-api/internal/infrastructure/db/postgres"
	"github.com/salesdesk/crm-api/internal/infrastructure/db/redis"
	"github.com/salesdesk/crm-api/internal/pkg/config"
	"github.com/salesdesk/crm-api/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Connect(cfg.Postgres.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection failed")
	}
	if err := postgres.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("schema migration failed")
	}

	if err := seedAdmin(ctx, db, cfg); err != nil {
		log.Fatal().Err(err).Msg("admin account seeding failed")
	}

	// Redis is optional: without it, password changes do not revoke
	// already-issued tokens.
	var rdb *goredis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer rdb.Close()
		log.Info().Str("addr", cfg.Redis.Addr).Msg("token revocation store enabled")
	} else {
		log.Warn().Msg("REDIS_ADDR not set, token revocation disabled")
	}

	e := api.NewRouter(db, rdb, cfg, log)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// seedAdmin creates the initial admin account when no user with the
// configured name exists yet. Without it a fresh database has no account
// able to reach the admin-only endpoints.
func seedAdmin(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	if cfg.Admin.Password == "" {
		return nil
	}

	users := postgres.NewUsersRepository(db)
	if _, err := users.FindByUsername(ctx, cfg.Admin.Username); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}

	hash, err := auth.HashPassword(cfg.Admin.Password)
	if err != nil {
		return err
	}

	_, err = users.Create(ctx, &domain.User{
		Username:     cfg.Admin.Username,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	})
	return err
}
