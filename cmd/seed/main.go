package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/loopers/commerce-api/config"
	"github.com/loopers/commerce-api/internal/domain/entity"
	"github.com/loopers/commerce-api/internal/domain/service"
	pginfra "github.com/loopers/commerce-api/internal/infrastructure/postgres"
	"github.com/loopers/commerce-api/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), 2, 1, time.Minute)
	if err != nil {
		helpers.LogError(logger, "failed to open db", err, nil)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		helpers.LogError(logger, "migration failed", err, nil)
		os.Exit(1)
	}

	users, err := service.NewUserService(
		pginfra.NewUserRepository(pool),
		pginfra.NewTransactor(pool),
		helpers.NewBcryptEncoder(cfg.BcryptCost),
		service.WithLogger(logger),
	)
	if err != nil {
		helpers.LogError(logger, "failed to build user service", err, nil)
		os.Exit(1)
	}

	loginID := "demouser"
	password := "Demo!Pass2024"
	birthDate := time.Date(1995, 3, 15, 0, 0, 0, 0, time.UTC)

	u, err := users.Register(ctx, loginID, password, "데모유저", birthDate, "demo@example.com")
	switch {
	case errors.Is(err, entity.ErrDuplicateLoginID):
		fmt.Printf("demo user already exists: login_id=%s\n", loginID)
	case err != nil:
		helpers.LogError(logger, "failed to seed user", err, nil)
		os.Exit(1)
	default:
		fmt.Printf("seeded user: id=%d login_id=%s password=%s\n", u.ID(), u.LoginID(), password)
	}
}
