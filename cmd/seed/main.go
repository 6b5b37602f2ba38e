package main

import (
	"context"
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vidstream-accounts/config"
	"github.com/oksasatya/vidstream-accounts/internal/domain/entity"
	"github.com/oksasatya/vidstream-accounts/internal/domain/repository"
	pginfra "github.com/oksasatya/vidstream-accounts/internal/infrastructure/postgres"
	"github.com/oksasatya/vidstream-accounts/pkg/helpers"
)

// seed creates a demo account; running it twice leaves the existing one in place.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, pginfra.PoolOptions{DSN: cfg.PostgresDSN(), MaxConns: 2})
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()
	repo := pginfra.NewAccountRepository(pool)

	username := getenv("SEED_USERNAME", "demo")
	email := getenv("SEED_EMAIL", "demo@vidstream.local")
	password := getenv("SEED_PASSWORD", "password123")

	if existing, err := repo.FindByUsernameOrEmail(ctx, username, email); err == nil {
		logger.WithFields(logrus.Fields{"id": existing.ID, "username": existing.Username}).Info("demo account already exists")
		return
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		logger.WithError(err).Fatal("failed to hash password")
	}
	a := &entity.Account{
		Username:  username,
		Email:     email,
		Fullname:  "Demo Creator",
		Password:  hash,
		AvatarURL: getenv("SEED_AVATAR_URL", "https://storage.googleapis.com/vidstream-public/avatars/default.png"),
	}
	if err := repo.Create(ctx, a); err != nil {
		if errors.Is(err, repository.ErrDuplicateAccount) {
			logger.Info("demo account already exists")
			return
		}
		logger.WithError(err).Fatal("failed to seed account")
	}
	logger.WithFields(logrus.Fields{"id": a.ID, "username": username, "email": email}).Info("seeded demo account")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
