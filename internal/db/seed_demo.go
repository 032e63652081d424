package db

import (
	"context"
	"errors"

	"github.com/geocoder89/wellbot/internal/config"
	"github.com/geocoder89/wellbot/internal/domain/user"
	"github.com/geocoder89/wellbot/internal/security"
)

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, in user.NewUser) (user.User, error)
}

// EnsureDemoUser creates the configured demo account once. The mimic login
// bypass issues tokens for it, so local dashboards work without Google.
func EnsureDemoUser(ctx context.Context, users UserStore, cfg config.Config) (user.User, error) {
	if cfg.DemoEmail == "" || cfg.DemoPassword == "" {
		return user.User{}, nil
	}

	// check if the user exists
	existing, err := users.GetByEmail(ctx, cfg.DemoEmail)

	if err == nil {
		return existing, nil
	}

	if !errors.Is(err, user.ErrNotFound) {
		return user.User{}, err
	}

	hash, err := security.HashPassword(cfg.DemoPassword)

	if err != nil {
		return user.User{}, err
	}

	return users.Create(ctx, user.NewUser{
		Name:         cfg.DemoName,
		Email:        cfg.DemoEmail,
		PasswordHash: hash,
		Language:     user.DefaultLanguage,
	})
}
