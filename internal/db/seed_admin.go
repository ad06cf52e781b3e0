package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/recipehub/internal/config"
	"github.com/geocoder89/recipehub/internal/domain/user"
	"github.com/geocoder89/recipehub/internal/security"
)

// AdminStore is the slice of the credential store the seed needs.
type AdminStore interface {
	FindByEmail(ctx context.Context, email string) (user.User, error)
	Insert(ctx context.Context, nu user.NewUser) (user.User, error)
}

// EnsureAdminUser creates the bootstrap admin once. Admin accounts cannot be
// self-registered, so this is the only way one comes into existence.
func EnsureAdminUser(ctx context.Context, users AdminStore, hasher security.Hasher, cfg config.Config) (bool, error) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return false, nil
	}

	_, err := users.FindByEmail(ctx, cfg.AdminEmail)

	if err == nil {
		return false, nil
	}

	if !errors.Is(err, user.ErrNotFound) {
		return false, err
	}

	hash, err := hasher.Hash(cfg.AdminPassword)

	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}

	_, err = users.Insert(ctx, user.NewUser{
		Username:     cfg.AdminUsername,
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		IsAdmin:      true,
	})

	if err != nil {
		return false, err
	}

	return true, nil
}
