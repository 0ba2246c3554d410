package utils

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/princinho/shopitbackend/config"
	"github.com/princinho/shopitbackend/database"
	"github.com/princinho/shopitbackend/models"
)

// SeedAdminUser creates the configured admin account if it does not exist.
// An existing account with the same email is left untouched.
func SeedAdminUser(ctx context.Context, users database.UserStore, hasher PasswordHasher, cfg config.AdminConfig) error {
	if cfg.Email == "" || cfg.Password == "" {
		slog.Info("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	reg := models.Registration{Name: cfg.Name, Email: cfg.Email, Password: cfg.Password}
	reg.Normalize()
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("invalid admin seed: %w", err)
	}

	hash, err := hasher.Hash(reg.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	err = users.Create(ctx, &models.User{
		Name:         reg.Name,
		Email:        reg.Email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	})
	switch {
	case errors.Is(err, database.ErrDuplicateEmail):
		slog.Info("admin user already exists", "email", reg.Email)
		return nil
	case err != nil:
		return fmt.Errorf("seed admin: %w", err)
	}

	slog.Info("admin user seeded", "email", reg.Email)
	return nil
}
