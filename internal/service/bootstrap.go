package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/iliyamo/hospitality-reservation/internal/model"
	"github.com/iliyamo/hospitality-reservation/internal/repository"
	"github.com/iliyamo/hospitality-reservation/internal/utils"
)

// BootstrapAdmin makes sure the configured admin account exists. It runs
// once at startup and never on the login path. A new account gets a
// bcrypt hash of password; an existing account keeps its password and is
// granted the admin role and re-activated. An empty email is a no-op.
func BootstrapAdmin(ctx context.Context, users UserStore, email, password string, cost int, log *slog.Logger) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}
	u, err := users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		hash, err := utils.HashPassword(password, cost)
		if err != nil {
			return err
		}
		u = model.User{
			FullName:     "Administrator",
			Email:        email,
			PasswordHash: hash,
			Roles:        []model.Role{model.RoleCustomer, model.RoleAdmin},
			IsActive:     true,
		}
		if err := users.Create(ctx, &u); err != nil {
			return err
		}
		log.Info("admin account created", "user_id", u.ID)
		return nil
	case err != nil:
		return err
	}
	if u.HasRole(model.RoleAdmin) && u.IsActive {
		return nil
	}
	if !u.HasRole(model.RoleAdmin) {
		u.Roles = append(u.Roles, model.RoleAdmin)
	}
	u.IsActive = true
	if err := users.Update(ctx, u); err != nil {
		return err
	}
	log.Info("admin role granted", "user_id", u.ID)
	return nil
}
