package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/iliyamo/hospitality-reservation/internal/apperr"
	"github.com/iliyamo/hospitality-reservation/internal/model"
	"github.com/iliyamo/hospitality-reservation/internal/repository"
)

// UserService is account administration: listing users, granting roles,
// deactivating and deleting accounts. Every operation needs
// CapUsersManage.
type UserService struct {
	users UserStore
	log   *slog.Logger
}

// NewUserService manages the accounts in users.
func NewUserService(users UserStore, log *slog.Logger) *UserService {
	return &UserService{users: users, log: log}
}

// UserPatch is a partial account update. Roles replaces the whole role
// set; customer is always kept.
type UserPatch struct {
	FullName *string   `json:"fullName"`
	Phone    *string   `json:"phoneNo"`
	Roles    *[]string `json:"roles"`
	IsActive *bool     `json:"isActive"`
}

// List returns accounts ordered by id.
func (s *UserService) List(ctx context.Context, p *Principal, f repository.UserFilter) ([]model.User, int, error) {
	if err := Authorize(p, CapUsersManage); err != nil {
		return nil, 0, err
	}
	if f.Role != "" {
		r, ok := model.ParseRole(string(f.Role))
		if !ok {
			return nil, 0, apperr.Validation("unknown role %q", f.Role)
		}
		f.Role = r
	}
	out, total, err := s.users.List(ctx, f)
	if err != nil {
		return nil, 0, apperr.Internal("list users", err)
	}
	return out, total, nil
}

// Get returns one account.
func (s *UserService) Get(ctx context.Context, p *Principal, id uint64) (model.User, error) {
	if err := Authorize(p, CapUsersManage); err != nil {
		return model.User{}, err
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return model.User{}, storeErr("load user", "user", err)
	}
	return u, nil
}

// parseRoles validates names, drops duplicates and makes sure customer
// is present.
func parseRoles(names []string) ([]model.Role, error) {
	out := []model.Role{model.RoleCustomer}
	seen := map[model.Role]bool{model.RoleCustomer: true}
	for _, n := range names {
		r, ok := model.ParseRole(n)
		if !ok {
			return nil, apperr.Validation("unknown role %q", n)
		}
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out, nil
}

// Update changes profile fields, roles or the active flag. Callers cannot
// drop their own admin role or deactivate themselves.
func (s *UserService) Update(ctx context.Context, p *Principal, id uint64, patch UserPatch) (model.User, error) {
	if err := Authorize(p, CapUsersManage); err != nil {
		return model.User{}, err
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return model.User{}, storeErr("load user", "user", err)
	}
	if patch.FullName != nil {
		name := strings.TrimSpace(*patch.FullName)
		if name == "" {
			return model.User{}, apperr.Validation("fullName cannot be empty")
		}
		u.FullName = name
	}
	if patch.Phone != nil {
		u.Phone = strings.TrimSpace(*patch.Phone)
	}
	if patch.Roles != nil {
		roles, err := parseRoles(*patch.Roles)
		if err != nil {
			return model.User{}, err
		}
		u.Roles = roles
	}
	if patch.IsActive != nil {
		u.IsActive = *patch.IsActive
	}
	if id == p.UserID && (!u.HasRole(model.RoleAdmin) || !u.IsActive) {
		return model.User{}, apperr.Validation("you cannot remove your own admin access")
	}
	if err := s.users.Update(ctx, u); err != nil {
		return model.User{}, storeErr("update user", "user", err)
	}
	s.log.Info("user updated", "user_id", u.ID, "roles", model.JoinRoles(u.Roles), "active", u.IsActive, "by", p.UserID)
	updated, err := s.users.GetByID(ctx, id)
	if err != nil {
		return model.User{}, storeErr("load user", "user", err)
	}
	return updated, nil
}

// Delete removes an account. Callers cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, p *Principal, id uint64) error {
	if err := Authorize(p, CapUsersManage); err != nil {
		return err
	}
	if id == p.UserID {
		return apperr.Validation("you cannot delete your own account")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return storeErr("delete user", "user", err)
	}
	s.log.Info("user deleted", "user_id", id, "by", p.UserID)
	return nil
}
