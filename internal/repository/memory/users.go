package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/iliyamo/hospitality-reservation/internal/model"
	"github.com/iliyamo/hospitality-reservation/internal/repository"
)

type UserRepo struct{ s *state }

func cloneUser(u model.User) model.User {
	u.Roles = append([]model.Role{}, u.Roles...)
	return u
}

func (r *UserRepo) Create(_ context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if _, ok := r.s.emails[u.Email]; ok {
		return repository.ErrEmailExists
	}
	u.ID = r.s.id()
	u.CreatedAt, u.UpdatedAt = now(), now()
	r.s.users[u.ID] = cloneUser(*u)
	r.s.emails[u.Email] = u.ID
	return nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, ok := r.s.emails[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return cloneUser(r.s.users[id]), nil
}

func (r *UserRepo) GetByID(_ context.Context, id uint64) (model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return cloneUser(u), nil
}

// Update keeps the stored email; only profile fields, roles, hash and
// the active flag change.
func (r *UserRepo) Update(_ context.Context, u model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.users[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.FullName = u.FullName
	cur.Phone = u.Phone
	cur.Roles = append([]model.Role{}, u.Roles...)
	cur.PasswordHash = u.PasswordHash
	cur.IsActive = u.IsActive
	cur.UpdatedAt = now()
	r.s.users[u.ID] = cur
	return nil
}

func (r *UserRepo) List(_ context.Context, f repository.UserFilter) ([]model.User, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email := strings.ToLower(strings.TrimSpace(f.Email))
	var all []model.User
	for _, u := range r.s.users {
		if f.Role != "" && !u.HasRole(f.Role) {
			continue
		}
		if email != "" && !strings.Contains(u.Email, email) {
			continue
		}
		all = append(all, cloneUser(u))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	lo, hi := f.Window(len(all))
	return append([]model.User{}, all[lo:hi]...), len(all), nil
}

func (r *UserRepo) Delete(_ context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(r.s.emails, u.Email)
	delete(r.s.users, id)
	return nil
}

func (r *UserRepo) Count(context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.users), nil
}

type TokenRepo struct{ s *state }

func (r *TokenRepo) Revoke(_ context.Context, tokenID string, _ uint64, exp time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.revoked[tokenID] = exp
	cutoff := time.Now()
	for id, e := range r.s.revoked {
		if e.Before(cutoff) {
			delete(r.s.revoked, id)
		}
	}
	return nil
}

func (r *TokenRepo) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.revoked[tokenID]
	return ok, nil
}
