package repository

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/hospitality-reservation/internal/model"
)

type UserRepo struct{ db Conn }

func NewUserRepo(db Conn) *UserRepo { return &UserRepo{db: db} }

const userColumns = "id,full_name,email,password_hash,phone,roles,is_active,created_at,updated_at"

// Create inserts u and fills its ID and timestamps. The password must
// already be hashed.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	db, err := r.db.Get(ctx)
	if err != nil {
		return err
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	now := time.Now().UTC().Truncate(time.Second)
	res, err := db.ExecContext(ctx,
		"INSERT INTO users (full_name,email,password_hash,phone,roles,is_active,created_at,updated_at) VALUES (?,?,?,?,?,?,?,?)",
		u.FullName, u.Email, u.PasswordHash, u.Phone, model.JoinRoles(u.Roles), u.IsActive, now, now)
	if err != nil {
		return translate(err, ErrEmailExists)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID, u.CreatedAt, u.UpdatedAt = uint64(id), now, now
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getOne(ctx, "email=?", strings.ToLower(strings.TrimSpace(email)))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.getOne(ctx, "id=?", id)
}

// List returns users ordered by id plus the unpaged total.
func (r *UserRepo) List(ctx context.Context, f UserFilter) ([]model.User, int, error) {
	db, err := r.db.Get(ctx)
	if err != nil {
		return nil, 0, err
	}
	var (
		where []string
		args  []any
	)
	if f.Role != "" {
		where = append(where, "FIND_IN_SET(?, roles)>0")
		args = append(args, string(f.Role))
	}
	if e := strings.ToLower(strings.TrimSpace(f.Email)); e != "" {
		where = append(where, "email LIKE ?")
		args = append(args, "%"+e+"%")
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}
	var total int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users"+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	q := "SELECT " + userColumns + " FROM users" + cond + " ORDER BY id"
	if f.Limit > 0 {
		q += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset())
	}
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []model.User{}
	for rows.Next() {
		var (
			u     model.User
			roles string
		)
		if err := rows.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.Phone, &roles, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, err
		}
		u.Roles = model.SplitRoles(roles)
		out = append(out, u)
	}
	return out, total, rows.Err()
}

// Delete removes the user. Bookings and invoices keep their contact
// snapshot; their customer_id is left dangling.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	return deleteRow(ctx, r.db, "users", id)
}

func (r *UserRepo) getOne(ctx context.Context, where string, arg any) (model.User, error) {
	var u model.User
	db, err := r.db.Get(ctx)
	if err != nil {
		return u, err
	}
	var roles string
	err = db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+where+" LIMIT 1", arg).
		Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.Phone, &roles, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, translate(err, ErrDuplicate)
	}
	u.Roles = model.SplitRoles(roles)
	return u, nil
}

// Update overwrites the mutable profile columns, roles and password hash.
func (r *UserRepo) Update(ctx context.Context, u model.User) error {
	db, err := r.db.Get(ctx)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx,
		"UPDATE users SET full_name=?, phone=?, roles=?, password_hash=?, is_active=? WHERE id=?",
		u.FullName, u.Phone, model.JoinRoles(u.Roles), u.PasswordHash, u.IsActive, u.ID)
	if err != nil {
		return translate(err, ErrEmailExists)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// MySQL reports 0 for unchanged rows as well; confirm existence.
		if _, err := r.GetByID(ctx, u.ID); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of registered users.
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	db, err := r.db.Get(ctx)
	if err != nil {
		return 0, err
	}
	var n int
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}
