package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/hospitality-reservation/internal/model"
)

type MenuRepo struct{ db Conn }

func NewMenuRepo(db Conn) *MenuRepo { return &MenuRepo{db: db} }

const menuColumns = "id,name,description,price,category,dietary_options,is_active,created_at,updated_at"

func scanMenuItem(row interface{ Scan(...any) error }) (model.MenuItem, error) {
	var (
		m       model.MenuItem
		dietary []byte
	)
	err := row.Scan(&m.ID, &m.Name, &m.Description, &m.Price, &m.Category, &dietary, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	m.DietaryOptions = decodeList(dietary)
	return m, err
}

func (r *MenuRepo) Create(ctx context.Context, m *model.MenuItem) error {
	db, err := r.db.Get(ctx)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Truncate(time.Second)
	res, err := db.ExecContext(ctx,
		"INSERT INTO menu_items (name,description,price,category,dietary_options,is_active,created_at,updated_at) VALUES (?,?,?,?,?,?,?,?)",
		m.Name, m.Description, m.Price, m.Category, encodeList(m.DietaryOptions), m.IsActive, now, now)
	if err != nil {
		return translate(err, ErrDuplicate)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID, m.CreatedAt, m.UpdatedAt = uint64(id), now, now
	return nil
}

func (r *MenuRepo) GetByID(ctx context.Context, id uint64) (model.MenuItem, error) {
	db, err := r.db.Get(ctx)
	if err != nil {
		return model.MenuItem{}, err
	}
	m, err := scanMenuItem(db.QueryRowContext(ctx, "SELECT "+menuColumns+" FROM menu_items WHERE id=?", id))
	if err != nil {
		return model.MenuItem{}, translate(err, ErrDuplicate)
	}
	return m, nil
}

// GetMany loads the items with the given ids. Missing ids are simply
// absent from the result.
func (r *MenuRepo) GetMany(ctx context.Context, ids []uint64) (map[uint64]model.MenuItem, error) {
	out := make(map[uint64]model.MenuItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	db, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := db.QueryContext(ctx,
		"SELECT "+menuColumns+" FROM menu_items WHERE id IN ("+placeholders(len(ids))+")", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		out[m.ID] = m
	}
	return out, rows.Err()
}

func (r *MenuRepo) List(ctx context.Context, f MenuFilter) ([]model.MenuItem, error) {
	db, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}
	var (
		where []string
		args  []any
	)
	if f.Category != "" {
		where = append(where, "category=?")
		args = append(args, f.Category)
	}
	if f.ActiveOnly {
		where = append(where, "is_active=1")
	}
	q := "SELECT " + menuColumns + " FROM menu_items"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY category, name"
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.MenuItem{}
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MenuRepo) Update(ctx context.Context, m model.MenuItem) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockRow(ctx, tx, "menu_items", m.ID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			"UPDATE menu_items SET name=?, description=?, price=?, category=?, dietary_options=?, is_active=? WHERE id=?",
			m.Name, m.Description, m.Price, m.Category, encodeList(m.DietaryOptions), m.IsActive, m.ID)
		return err
	})
}

// Delete removes the item. Bookings and invoices keep their snapshots.
func (r *MenuRepo) Delete(ctx context.Context, id uint64) error {
	return deleteRow(ctx, r.db, "menu_items", id)
}
