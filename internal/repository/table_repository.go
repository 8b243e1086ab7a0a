package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/hospitality-reservation/internal/model"
)

// TableRepo provides CRUD operations for restaurant tables.
type TableRepo struct{ db Conn }

func NewTableRepo(db Conn) *TableRepo { return &TableRepo{db: db} }

const tableColumns = "id,table_number,capacity,location,shape,features,is_active,notes,created_at,updated_at"

func scanTable(row interface{ Scan(...any) error }) (model.Table, error) {
	var (
		t        model.Table
		features []byte
	)
	err := row.Scan(&t.ID, &t.TableNumber, &t.Capacity, &t.Location, &t.Shape, &features, &t.IsActive, &t.Notes, &t.CreatedAt, &t.UpdatedAt)
	t.Features = decodeList(features)
	return t, err
}

// Create inserts t. A duplicate table number yields ErrDuplicate.
func (r *TableRepo) Create(ctx context.Context, t *model.Table) error {
	db, err := r.db.Get(ctx)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Truncate(time.Second)
	res, err := db.ExecContext(ctx,
		"INSERT INTO restaurant_tables (table_number,capacity,location,shape,features,is_active,notes,created_at,updated_at) VALUES (?,?,?,?,?,?,?,?,?)",
		t.TableNumber, t.Capacity, t.Location, t.Shape, encodeList(t.Features), t.IsActive, t.Notes, now, now)
	if err != nil {
		return translate(err, ErrDuplicate)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID, t.CreatedAt, t.UpdatedAt = uint64(id), now, now
	return nil
}

func (r *TableRepo) GetByID(ctx context.Context, id uint64) (model.Table, error) {
	return r.getOne(ctx, "id=?", id)
}

func (r *TableRepo) GetByNumber(ctx context.Context, number string) (model.Table, error) {
	return r.getOne(ctx, "table_number=?", strings.TrimSpace(number))
}

func (r *TableRepo) getOne(ctx context.Context, where string, arg any) (model.Table, error) {
	db, err := r.db.Get(ctx)
	if err != nil {
		return model.Table{}, err
	}
	t, err := scanTable(db.QueryRowContext(ctx, "SELECT "+tableColumns+" FROM restaurant_tables WHERE "+where, arg))
	if err != nil {
		return model.Table{}, translate(err, ErrDuplicate)
	}
	return t, nil
}

// List returns tables ordered by capacity then number.
func (r *TableRepo) List(ctx context.Context, f TableFilter) ([]model.Table, error) {
	db, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}
	var (
		where []string
		args  []any
	)
	if f.Location != "" {
		where = append(where, "location=?")
		args = append(args, f.Location)
	}
	if f.MinCapacity > 0 {
		where = append(where, "capacity>=?")
		args = append(args, f.MinCapacity)
	}
	if f.ActiveOnly {
		where = append(where, "is_active=1")
	}
	q := "SELECT " + tableColumns + " FROM restaurant_tables"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY capacity, table_number"
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Table{}
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Update overwrites every mutable column of t. Renumbering a table that
// still holds slot claims fails with ErrInUse.
func (r *TableRepo) Update(ctx context.Context, t model.Table) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockRow(ctx, tx, "restaurant_tables", t.ID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			"UPDATE restaurant_tables SET table_number=?, capacity=?, location=?, shape=?, features=?, is_active=?, notes=? WHERE id=?",
			t.TableNumber, t.Capacity, t.Location, t.Shape, encodeList(t.Features), t.IsActive, t.Notes, t.ID)
		return translate(err, ErrDuplicate)
	})
}

// Delete removes the table. Active slot claims reference the table
// number, so a booked table fails with ErrInUse.
func (r *TableRepo) Delete(ctx context.Context, id uint64) error {
	return deleteRow(ctx, r.db, "restaurant_tables", id)
}

// lockRow takes a row lock and reports ErrNotFound for a missing id.
func lockRow(ctx context.Context, tx *sql.Tx, table string, id uint64) error {
	var got uint64
	err := tx.QueryRowContext(ctx, "SELECT id FROM "+table+" WHERE id=? FOR UPDATE", id).Scan(&got)
	return translate(err, ErrDuplicate)
}

func deleteRow(ctx context.Context, c Conn, table string, id uint64) error {
	db, err := c.Get(ctx)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id=?", id)
	if err != nil {
		return translate(err, ErrDuplicate)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
