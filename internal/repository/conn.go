package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/iliyamo/hospitality-reservation/internal/model"
)

// Conn hands out the shared pool. *database.Handle implements it and
// opens the pool lazily on first use.
type Conn interface {
	Get(ctx context.Context) (*sql.DB, error)
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx runs fn inside a transaction and commits when fn succeeds.
func withTx(ctx context.Context, c Conn, fn func(tx *sql.Tx) error) error {
	db, err := c.Get(ctx)
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// sqlDate renders the calendar date of t for a DATE column.
func sqlDate(t time.Time) string { return t.Format("2006-01-02") }

func encodeList(v []string) string {
	if v == nil {
		v = []string{}
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func decodeList(b []byte) []string {
	out := []string{}
	if len(b) > 0 {
		_ = json.Unmarshal(b, &out)
	}
	return out
}

func nullID(n sql.NullInt64) *uint64 {
	if !n.Valid {
		return nil
	}
	v := uint64(n.Int64)
	return &v
}

// placeholders returns "?,?,?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func activeStatusArgs() []any {
	return []any{string(model.StatusPending), string(model.StatusConfirmed), string(model.StatusCheckedIn)}
}

// activeStatusSQL lists the statuses that occupy a resource.
var activeStatusSQL = "(" + placeholders(3) + ")"
