package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(ctx context.Context, user, pass, host, port, name string) (*sql.DB, error) {
	db, err := sql.Open("mysql", DSN(user, pass, host, port, name))
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// DSN builds the driver connection string. parseTime maps DATE and
// DATETIME columns to time.Time; loc=UTC keeps calendar dates stable.
func DSN(user, pass, host, port, name string) string {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC&multiStatements=false",
		auth, host, port, name)
}

// Opener creates a ready-to-use pool.
type Opener func(ctx context.Context) (*sql.DB, error)

// ErrClosed is returned by Get after Close.
var ErrClosed = errors.New("database handle closed")

// Handle is the process wide storage client. The pool is opened on the
// first Get; concurrent callers wait for that single initialisation and
// then share the pool. A failed initialisation is not cached, so the next
// caller retries.
type Handle struct {
	open   Opener
	mu     sync.Mutex
	db     *sql.DB
	closed bool
}

func NewHandle(open Opener) *Handle { return &Handle{open: open} }

// Static wraps an already opened pool.
func Static(db *sql.DB) *Handle { return &Handle{db: db} }

// Get returns the shared pool, opening it on first use.
func (h *Handle) Get(ctx context.Context) (*sql.DB, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrClosed
	}
	if h.db != nil {
		return h.db, nil
	}
	if h.open == nil {
		return nil, errors.New("database handle has no opener")
	}
	db, err := h.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	h.db = db
	return db, nil
}

// Close shuts the pool down. Later calls to Get fail with ErrClosed.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	if h.db == nil {
		return nil
	}
	err := h.db.Close()
	h.db = nil
	return err
}
