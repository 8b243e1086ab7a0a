package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sql.Open does not dial, so a pool with an unreachable DSN is enough to
// exercise the handle lifecycle.
func fakeOpener(calls *int32, failFirst bool) Opener {
	return func(ctx context.Context) (*sql.DB, error) {
		n := atomic.AddInt32(calls, 1)
		if failFirst && n == 1 {
			return nil, errors.New("connection refused")
		}
		return sql.Open("mysql", DSN("u", "", "127.0.0.1", "1", "x"))
	}
}

func TestHandleInitialisesOnce(t *testing.T) {
	var calls int32
	h := NewHandle(fakeOpener(&calls, false))

	var wg sync.WaitGroup
	pools := make([]*sql.DB, 32)
	for i := range pools {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			db, err := h.Get(context.Background())
			assert.NoError(t, err)
			pools[i] = db
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	for _, p := range pools {
		assert.Same(t, pools[0], p)
	}
	require.NoError(t, h.Close())
	_, err := h.Get(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestHandleRetriesAfterFailure(t *testing.T) {
	var calls int32
	h := NewHandle(fakeOpener(&calls, true))

	_, err := h.Get(context.Background())
	require.Error(t, err)
	db, err := h.Get(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, db)
	assert.EqualValues(t, 2, calls)
	_ = h.Close()
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "app:pw@tcp(db:3306)/hotel?charset=utf8mb4&parseTime=true&loc=UTC&multiStatements=false",
		DSN("app", "pw", "db", "3306", "hotel"))
	assert.True(t, strings.HasPrefix(DSN("app", "", "db", "3306", "hotel"), "app@tcp("))
}

func TestSchemaStatements(t *testing.T) {
	stmts := Statements()
	require.NotEmpty(t, stmts)
	joined := strings.Join(stmts, "\n")
	for _, table := range []string{"table_slot_claims", "room_night_claims", "bill_sequences", "uq_orders_booking"} {
		assert.Contains(t, joined, table)
	}
	for _, s := range stmts {
		assert.True(t, strings.HasPrefix(strings.TrimSpace(s), "CREATE TABLE IF NOT EXISTS"), s)
	}
}

func TestStaticHandle(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	h := Static(db)

	got, err := h.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, db, got)

	mock.ExpectClose()
	require.NoError(t, h.Close())
	_, err = h.Get(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateRunsEveryStatement(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	stmts := Statements()
	for range stmts {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	require.NoError(t, Migrate(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateStopsAtFirstFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS").WillReturnError(errors.New("access denied"))
	err = Migrate(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema statement 2")
	assert.NoError(t, mock.ExpectationsWereMet())
}
