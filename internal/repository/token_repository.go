package repository

import (
	"context"
	"time"
)

// TokenRepo keeps the ids of access tokens revoked by logout. Rows are
// only needed until the token would have expired anyway.
type TokenRepo struct{ db Conn }

func NewTokenRepo(db Conn) *TokenRepo { return &TokenRepo{db: db} }

// Revoke records tokenID as revoked until exp and drops rows whose tokens
// have expired since.
func (r *TokenRepo) Revoke(ctx context.Context, tokenID string, userID uint64, exp time.Time) error {
	db, err := r.db.Get(ctx)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		"INSERT IGNORE INTO revoked_tokens (token_id, user_id, expires_at) VALUES (?,?,?)",
		tokenID, userID, exp.UTC())
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, "DELETE FROM revoked_tokens WHERE expires_at < ?", time.Now().UTC())
	return err
}

// IsRevoked reports whether tokenID was revoked.
func (r *TokenRepo) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	db, err := r.db.Get(ctx)
	if err != nil {
		return false, err
	}
	var n int
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM revoked_tokens WHERE token_id=?", tokenID).Scan(&n)
	return n > 0, err
}
