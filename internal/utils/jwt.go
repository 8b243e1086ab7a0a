// Package utils provides token creation and password hashing helpers.
package utils

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessToken is a signed JWT along with its id and expiry. The id (jti)
// is what logout records as revoked.
type AccessToken struct {
	Token string
	ID    string
	Exp   time.Time
}

// Claims is the verified content of an access token. Roles are
// informational: the user record stays the source of truth.
type Claims struct {
	UserID uint64
	Roles  []string
	ID     string
	Exp    time.Time
}

type tokenClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// NewAccessToken builds and signs an HS256 JWT for a user. The token
// carries sub, roles, jti, iat and exp.
func NewAccessToken(secret string, userID uint64, roles []string, ttl time.Duration) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	id := uuid.NewString()
	claims := tokenClaims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			ID:        id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, ID: id, Exp: exp}, nil
}

// ParseAccessToken verifies signature, algorithm and expiry and returns
// the claims. Every failure is reported as ErrInvalidToken.
func ParseAccessToken(secret, raw string) (Claims, error) {
	var tc tokenClaims
	tok, err := jwt.ParseWithClaims(raw, &tc, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	uid, err := strconv.ParseUint(tc.Subject, 10, 64)
	if err != nil || uid == 0 || tc.ID == "" {
		return Claims{}, ErrInvalidToken
	}
	return Claims{UserID: uid, Roles: tc.Roles, ID: tc.ID, Exp: tc.ExpiresAt.Time}, nil
}
