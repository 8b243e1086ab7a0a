package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/iliyamo/hospitality-reservation/internal/apperr"
	"github.com/iliyamo/hospitality-reservation/internal/model"
	"github.com/iliyamo/hospitality-reservation/internal/repository"
	"github.com/iliyamo/hospitality-reservation/internal/utils"
)

type AuthConfig struct {
	Secret     string
	TokenTTL   time.Duration
	BcryptCost int
}

// AuthService issues and verifies access tokens and manages accounts.
type AuthService struct {
	users  UserStore
	tokens TokenStore
	cfg    AuthConfig
	log    *slog.Logger
}

// NewAuthService returns an AuthService signing tokens with cfg.Secret.
func NewAuthService(users UserStore, tokens TokenStore, cfg AuthConfig, log *slog.Logger) *AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 30 * 24 * time.Hour
	}
	return &AuthService{users: users, tokens: tokens, cfg: cfg, log: log}
}

type SignupInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phoneNo"`
}

// Session is returned by signup and login.
type Session struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      model.User `json:"user"`
}

func validEmail(s string) bool {
	a, err := mail.ParseAddress(s)
	return err == nil && a.Address == s
}

// Signup registers a customer account and returns a session.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (Session, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	switch {
	case in.FullName == "":
		return Session{}, apperr.Validation("fullName is required")
	case !validEmail(in.Email):
		return Session{}, apperr.Validation("a valid email is required")
	case len(in.Password) < utils.MinPasswordLength:
		return Session{}, apperr.Validation("password must be at least %d characters", utils.MinPasswordLength)
	}
	hash, err := utils.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return Session{}, apperr.Internal("hash password", err)
	}
	u := model.User{
		FullName:     in.FullName,
		Email:        in.Email,
		PasswordHash: hash,
		Phone:        in.Phone,
		Roles:        []model.Role{model.RoleCustomer},
		IsActive:     true,
	}
	if err := s.users.Create(ctx, &u); err != nil {
		return Session{}, storeErr("create user", "user", err)
	}
	s.log.Info("user registered", "user_id", u.ID)
	return s.issue(u)
}

// Login checks the password hash and returns a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return Session{}, apperr.Authentication("invalid email or password")
	}
	if err != nil {
		return Session{}, apperr.Internal("load user", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return Session{}, apperr.Authentication("invalid email or password")
	}
	if !u.IsActive {
		return Session{}, apperr.Authentication("account is disabled")
	}
	return s.issue(u)
}

func (s *AuthService) issue(u model.User) (Session, error) {
	roles := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, string(r))
	}
	tok, err := utils.NewAccessToken(s.cfg.Secret, u.ID, roles, s.cfg.TokenTTL)
	if err != nil {
		return Session{}, apperr.Internal("sign token", err)
	}
	return Session{Token: tok.Token, ExpiresAt: tok.Exp, User: u}, nil
}

// Authenticate verifies a bearer token and loads the current user. The
// roles come from the user record, not from the token.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (*Principal, error) {
	claims, err := utils.ParseAccessToken(s.cfg.Secret, raw)
	if err != nil {
		return nil, apperr.Authentication("invalid or expired token")
	}
	revoked, err := s.tokens.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, apperr.Internal("check revocation", err)
	}
	if revoked {
		return nil, apperr.Authentication("token has been revoked")
	}
	u, err := s.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Authentication("user no longer exists")
	}
	if err != nil {
		return nil, apperr.Internal("load user", err)
	}
	if !u.IsActive {
		return nil, apperr.Authentication("account is disabled")
	}
	return NewPrincipal(u), nil
}

// Logout revokes the token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	claims, err := utils.ParseAccessToken(s.cfg.Secret, raw)
	if err != nil {
		return apperr.Authentication("invalid or expired token")
	}
	if err := s.tokens.Revoke(ctx, claims.ID, claims.UserID, claims.Exp); err != nil {
		return apperr.Internal("revoke token", err)
	}
	return nil
}

// Me returns the caller's user record.
func (s *AuthService) Me(ctx context.Context, p *Principal) (model.User, error) {
	if p == nil {
		return model.User{}, apperr.Authentication("authentication required")
	}
	u, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		return model.User{}, storeErr("load user", "user", err)
	}
	return u, nil
}
