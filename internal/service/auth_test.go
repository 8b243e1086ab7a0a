package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/hospitality-reservation/internal/apperr"
	"github.com/iliyamo/hospitality-reservation/internal/logger"
	"github.com/iliyamo/hospitality-reservation/internal/model"
	"github.com/iliyamo/hospitality-reservation/internal/repository/memory"
	"github.com/iliyamo/hospitality-reservation/internal/utils"
)

func newAuth(t *testing.T) (*AuthService, Stores) {
	t.Helper()
	st := MemoryStores(memory.New())
	auth := NewAuthService(st.Users, st.Tokens, AuthConfig{Secret: "test-secret", TokenTTL: time.Hour, BcryptCost: bcrypt.MinCost}, logger.Discard())
	return auth, st
}

func TestSignupLoginLogout(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuth(t)

	sess, err := auth.Signup(ctx, SignupInput{FullName: "Carol", Email: " Carol@Example.com ", Password: "hunter22", Phone: "555"})
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", sess.User.Email)
	assert.Equal(t, []model.Role{model.RoleCustomer}, sess.User.Roles)

	_, err = auth.Signup(ctx, SignupInput{FullName: "Carol", Email: "carol@example.com", Password: "hunter22"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = auth.Login(ctx, "carol@example.com", "wrong-pass")
	assert.True(t, apperr.Is(err, apperr.KindAuthentication))
	_, err = auth.Login(ctx, "nobody@example.com", "hunter22")
	assert.True(t, apperr.Is(err, apperr.KindAuthentication))

	login, err := auth.Login(ctx, "carol@example.com", "hunter22")
	require.NoError(t, err)
	p, err := auth.Authenticate(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, p.UserID)
	assert.True(t, p.Can(CapBookingCreate))
	assert.False(t, p.Can(CapBillingManage))

	require.NoError(t, auth.Logout(ctx, login.Token))
	_, err = auth.Authenticate(ctx, login.Token)
	assert.True(t, apperr.Is(err, apperr.KindAuthentication))

	// The signup session is a different token and still works.
	_, err = auth.Authenticate(ctx, sess.Token)
	require.NoError(t, err)
}

func TestSignupValidation(t *testing.T) {
	auth, _ := newAuth(t)
	for name, in := range map[string]SignupInput{
		"no name":        {Email: "a@example.com", Password: "hunter22"},
		"bad email":      {FullName: "A", Email: "not-an-email", Password: "hunter22"},
		"short password": {FullName: "A", Email: "a@example.com", Password: "abc"},
	} {
		_, err := auth.Signup(context.Background(), in)
		assert.True(t, apperr.Is(err, apperr.KindValidation), name)
	}
}

func TestRolesAreReadFromTheUserRecord(t *testing.T) {
	ctx := context.Background()
	auth, st := newAuth(t)
	sess, err := auth.Signup(ctx, SignupInput{FullName: "Dan", Email: "dan@example.com", Password: "hunter22"})
	require.NoError(t, err)

	u := sess.User
	u.Roles = append(u.Roles, model.RoleAdmin)
	require.NoError(t, st.Users.Update(ctx, u))
	p, err := auth.Authenticate(ctx, sess.Token)
	require.NoError(t, err)
	assert.True(t, p.Can(CapBillingManage))

	u.IsActive = false
	require.NoError(t, st.Users.Update(ctx, u))
	_, err = auth.Authenticate(ctx, sess.Token)
	assert.True(t, apperr.Is(err, apperr.KindAuthentication))
}

func TestBootstrapAdmin(t *testing.T) {
	ctx := context.Background()
	_, st := newAuth(t)
	log := logger.Discard()

	require.NoError(t, BootstrapAdmin(ctx, st.Users, "", "x", bcrypt.MinCost, log))
	n, err := st.Users.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, BootstrapAdmin(ctx, st.Users, "Root@Example.com", "s3cret!", bcrypt.MinCost, log))
	u, err := st.Users.GetByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	assert.True(t, u.HasRole(model.RoleAdmin))
	assert.True(t, utils.VerifyPassword(u.PasswordHash, "s3cret!"))

	// Running again keeps the existing password.
	require.NoError(t, BootstrapAdmin(ctx, st.Users, "root@example.com", "changed", bcrypt.MinCost, log))
	u, err = st.Users.GetByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	assert.True(t, utils.VerifyPassword(u.PasswordHash, "s3cret!"))

	other := model.User{Email: "ops@example.com", FullName: "Ops", Roles: []model.Role{model.RoleCustomer}}
	require.NoError(t, st.Users.Create(ctx, &other))
	require.NoError(t, BootstrapAdmin(ctx, st.Users, "ops@example.com", "x", bcrypt.MinCost, log))
	u, err = st.Users.GetByID(ctx, other.ID)
	require.NoError(t, err)
	assert.True(t, u.HasRole(model.RoleAdmin))
	assert.True(t, u.IsActive)
}
