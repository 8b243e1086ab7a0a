package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hospitality-reservation/internal/apperr"
	"github.com/iliyamo/hospitality-reservation/internal/config"
	"github.com/iliyamo/hospitality-reservation/internal/logger"
	"github.com/iliyamo/hospitality-reservation/internal/model"
	"github.com/iliyamo/hospitality-reservation/internal/service"
)

type mockAuth struct{ mock.Mock }

func (m *mockAuth) Authenticate(ctx context.Context, raw string) (*service.Principal, error) {
	args := m.Called(ctx, raw)
	p, _ := args.Get(0).(*service.Principal)
	return p, args.Error(1)
}

func newContext(token string) echo.Context {
	req := httptest.NewRequest(http.MethodGet, "/api/restaurant", nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func customer() *service.Principal {
	return service.NewPrincipal(model.User{ID: 7, Email: "c@example.com", Roles: []model.Role{model.RoleCustomer}})
}

func ok(c echo.Context) error { return c.NoContent(http.StatusNoContent) }

func TestJWTAuthOptionalWithoutToken(t *testing.T) {
	auth := &mockAuth{}
	c := newContext("")
	require.NoError(t, JWTAuth(auth, false)(ok)(c))
	assert.Nil(t, Principal(c))
	assert.Equal(t, "anon", actorKey(c))
	auth.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
}

func TestJWTAuthRequiredWithoutToken(t *testing.T) {
	err := JWTAuth(&mockAuth{}, true)(ok)(newContext(""))
	assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))
}

func TestJWTAuthStoresPrincipal(t *testing.T) {
	auth := &mockAuth{}
	auth.On("Authenticate", mock.Anything, "good").Return(customer(), nil).Once()
	c := newContext("good")
	require.NoError(t, JWTAuth(auth, false)(ok)(c))
	require.NotNil(t, Principal(c))
	assert.Equal(t, uint64(7), Principal(c).UserID)
	assert.Equal(t, "7", c.Get(userIDKey))
	assert.Equal(t, "good", BearerToken(c))
	auth.AssertExpectations(t)
}

func TestJWTAuthRejectsBadTokenEvenWhenOptional(t *testing.T) {
	auth := &mockAuth{}
	auth.On("Authenticate", mock.Anything, "bad").Return(nil, apperr.Authentication("invalid or expired token"))
	err := JWTAuth(auth, false)(ok)(newContext("bad"))
	assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))
}

func TestRequireCapability(t *testing.T) {
	c := newContext("")
	err := RequireCapability(service.CapBillingManage)(ok)(c)
	assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))

	c.Set(principalKey, customer())
	err = RequireCapability(service.CapBillingManage)(ok)(c)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))

	assert.NoError(t, RequireCapability(service.CapBookingCreate)(ok)(c))
}

func TestLocalTokenBucket(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            time.Hour,
		KeyStrategy:    "ip",
		Prefix:         "rl",
	}
	e := echo.New()
	e.GET("/ping", ok, NewTokenBucket(cfg, nil, logger.Discard()))

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		last = httptest.NewRecorder()
		e.ServeHTTP(last, req)
		codes = append(codes, last.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
	assert.NotEmpty(t, last.Header().Get("Retry-After"))
	assert.Equal(t, "2", last.Header().Get("X-RateLimit-Limit"))

	// Another client has its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestBuildRateKey(t *testing.T) {
	c := newContext("")
	c.Request().RemoteAddr = "10.0.0.9:555"
	c.Set(userIDKey, "42")
	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}
	assert.Equal(t, "rl:user:42", buildRateKey(cfg, c))
	cfg.KeyStrategy = ""
	assert.Equal(t, "rl:ip:10.0.0.9:user:42", buildRateKey(cfg, c))
}

func TestCachePayloadRoundTrip(t *testing.T) {
	h := http.Header{}
	h.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	bs, err := encodePayload(http.StatusOK, h, []byte(`{"success":true}`))
	require.NoError(t, err)
	status, hdr, body, good := decodePayload(bs)
	require.True(t, good)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, echo.MIMEApplicationJSON, hdr.Get(echo.HeaderContentType))
	assert.Equal(t, `{"success":true}`, string(body))

	_, _, _, good = decodePayload([]byte("short"))
	assert.False(t, good)
}

func TestRequestDeadline(t *testing.T) {
	c := newContext("")
	var deadline time.Time
	var has bool
	h := RequestDeadline(time.Minute)(func(c echo.Context) error {
		deadline, has = c.Request().Context().Deadline()
		return nil
	})
	require.NoError(t, h(c))
	assert.True(t, has)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}
