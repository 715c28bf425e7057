package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/fasthttp/router"
	"github.com/nimasrn/reservation-hub/internal/model"
	"github.com/nimasrn/reservation-hub/internal/services"
	xhttp "github.com/nimasrn/reservation-hub/pkg/http"
	"github.com/nimasrn/reservation-hub/pkg/pg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func setupTestContext(method, path string, body []byte) *xhttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	if body != nil {
		ctx.Request.SetBody(body)
	}
	return ctx
}

func withBasicAuth(ctx *xhttp.RequestCtx, username, password string) *xhttp.RequestCtx {
	token := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	ctx.Request.Header.Set("Authorization", "Basic "+token)
	return ctx
}

// asUser authenticates every request as a user holding role.
func asUser(role model.Role) *Guard {
	auth := new(MockAuthenticator)
	auth.On("Authenticate", mock.Anything, "user", "pass").Return(&model.User{ID: 7, Username: "user", Role: role}, nil)
	return NewGuard(auth)
}

func newRouter() (*router.Router, *router.Group) {
	r := xhttp.CreateDefaultRouter()
	return r, r.Group("/api/v1")
}

func serve(r *router.Router, method, path string, body any) *xhttp.RequestCtx {
	var raw []byte
	switch v := body.(type) {
	case nil:
	case string:
		raw = []byte(v)
	default:
		raw, _ = json.Marshal(v)
	}
	ctx := withBasicAuth(setupTestContext(method, path, raw), "user", "pass")
	r.Handler(ctx)
	return ctx
}

func decodeBody(t *testing.T, ctx *xhttp.RequestCtx, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), dst), string(ctx.Response.Body()))
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{model.NewValidationError("name", "name is required"), fasthttp.StatusBadRequest},
		{services.ErrReferenceNotFound, fasthttp.StatusBadRequest},
		{services.ErrStoreNotFound, fasthttp.StatusNotFound},
		{fmt.Errorf("load: %w", services.ErrReservationNotFound), fasthttp.StatusNotFound},
		{services.ErrPublicLookupNotFound, fasthttp.StatusNotFound},
		{services.ErrTargetExists, fasthttp.StatusConflict},
		{services.ErrRevenueTypeInUse, fasthttp.StatusConflict},
		{services.ErrUserExists, fasthttp.StatusConflict},
		{services.ErrStatusTransition, fasthttp.StatusConflict},
		{services.ErrCodeGenerationExhausted, fasthttp.StatusServiceUnavailable},
		{services.ErrInvalidCredentials, fasthttp.StatusUnauthorized},
		{services.ErrForbidden, fasthttp.StatusForbidden},
		{errors.New("boom"), fasthttp.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			ctx := setupTestContext("GET", "/", nil)
			respondError(ctx, tt.err)
			assert.Equal(t, tt.status, ctx.Response.StatusCode())
		})
	}
}

func TestRespondError_ValidationCarriesField(t *testing.T) {
	ctx := setupTestContext("POST", "/", nil)
	respondError(ctx, model.NewValidationError("guests", "guests cannot be negative"))

	var body map[string]string
	decodeBody(t, ctx, &body)
	assert.Equal(t, "guests", body["field"])
	assert.Equal(t, "guests cannot be negative", body["error"])
}

func TestGuard(t *testing.T) {
	auth := new(MockAuthenticator)
	auth.On("Authenticate", mock.Anything, "admin", "secret").Return(&model.User{ID: 1, Role: model.RoleAdmin}, nil)
	auth.On("Authenticate", mock.Anything, "guest", "secret").Return(&model.User{ID: 2, Role: model.RoleGuest}, nil)
	auth.On("Authenticate", mock.Anything, "admin", "wrong").Return(nil, services.ErrInvalidCredentials)
	g := NewGuard(auth)

	var actor *int64
	next := func(ctx *xhttp.RequestCtx) {
		actor = pg.Actor(requestContext(ctx))
		ctx.SetStatusCode(fasthttp.StatusOK)
	}
	handler := g.Require(Staff, next)

	t.Run("missing credentials", func(t *testing.T) {
		ctx := setupTestContext("GET", "/", nil)
		handler(ctx)
		assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
		assert.NotEmpty(t, ctx.Response.Header.Peek("WWW-Authenticate"))
	})

	t.Run("wrong password", func(t *testing.T) {
		ctx := withBasicAuth(setupTestContext("GET", "/", nil), "admin", "wrong")
		handler(ctx)
		assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
	})

	t.Run("role not allowed", func(t *testing.T) {
		ctx := withBasicAuth(setupTestContext("GET", "/", nil), "guest", "secret")
		handler(ctx)
		assert.Equal(t, fasthttp.StatusForbidden, ctx.Response.StatusCode())
	})

	t.Run("any user admits guests", func(t *testing.T) {
		ctx := withBasicAuth(setupTestContext("GET", "/", nil), "guest", "secret")
		g.Require(AnyUser, next)(ctx)
		assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	})

	t.Run("allowed user is bound as actor", func(t *testing.T) {
		ctx := withBasicAuth(setupTestContext("GET", "/", nil), "admin", "secret")
		handler(ctx)
		assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
		require.NotNil(t, actor)
		assert.Equal(t, int64(1), *actor)
	})
}

func TestPathID(t *testing.T) {
	ctx := setupTestContext("GET", "/", nil)
	ctx.SetUserValue("id", "42")
	id, ok := pathID(ctx, "id")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	ctx = setupTestContext("GET", "/", nil)
	ctx.SetUserValue("id", "abc")
	_, ok = pathID(ctx, "id")
	assert.False(t, ok)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestTimestamp_Layouts(t *testing.T) {
	want := time.Date(2025, 8, 15, 19, 30, 0, 0, time.UTC)
	for _, raw := range []string{`"2025-08-15T19:30:00Z"`, `"2025-08-15T19:30"`, `"2025-08-15 19:30"`} {
		var ts Timestamp
		require.NoError(t, json.Unmarshal([]byte(raw), &ts), raw)
		assert.True(t, want.Equal(ts.Time), raw)
	}

	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`"2025-08-15"`), &ts))
	assert.Equal(t, time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC), ts.Time)

	assert.Error(t, json.Unmarshal([]byte(`"15/08/2025"`), &ts))
}

func useLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	prev := inputLocation
	SetLocation(loc)
	t.Cleanup(func() { inputLocation = prev })
	return loc
}

func TestTimestamp_ReadsOffsetFreeInStoreZone(t *testing.T) {
	jakarta := useLocation(t, "Asia/Jakarta")

	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`"2025-08-31T20:00"`), &ts))
	assert.True(t, time.Date(2025, 8, 31, 13, 0, 0, 0, time.UTC).Equal(ts.Time))
	assert.Equal(t, 31, ts.In(jakarta).Day())

	require.NoError(t, json.Unmarshal([]byte(`"2025-08-31"`), &ts))
	assert.True(t, time.Date(2025, 8, 31, 0, 0, 0, 0, jakarta).Equal(ts.Time))

	// an explicit offset wins
	require.NoError(t, json.Unmarshal([]byte(`"2025-08-31T20:00:00Z"`), &ts))
	assert.True(t, time.Date(2025, 8, 31, 20, 0, 0, 0, time.UTC).Equal(ts.Time))
}

type stubHealth struct{ err error }

func (s stubHealth) Get() error { return s.err }

func TestHealthHandler(t *testing.T) {
	r, g := newRouter()
	RegisterHealthRoutes(g, NewHealthHandler(stubHealth{}))
	ctx := setupTestContext("GET", "/api/v1/health", nil)
	r.Handler(ctx)
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	r, g = newRouter()
	RegisterHealthRoutes(g, NewHealthHandler(stubHealth{err: errors.New("redis: refused")}))
	ctx = setupTestContext("GET", "/api/v1/health", nil)
	r.Handler(ctx)
	assert.Equal(t, fasthttp.StatusServiceUnavailable, ctx.Response.StatusCode())
}
