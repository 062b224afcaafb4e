package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duccv/medrecords-api/internal/apperror"
	"github.com/duccv/medrecords-api/internal/auth"
	"github.com/duccv/medrecords-api/internal/constant"
	"github.com/duccv/medrecords-api/internal/model"
	"github.com/duccv/medrecords-api/internal/model/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubResolver struct {
	users map[string]auth.Identity
	err   error
}

func (r stubResolver) ResolveIdentity(_ context.Context, subject string) (auth.Identity, error) {
	if r.err != nil {
		return auth.Identity{}, r.err
	}
	id, ok := r.users[subject]
	if !ok {
		return auth.Identity{}, apperror.ErrInvalidToken
	}
	return id, nil
}

var aliceID = auth.Identity{UserID: "u-1", Email: "alice@example.com", Role: model.RoleUser}

type fixture struct {
	router *gin.Engine
	tokens *auth.TokenService
	clock  *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	f := &fixture{clock: &now}
	f.tokens = auth.NewTokenService([]byte("test-secret"), time.Hour, auth.WithClock(func() time.Time { return *f.clock }))

	authn := NewAuthenticator(f.tokens, stubResolver{users: map[string]auth.Identity{aliceID.Email: aliceID}})

	r := gin.New()
	r.Use(authn.Authenticate())
	r.GET("/public", func(c *gin.Context) {
		id, ok := auth.IdentityFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"authenticated": ok, "email": id.Email})
	})
	r.GET("/private", RequireAuth(), func(c *gin.Context) {
		id, _ := auth.IdentityFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"userId": id.UserID})
	})
	f.router = r
	return f
}

func (f *fixture) do(t *testing.T, path, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set(constant.HeaderAuthorization, authorization)
	}
	f.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorResponse {
	t.Helper()
	var body response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthenticateValidToken(t *testing.T) {
	f := newFixture(t)
	tok, err := f.tokens.Issue(aliceID.Email)
	require.NoError(t, err)

	w := f.do(t, "/private", "Bearer "+tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userId":"u-1"}`, w.Body.String())
}

func TestAuthenticateNeverRejectsPublicRoutes(t *testing.T) {
	f := newFixture(t)

	for _, header := range []string{"", "Basic abc", "Bearer ", "Bearer garbage"} {
		w := f.do(t, "/public", header)
		assert.Equal(t, http.StatusOK, w.Code, header)
		assert.JSONEq(t, `{"authenticated":false,"email":""}`, w.Body.String())
	}
}

func TestRequireAuthWithoutToken(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, "/private", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "UNAUTHORIZED", body.Status)
	assert.Equal(t, []string{"Unauthorized"}, body.Errors)
}

func TestRequireAuthInvalidToken(t *testing.T) {
	f := newFixture(t)

	other := auth.NewTokenService([]byte("other-secret"), time.Hour)
	tok, err := other.Issue(aliceID.Email)
	require.NoError(t, err)

	w := f.do(t, "/private", "Bearer "+tok)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, []string{"Unauthorized"}, decodeError(t, w).Errors)
}

func TestRequireAuthExpiredToken(t *testing.T) {
	f := newFixture(t)
	tok, err := f.tokens.Issue(aliceID.Email)
	require.NoError(t, err)

	*f.clock = f.clock.Add(2 * time.Hour)

	w := f.do(t, "/private", "Bearer "+tok)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, []string{"Token expired"}, decodeError(t, w).Errors)
}

func TestRequireAuthUnknownUser(t *testing.T) {
	f := newFixture(t)
	tok, err := f.tokens.Issue("ghost@example.com")
	require.NoError(t, err)

	w := f.do(t, "/private", "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateResolverFailureContinues(t *testing.T) {
	tokens := auth.NewTokenService([]byte("k"), time.Hour)
	authn := NewAuthenticator(tokens, stubResolver{err: errors.New("mongo down")})

	r := gin.New()
	r.Use(authn.Authenticate())
	r.GET("/public", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	tok, err := tokens.Issue("alice@example.com")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set(constant.HeaderAuthorization, "Bearer "+tok)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRequireAuthStoreFailureIsInternalError(t *testing.T) {
	tokens := auth.NewTokenService([]byte("k"), time.Hour)
	authn := NewAuthenticator(tokens, stubResolver{err: errors.New("mongo: server selection timeout")})

	r := gin.New()
	r.Use(authn.Authenticate())
	r.GET("/private", RequireAuth(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	tok, err := tokens.Issue("alice@example.com")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set(constant.HeaderAuthorization, "Bearer "+tok)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, []string{constant.MsgInternal}, body.Errors)
	assert.NotContains(t, w.Body.String(), "server selection")
}

func TestBearerToken(t *testing.T) {
	tok, ok := bearerToken("Bearer abc.def.ghi")
	assert.True(t, ok)
	assert.Equal(t, "abc.def.ghi", tok)

	for _, h := range []string{"", "bearer abc", "Token abc", "Bearer", "Bearer   "} {
		_, ok := bearerToken(h)
		assert.False(t, ok, h)
	}
}

func TestRateLimiter(t *testing.T) {
	cfg := DefaultMiddlewareConfig()
	cfg.RateLimitMax = 2
	cfg.RateLimitWindow = time.Hour
	rl := NewRateLimiter(cfg)
	t.Cleanup(rl.Stop)

	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(ip string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, call("10.0.0.1").Code)

	w := call("10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "TOO_MANY_REQUESTS", body.Status)
	assert.Equal(t, []string{"Too many requests"}, body.Errors)

	// buckets are per client
	assert.Equal(t, http.StatusOK, call("10.0.0.2").Code)
}

func TestRateLimiterEvictsIdleBuckets(t *testing.T) {
	cfg := DefaultMiddlewareConfig()
	cfg.RateLimitEnabled = false
	rl := NewRateLimiter(cfg)

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.allow("a")
	now = now.Add(bucketTTL + time.Second)
	rl.allow("b")
	rl.evictIdle()

	assert.NotContains(t, rl.buckets, "a")
	assert.Contains(t, rl.buckets, "b")
}

func TestRateLimiterDisabled(t *testing.T) {
	cfg := DefaultMiddlewareConfig()
	cfg.RateLimitEnabled = false
	cfg.RateLimitMax = 1
	rl := NewRateLimiter(cfg)

	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestCorrelationID(t *testing.T) {
	r := gin.New()
	r.Use(CorrelationIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, CorrelationID(c.Request.Context()))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(constant.HeaderCorrelationID, "abc-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(constant.HeaderCorrelationID))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Body.String(), 36)
	assert.Equal(t, w.Body.String(), w.Header().Get(constant.HeaderCorrelationID))
}

func TestRequestIDAndLogger(t *testing.T) {
	lm := NewLoggingMiddleware(DefaultMiddlewareConfig())

	r := gin.New()
	r.Use(lm.RequestID(), lm.RequestLogger())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(constant.RequestIDKey)) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(constant.HeaderRequestID, "req-1")
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-1", w.Body.String())
	assert.Equal(t, "req-1", w.Header().Get(constant.HeaderRequestID))
}
