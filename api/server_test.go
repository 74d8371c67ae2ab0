/*
server_test.go - Harness and route-level tests for the HTTP API

Builds a full router over the in-memory store with a pinned clock, then
drives it with httptest requests the way the frontend would.
*/
package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairhaven/cetrack/api"
	"github.com/fairhaven/cetrack/ce"
	"github.com/fairhaven/cetrack/designations"
	"github.com/fairhaven/cetrack/store/memory"
)

// Every test runs on 2025-06-15 so period math stays stable.
var testToday = ce.NewTimePoint(2025, time.June, 15)

type testServer struct {
	h      *api.Handler
	store  *memory.Store
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	return buildTestServer(t, false)
}

// newDevTestServer enables dev mode, which adds the scenario routes.
func newDevTestServer(t *testing.T) *testServer {
	return buildTestServer(t, true)
}

func buildTestServer(t *testing.T, dev bool) *testServer {
	t.Helper()
	st := memory.New()
	reg, err := designations.NewRegistry()
	require.NoError(t, err)

	tokens := &api.TokenManager{Secret: []byte("test-secret"), TTL: time.Hour}
	h := api.NewHandler(st, reg, tokens, &api.LogMailer{Log: zerolog.Nop()}, zerolog.Nop())
	h.BaseURL = "https://cetrack.test"
	h.Dev = dev
	h.Clock = func() ce.TimePoint { return testToday }

	return &testServer{h: h, store: st, router: api.NewRouter(h, []string{"*"})}
}

// do sends a JSON request through the router. An empty token leaves the
// Authorization header off.
func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decodeAs(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), "body: %s", rec.Body.String())
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body api.ErrorResponse
	decodeAs(t, rec, &body)
	return body.Error
}

// register creates an account through the public endpoint and returns
// the issued session.
func (ts *testServer) register(t *testing.T, username, email string, held ...api.DesignationInput) api.AuthResponse {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/auth/register", "", api.RegisterRequest{
		Username:        username,
		Email:           email,
		Password:        "hunter2!",
		ConfirmPassword: "hunter2!",
		DisclaimerAck:   true,
		Designations:    held,
	})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	var session api.AuthResponse
	decodeAs(t, rec, &session)
	return session
}

// promote flips the admin bit directly in the store.
func (ts *testServer) promote(t *testing.T, username string) {
	t.Helper()
	user, err := ts.store.UserByUsername(context.Background(), username)
	require.NoError(t, err)
	user.IsAdmin = true
	require.NoError(t, ts.store.UpdateUser(context.Background(), user))
}

// =============================================================================
// HEALTH AND STATIC
// =============================================================================

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestUnknownAPIRouteIs404(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/nope", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// AUTH MIDDLEWARE
// =============================================================================

func TestRequireAuth_MissingHeader(t *testing.T) {
	// GIVEN no Authorization header
	ts := newTestServer(t)

	// WHEN hitting a protected route
	rec := ts.do(t, http.MethodGet, "/api/profile", "", nil)

	// THEN 401 with the standard message
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Missing or invalid authorization header", errorMessage(t, rec))
}

func TestRequireAuth_GarbageToken(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/profile", "not-a-jwt", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid token", errorMessage(t, rec))
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	// GIVEN a token issued two hours ago with a one hour TTL
	ts := newTestServer(t)
	session := ts.register(t, "dana", "dana@example.com")

	user, err := ts.store.UserByUsername(context.Background(), "dana")
	require.NoError(t, err)
	stale, err := ts.h.Tokens.Issue(user.ID, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	// WHEN using it
	rec := ts.do(t, http.MethodGet, "/api/profile", stale, nil)

	// THEN the client is told to log in again
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Session expired, please log in again", errorMessage(t, rec))

	// And the fresh session still works
	rec = ts.do(t, http.MethodGet, "/api/profile", session.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuth_TokenForDeletedUser(t *testing.T) {
	// GIVEN a valid token whose user no longer exists
	ts := newTestServer(t)
	missing, err := ts.h.Tokens.Issue("user-gone", time.Now())
	require.NoError(t, err)

	// WHEN using it
	rec := ts.do(t, http.MethodGet, "/api/profile", missing, nil)

	// THEN 401, not 500
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin_BlocksRegularUsers(t *testing.T) {
	// GIVEN a regular account
	ts := newTestServer(t)
	session := ts.register(t, "dana", "dana@example.com")

	// WHEN hitting an admin route
	rec := ts.do(t, http.MethodGet, "/api/admin/stats", session.Token, nil)

	// THEN 403
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Admin access required", errorMessage(t, rec))
}

func TestRequireAdmin_AllowsAdmins(t *testing.T) {
	ts := newTestServer(t)
	session := ts.register(t, "root", "root@example.com")
	ts.promote(t, "root")

	rec := ts.do(t, http.MethodGet, "/api/admin/stats", session.Token, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}
