package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-screener/internal/types"
)

func TestAuthHandler_InvalidJSON(t *testing.T) {
	ts := newTestServer(t, nil)

	for _, path := range []string{"/auth/register", "/auth/login"} {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte("invalid json")))
		w := ts.do(req, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Contains(t, w.Body.String(), "Invalid request body")
	}
}

func TestAuthHandler_ValidationErrors(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing username", map[string]string{"password": "password123"}},
		{"short username", map[string]string{"username": "ab", "password": "password123"}},
		{"missing password", map[string]string{"username": "alice"}},
		{"short password", map[string]string{"username": "alice", "password": "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.doJSON(t, http.MethodPost, "/auth/register", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "validation error")
		})
	}
}

func TestAuthHandler_Register(t *testing.T) {
	ts := newTestServer(t, nil)
	creds := types.CredentialsRequest{Username: "alice", Password: "password123"}

	w := ts.doJSON(t, http.MethodPost, "/auth/register", creds, "")
	require.Equal(t, http.StatusCreated, w.Code)
	resp := decode[types.RegisterResponse](t, w)
	assert.True(t, resp.Registered)
	require.NotNil(t, resp.User)
	assert.Equal(t, "alice", resp.User.Username)
	assert.NotContains(t, w.Body.String(), "password")

	w = ts.doJSON(t, http.MethodPost, "/auth/register", creds, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	resp = decode[types.RegisterResponse](t, w)
	assert.False(t, resp.Registered)
	assert.Nil(t, resp.User)
	assert.Contains(t, resp.Message, "alice")
}

func TestAuthHandler_Login(t *testing.T) {
	ts := newTestServer(t, nil)
	creds := types.CredentialsRequest{Username: "alice", Password: "password123"}
	require.Equal(t, http.StatusCreated, ts.doJSON(t, http.MethodPost, "/auth/register", creds, "").Code)

	w := ts.doJSON(t, http.MethodPost, "/auth/login", creds, "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[types.LoginResponse](t, w)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.User.Username)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), resp.ExpiresAt, time.Minute)
	assert.Equal(t, 1, ts.sessions.Len())

	w = ts.doJSON(t, http.MethodPost, "/auth/login", types.CredentialsRequest{Username: "alice", Password: "wrong-password"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.doJSON(t, http.MethodPost, "/auth/login", types.CredentialsRequest{Username: "mallory", Password: "password123"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Logout(t *testing.T) {
	ts := newTestServer(t, nil)
	token := ts.login(t, "alice")

	assert.Equal(t, http.StatusOK, ts.do(httptest.NewRequest(http.MethodGet, "/runs", nil), token).Code)

	w := ts.do(httptest.NewRequest(http.MethodPost, "/auth/logout", nil), token)
	assert.Equal(t, http.StatusNoContent, w.Code)

	// The token is still signed and unexpired, but its session is gone.
	assert.Equal(t, http.StatusUnauthorized, ts.do(httptest.NewRequest(http.MethodGet, "/runs", nil), token).Code)
	assert.Equal(t, http.StatusUnauthorized, ts.do(httptest.NewRequest(http.MethodPost, "/auth/logout", nil), token).Code)
}

func TestAuthHandler_SessionsAreIndependent(t *testing.T) {
	ts := newTestServer(t, nil)
	first := ts.login(t, "alice")

	w := ts.doJSON(t, http.MethodPost, "/auth/login", types.CredentialsRequest{Username: "alice", Password: "password123"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	second := decode[types.LoginResponse](t, w).Token

	require.Equal(t, http.StatusNoContent, ts.do(httptest.NewRequest(http.MethodPost, "/auth/logout", nil), first).Code)
	assert.Equal(t, http.StatusOK, ts.do(httptest.NewRequest(http.MethodGet, "/runs", nil), second).Code)
}
