package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "correct-horse" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{"code": "invalid_credentials", "message": "invalid email or password"},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": "token-1",
			"user": map[string]any{
				"user_id": "user-1", "name": "Asha Verma", "role": "alumni", "approved": true,
			},
		})
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoginPopulatesSessionAndCache(t *testing.T) {
	srv := authServer(t)
	dir := t.TempDir()
	s := NewSession(srv.URL, NewCache(dir))

	user, err := s.Login(context.Background(), "asha@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "alumni", s.CurrentRole())
	assert.True(t, s.IsApproved())

	token, cached, ok := NewCache(dir).Load()
	require.True(t, ok)
	assert.Equal(t, "token-1", token)
	assert.Equal(t, user, cached)
}

func TestLoginFailureKeepsUnauthenticated(t *testing.T) {
	srv := authServer(t)
	s := NewSession(srv.URL, NewCache(t.TempDir()))

	_, err := s.Login(context.Background(), "asha@example.com", "wrong")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusUnauthorized, authErr.Status)
	assert.Equal(t, "invalid_credentials", authErr.Code)
	assert.Equal(t, "", s.CurrentRole())
	assert.False(t, s.Authorize())
}

func TestLogoutThenRestoreStaysSignedOut(t *testing.T) {
	srv := authServer(t)
	cache := NewCache(t.TempDir())
	s := NewSession(srv.URL, cache)

	_, err := s.Login(context.Background(), "asha@example.com", "correct-horse")
	require.NoError(t, err)

	require.NoError(t, s.Logout(context.Background()))
	assert.Equal(t, "", s.Token())

	// second logout is a no-op, not an error
	require.NoError(t, s.Logout(context.Background()))

	assert.False(t, s.RestoreFromCache())
	assert.Equal(t, "", s.CurrentRole())
}

func TestRestoreFromCache(t *testing.T) {
	dir := t.TempDir()
	cache := NewCache(dir)
	require.NoError(t, cache.Save("token-1", Identity{ID: "user-1", Role: "student", Approved: true}))

	s := NewSession("http://localhost:0", cache)
	require.True(t, s.RestoreFromCache())
	assert.Equal(t, "student", s.CurrentRole())
	assert.True(t, s.IsApproved())
}

func TestCorruptedCacheReadsAsUnauthenticated(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "session.json"), []byte("{not json"), 0o600))

	s := NewSession("http://localhost:0", NewCache(dir))
	assert.False(t, s.RestoreFromCache())
	assert.Equal(t, "", s.CurrentRole())
}

func TestAuthorize(t *testing.T) {
	cases := []struct {
		name  string
		token string
		role  string
		roles []string
		want  bool
	}{
		{"unauthenticated always false", "", "", nil, false},
		{"unauthenticated with roles", "", "", []string{"admin"}, false},
		{"empty set admits any authenticated", "token-1", "student", nil, true},
		{"role in set", "token-1", "alumni", []string{"alumni", "admin"}, true},
		{"role not in set", "token-1", "student", []string{"alumni", "admin"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewSession("http://localhost:0", NewCache(t.TempDir()))
			s.token = tc.token
			s.user = Identity{Role: tc.role}
			assert.Equal(t, tc.want, s.Authorize(tc.roles...))
		})
	}
}

func TestUnauthorizedResponseClearsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"code": "unauthorized", "message": "invalid or expired session"},
		})
	}))
	defer srv.Close()

	s := NewSession(srv.URL, NewCache(t.TempDir()))
	s.token = "stale-token"
	s.user = Identity{ID: "user-1", Role: "alumni", Approved: true}

	_, err := s.UpdateProfile(context.Background(), ProfileParams{Name: "Asha"})
	require.Error(t, err)
	assert.Equal(t, "", s.Token())
	assert.Equal(t, DecisionSignIn, s.Guard("/jobs").Kind)
}
