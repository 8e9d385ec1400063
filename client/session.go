package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// AuthError carries the server's error code and message for a failed
// authenticated request.
type AuthError struct {
	Status  int
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// Session owns the bearer token and cached identity for one signed-in user.
// All methods are safe for concurrent use.
type Session struct {
	baseURL string
	http    *http.Client
	cache   *Cache

	mu    sync.RWMutex
	token string
	user  Identity
}

func NewSession(baseURL string, cache *Cache) *Session {
	s := &Session{
		baseURL: strings.TrimRight(baseURL, "/"),
		cache:   cache,
	}
	s.http = &http.Client{
		Timeout:   15 * time.Second,
		Transport: &authTransport{session: s, base: http.DefaultTransport},
	}
	return s
}

// authTransport injects the bearer header and drops the local session on a
// 401, so the next guard check routes the caller back to sign-in.
type authTransport struct {
	session *Session
	base    http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if token := t.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		t.session.clearLocal()
	}
	return resp, nil
}

type serverUser struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Approved bool   `json:"approved"`
}

type authResponse struct {
	Token string     `json:"token"`
	User  serverUser `json:"user"`
}

type serverError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type RegisterParams struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Role           string `json:"role"`
	GraduationYear int    `json:"graduation_year,omitempty"`
}

func (s *Session) Login(ctx context.Context, email, password string) (Identity, error) {
	body := map[string]string{"email": email, "password": password}
	return s.authenticate(ctx, "/api/auth/login", body)
}

func (s *Session) Register(ctx context.Context, params RegisterParams) (Identity, error) {
	return s.authenticate(ctx, "/api/auth/register", params)
}

func (s *Session) authenticate(ctx context.Context, path string, body any) (Identity, error) {
	var resp authResponse
	if err := s.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return Identity{}, err
	}
	user := Identity{
		ID:       resp.User.UserID,
		Name:     resp.User.Name,
		Role:     resp.User.Role,
		Approved: resp.User.Approved,
	}
	s.mu.Lock()
	s.token = resp.Token
	s.user = user
	s.mu.Unlock()

	if err := s.cache.Save(resp.Token, user); err != nil {
		return Identity{}, fmt.Errorf("persist session: %w", err)
	}
	return user, nil
}

// Logout revokes the server session and clears local state. Local state is
// cleared even if the server call fails, so repeated calls are safe.
func (s *Session) Logout(ctx context.Context) error {
	err := s.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	s.clearLocal()
	if clearErr := s.cache.Clear(); clearErr != nil {
		return clearErr
	}
	var authErr *AuthError
	if err != nil && !errors.As(err, &authErr) {
		return err
	}
	return nil
}

// RestoreFromCache rehydrates the session from disk. It reports whether a
// usable token was found; it does not validate the token with the server.
func (s *Session) RestoreFromCache() bool {
	token, user, ok := s.cache.Load()
	if !ok {
		return false
	}
	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
	return true
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) CurrentUser() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.token != ""
}

func (s *Session) CurrentRole() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return ""
	}
	return s.user.Role
}

func (s *Session) IsApproved() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user.Approved
}

// Authorize reports whether the current role is acceptable. An empty role
// list admits any authenticated user. Unauthenticated is always false.
func (s *Session) Authorize(roles ...string) bool {
	role := s.CurrentRole()
	if role == "" {
		return false
	}
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

type ProfileParams struct {
	Name           string `json:"name,omitempty"`
	GraduationYear int    `json:"graduation_year,omitempty"`
	Company        string `json:"company,omitempty"`
	Bio            string `json:"bio,omitempty"`
	AvatarURL      string `json:"avatar_url,omitempty"`
}

func (s *Session) UpdateProfile(ctx context.Context, params ProfileParams) (Identity, error) {
	var user serverUser
	if err := s.do(ctx, http.MethodPatch, "/api/auth/profile", params, &user); err != nil {
		return Identity{}, err
	}
	updated := Identity{ID: user.UserID, Name: user.Name, Role: user.Role, Approved: user.Approved}
	s.mu.Lock()
	s.user = updated
	token := s.token
	s.mu.Unlock()

	if token != "" {
		if err := s.cache.Save(token, updated); err != nil {
			return Identity{}, fmt.Errorf("persist session: %w", err)
		}
	}
	return updated, nil
}

func (s *Session) clearLocal() {
	s.mu.Lock()
	s.token = ""
	s.user = Identity{}
	s.mu.Unlock()
}

func (s *Session) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var se serverError
		_ = json.NewDecoder(resp.Body).Decode(&se)
		return &AuthError{Status: resp.StatusCode, Code: se.Error.Code, Message: se.Error.Message}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
