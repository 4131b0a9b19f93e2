package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/lifedesk/internal/common"
	"github.com/dmitrijs2005/lifedesk/internal/logging"
	"github.com/dmitrijs2005/lifedesk/internal/server/auth"
	"github.com/dmitrijs2005/lifedesk/internal/server/models"
	"github.com/dmitrijs2005/lifedesk/internal/server/services"
	"github.com/stretchr/testify/assert"
)

// stubAuth accepts exactly one token.
type stubAuth struct {
	token string
	err   error
}

func (s *stubAuth) Authenticate(ctx context.Context, token string) (auth.Principal, error) {
	if s.err != nil {
		return auth.Principal{}, s.err
	}
	if token != s.token {
		return auth.Principal{}, common.ErrInvalidToken
	}
	return auth.Principal{UserID: "u-1", Email: "alice@example.com"}, nil
}

func (s *stubAuth) Signup(context.Context, string, string, string) (*services.AuthResult, error) {
	return nil, nil
}
func (s *stubAuth) Login(context.Context, string, string) (*services.AuthResult, error) {
	return nil, nil
}
func (s *stubAuth) Logout(context.Context, string) error { return nil }
func (s *stubAuth) Refresh(context.Context, string) (string, time.Time, error) {
	return "", time.Time{}, nil
}
func (s *stubAuth) Me(ctx context.Context, id string) (*models.User, error) {
	return &models.User{ID: id, Email: "alice@example.com", Name: "Alice"}, nil
}
func (s *stubAuth) DeleteAccount(context.Context, string, string) error { return nil }

func echoPrincipal(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	_, _ = w.Write([]byte(p.UserID))
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Bearer   abc ", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		token, ok := bearerToken(r)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.token, token, tt.header)
	}
}

func TestRequireAuth(t *testing.T) {
	s := NewServer(&stubAuth{token: "good"}, nil, nil, nil, logging.Nop{})
	h := s.requireAuth(http.HandlerFunc(echoPrincipal))

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing header", "", http.StatusUnauthorized, "missing or malformed"},
		{"wrong scheme", "Token good", http.StatusUnauthorized, "missing or malformed"},
		{"bad token", "Bearer bad", http.StatusUnauthorized, "invalid token"},
		{"good token", "Bearer good", http.StatusOK, "u-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, r)

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
		})
	}
}

func TestRequireAuth_DeletedAccount(t *testing.T) {
	s := NewServer(&stubAuth{err: common.ErrorUnauthorized}, nil, nil, nil, logging.Nop{})
	h := s.requireAuth(http.HandlerFunc(echoPrincipal))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer whatever")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalAuth_SwallowsFailures(t *testing.T) {
	s := NewServer(&stubAuth{token: "good"}, nil, nil, nil, logging.Nop{})
	h := s.optionalAuth(http.HandlerFunc(echoPrincipal))

	for header, want := range map[string]int{
		"":            http.StatusNoContent,
		"Bearer bad":  http.StatusNoContent,
		"Basic xyz":   http.StatusNoContent,
		"Bearer good": http.StatusOK,
	} {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		assert.Equal(t, want, rec.Code, header)
	}
}

func TestRecoverer(t *testing.T) {
	s := NewServer(nil, nil, nil, nil, logging.Nop{})
	h := s.recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}
