package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/lifedesk/internal/client/models"
	"github.com/dmitrijs2005/lifedesk/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI imitates the server's envelope and auth behaviour.
type fakeAPI struct {
	mu           sync.Mutex
	validAccess  string
	refreshToken string
	refreshCalls int
	logoutStatus int
	seenBearers  []string

	// refreshEntered and refreshRelease, when set, hold /auth/refresh open
	// until the test lets it finish.
	refreshEntered chan struct{}
	refreshRelease chan struct{}
}

func (f *fakeAPI) holdRefresh() (entered <-chan struct{}, release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshEntered = make(chan struct{})
	f.refreshRelease = make(chan struct{})
	return f.refreshEntered, func() { close(f.refreshRelease) }
}

func (f *fakeAPI) set(fn func(f *fakeAPI)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func writeEnvelope(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": status < 300,
		"message": message,
		"data":    data,
	})
}

func (f *fakeAPI) checkBearer(w http.ResponseWriter, r *http.Request) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	f.seenBearers = append(f.seenBearers, token)
	if token != f.validAccess {
		writeEnvelope(w, http.StatusUnauthorized, "access token expired", nil)
		return false
	}
	return true
}

func (f *fakeAPI) refreshes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshCalls
}

func (f *fakeAPI) bearers() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.seenBearers...)
}

func (f *fakeAPI) failLogout(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutStatus = status
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	user := models.User{ID: "u-1", Email: "alice@example.com", Name: "Alice"}

	mux.HandleFunc("POST /auth/signup", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeEnvelope(w, http.StatusCreated, "", map[string]any{
			"user": user, "accessToken": f.validAccess, "refreshToken": f.refreshToken,
		})
	})
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["password"] != "correct horse" {
			writeEnvelope(w, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		writeEnvelope(w, http.StatusOK, "", map[string]any{
			"user": user, "accessToken": f.validAccess, "refreshToken": f.refreshToken,
		})
	})
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		entered, release := f.refreshEntered, f.refreshRelease
		f.mu.Unlock()
		if entered != nil {
			close(entered)
			<-release
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		f.refreshCalls++
		if req["refreshToken"] != f.refreshToken {
			writeEnvelope(w, http.StatusUnauthorized, "refresh token expired", nil)
			return
		}
		f.validAccess = "access-2"
		writeEnvelope(w, http.StatusOK, "", map[string]any{"accessToken": f.validAccess, "expiresAt": time.Now().Add(time.Minute)})
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		if !f.checkBearer(w, r) {
			return
		}
		f.mu.Lock()
		status := f.logoutStatus
		f.mu.Unlock()
		if status != 0 {
			writeEnvelope(w, status, "internal server error", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, "logged out", nil)
	})
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		if f.checkBearer(w, r) {
			writeEnvelope(w, http.StatusOK, "", user)
		}
	})
	mux.HandleFunc("GET /vault", func(w http.ResponseWriter, r *http.Request) {
		if f.checkBearer(w, r) {
			writeEnvelope(w, http.StatusOK, "", []models.VaultEntry{{ID: "e-1", Website: "example.com", Password: common.MaskedSecret}})
		}
	})
	mux.HandleFunc("POST /vault/{id}/reveal", func(w http.ResponseWriter, r *http.Request) {
		if !f.checkBearer(w, r) {
			return
		}
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["password"] != "correct horse" {
			writeEnvelope(w, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, "", map[string]string{"password": "Tr0ub4dor&3"})
	})
	mux.HandleFunc("GET /vault/{id}", func(w http.ResponseWriter, r *http.Request) {
		if f.checkBearer(w, r) {
			writeEnvelope(w, http.StatusNotFound, "not found", nil)
		}
	})
	return mux
}

type fakeClock struct {
	mu    sync.Mutex
	fns   []func()
	delay time.Duration
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) func() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delay = d
	c.fns = append(c.fns, f)
	return func() bool { return true }
}

func (c *fakeClock) fire() {
	c.mu.Lock()
	fns := c.fns
	c.fns = nil
	c.mu.Unlock()
	for _, f := range fns {
		f()
	}
}

func newFakeEnv(t *testing.T) (*fakeAPI, *Client, context.Context, *Session, *fakeClock) {
	t.Helper()
	api := &fakeAPI{validAccess: "access-1", refreshToken: "refresh-1"}
	ts := httptest.NewServer(api.handler())
	t.Cleanup(ts.Close)

	clock := &fakeClock{}
	c := New(ts.URL+"/", WithHTTPClient(ts.Client()), WithClock(clock), WithRevealTimeout(5*time.Second))
	s := NewSession(NewMemoryTokenStore())
	return api, c, WithSession(context.Background(), s), s, clock
}

func TestSignupStartsSession(t *testing.T) {
	_, c, ctx, s, _ := newFakeEnv(t)

	u, err := c.Signup(ctx, "Alice", "alice@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)
	assert.True(t, s.Authenticated())
	assert.Equal(t, u, s.User())

	tokens, err := s.Tokens()
	require.NoError(t, err)
	assert.Equal(t, models.Tokens{AccessToken: "access-1", RefreshToken: "refresh-1"}, tokens)
}

func TestLoginWrongPassword(t *testing.T) {
	_, c, ctx, s, _ := newFakeEnv(t)

	_, err := c.Login(ctx, "alice@example.com", "nope")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, s.Authenticated())
}

func TestCallsWithoutSession(t *testing.T) {
	_, c, _, _, _ := newFakeEnv(t)

	_, err := c.ListVault(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = c.Login(context.Background(), "alice@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestAnonymousSessionIsUnauthorized(t *testing.T) {
	_, c, ctx, _, _ := newFakeEnv(t)

	_, err := c.Me(ctx)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestExpiredAccessTokenRefreshesAndRetriesOnce(t *testing.T) {
	api, c, ctx, s, _ := newFakeEnv(t)
	require.NoError(t, s.begin(nil, models.Tokens{AccessToken: "stale", RefreshToken: "refresh-1"}))

	entries, err := c.ListVault(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, common.MaskedSecret, entries[0].Password)

	assert.Equal(t, 1, api.refreshes())
	assert.Equal(t, []string{"stale", "access-2"}, api.bearers())

	tokens, _ := s.Tokens()
	assert.Equal(t, models.Tokens{AccessToken: "access-2", RefreshToken: "refresh-1"}, tokens)
}

func TestRejectedRefreshEndsSession(t *testing.T) {
	api, c, ctx, s, _ := newFakeEnv(t)
	require.NoError(t, s.begin(&models.User{ID: "u-1"}, models.Tokens{AccessToken: "stale", RefreshToken: "revoked"}))

	_, err := c.Me(ctx)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 1, api.refreshes())
	assert.False(t, s.Authenticated())
	assert.Nil(t, s.User())
}

func TestRevealWrongPasswordDoesNotRefresh(t *testing.T) {
	api, c, ctx, _, _ := newFakeEnv(t)
	_, err := c.Signup(ctx, "Alice", "alice@example.com", "correct horse")
	require.NoError(t, err)

	secret, err := c.Reveal(ctx, "e-1", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Nil(t, secret)
	assert.Zero(t, api.refreshes())
}

func TestRevealMasksAfterTimeout(t *testing.T) {
	_, c, ctx, _, clock := newFakeEnv(t)
	_, err := c.Signup(ctx, "Alice", "alice@example.com", "correct horse")
	require.NoError(t, err)

	secret, err := c.Reveal(ctx, "e-1", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, clock.delay)

	v, ok := secret.Value()
	require.True(t, ok)
	assert.Equal(t, "Tr0ub4dor&3", v)
	assert.Equal(t, common.MaskedSecret, secret.String())

	clock.fire()

	assert.True(t, secret.Masked())
	v, ok = secret.Value()
	assert.False(t, ok)
	assert.Empty(t, v)

	secret.Mask()
	assert.True(t, secret.Masked())
}

func TestLogoutAlwaysClearsLocally(t *testing.T) {
	api, c, ctx, s, _ := newFakeEnv(t)
	_, err := c.Signup(ctx, "Alice", "alice@example.com", "correct horse")
	require.NoError(t, err)
	api.failLogout(http.StatusInternalServerError)

	err = c.Logout(ctx)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)

	assert.False(t, s.Authenticated())
	assert.Nil(t, s.User())
}

func TestLogoutDuringRefreshStaysLoggedOut(t *testing.T) {
	api, c, ctx, s, _ := newFakeEnv(t)
	require.NoError(t, s.begin(&models.User{ID: "u-1"}, models.Tokens{AccessToken: "stale", RefreshToken: "refresh-1"}))
	entered, release := api.holdRefresh()

	done := make(chan error, 1)
	go func() {
		_, err := c.Me(ctx)
		done <- err
	}()
	<-entered

	// the logout itself must not need a refresh
	api.set(func(f *fakeAPI) { f.validAccess = "stale" })
	require.NoError(t, c.Logout(ctx))
	require.False(t, s.Authenticated())

	release()
	assert.ErrorIs(t, <-done, ErrUnauthorized)

	tokens, err := s.Tokens()
	require.NoError(t, err)
	assert.True(t, tokens.Empty(), "got %+v", tokens)
	assert.False(t, s.Authenticated())
	assert.Nil(t, s.User())
}

func TestLoginDuringRefreshKeepsNewSession(t *testing.T) {
	api, c, ctx, s, _ := newFakeEnv(t)
	require.NoError(t, s.begin(nil, models.Tokens{AccessToken: "stale", RefreshToken: "refresh-1"}))
	entered, release := api.holdRefresh()

	done := make(chan error, 1)
	go func() {
		_, err := c.Me(ctx)
		done <- err
	}()
	<-entered

	// a fresh login rotates the server-side session
	api.set(func(f *fakeAPI) {
		f.validAccess = "access-login"
		f.refreshToken = "refresh-2"
	})
	_, err := c.Login(ctx, "alice@example.com", "correct horse")
	require.NoError(t, err)

	release()
	assert.ErrorIs(t, <-done, ErrUnauthorized)

	tokens, err := s.Tokens()
	require.NoError(t, err)
	assert.Equal(t, models.Tokens{AccessToken: "access-login", RefreshToken: "refresh-2"}, tokens)
	assert.NotNil(t, s.User())
}

func TestLogoutWhenServerUnreachable(t *testing.T) {
	c := New("http://127.0.0.1:1")
	s := NewSession(NewMemoryTokenStore())
	require.NoError(t, s.begin(nil, models.Tokens{AccessToken: "a", RefreshToken: "r"}))

	err := c.Logout(WithSession(context.Background(), s))
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.False(t, s.Authenticated())
}

func TestNotFoundMapsToCommonError(t *testing.T) {
	_, c, ctx, _, _ := newFakeEnv(t)
	_, err := c.Signup(ctx, "Alice", "alice@example.com", "correct horse")
	require.NoError(t, err)

	_, err = c.GetVaultEntry(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestAPIErrorUnwrap(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, common.ErrorValidation},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusNotFound, common.ErrorNotFound},
		{http.StatusConflict, common.ErrorConflict},
		{http.StatusServiceUnavailable, common.ErrorUnavailable},
	}
	for _, tt := range tests {
		err := error(&APIError{Status: tt.status, Message: "x"})
		if !errors.Is(err, tt.want) {
			t.Fatalf("status %d: want %v", tt.status, tt.want)
		}
	}
	assert.Nil(t, (&APIError{Status: http.StatusInternalServerError}).Unwrap())
}
