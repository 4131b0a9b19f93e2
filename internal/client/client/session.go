package client

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/lifedesk/internal/client/models"
)

// Session is one user's client-side auth state. Tokens live in the store;
// the user profile is kept in memory only.
type Session struct {
	mu    sync.Mutex
	store TokenStore
	user  *models.User
}

func NewSession(store TokenStore) *Session {
	return &Session{store: store}
}

// Tokens returns the stored token pair.
func (s *Session) Tokens() (models.Tokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Get()
}

// Authenticated reports whether the session holds any credential.
func (s *Session) Authenticated() bool {
	t, err := s.Tokens()
	return err == nil && !t.Empty()
}

func (s *Session) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Session) setUser(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
}

func (s *Session) begin(u *models.User, t models.Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Set(t); err != nil {
		return err
	}
	s.user = u
	return nil
}

// setAccessToken stores access only while the session still holds the
// refresh token it was traded for. A logout or a newer login in between
// wins and ErrUnauthorized is returned.
func (s *Session) setAccessToken(refreshToken, access string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.store.Get()
	if err != nil {
		return err
	}
	if t.RefreshToken == "" || t.RefreshToken != refreshToken {
		return ErrUnauthorized
	}
	t.AccessToken = access
	return s.store.Set(t)
}

// End forgets the user and clears the stored tokens.
func (s *Session) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	return s.store.Clear()
}

// endIfCurrent ends the session only if it still holds refreshToken.
func (s *Session) endIfCurrent(refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.store.Get()
	if err != nil {
		return err
	}
	if t.RefreshToken != refreshToken {
		return nil
	}
	s.user = nil
	return s.store.Clear()
}

type sessionKey struct{}

// WithSession attaches s to ctx for authenticated Client calls.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}
