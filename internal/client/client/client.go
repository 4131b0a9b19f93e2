package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/lifedesk/internal/client/models"
)

const DefaultRevealTimeout = 30 * time.Second

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type Client struct {
	baseURL       string
	http          *http.Client
	revealTimeout time.Duration
	clock         Clock

	// refreshMu serialises refreshes so concurrent 401s trade the refresh
	// token once.
	refreshMu sync.Mutex
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithRevealTimeout(d time.Duration) Option {
	return func(c *Client) { c.revealTimeout = d }
}

func WithClock(clock Clock) Option {
	return func(c *Client) { c.clock = clock }
}

// New returns a Client for the server at baseURL, e.g. "http://127.0.0.1:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		http:          &http.Client{Timeout: 10 * time.Second},
		revealTimeout: DefaultRevealTimeout,
		clock:         realClock{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// HTTPClient exposes the underlying transport, e.g. for presigned downloads.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// send performs one request and decodes the envelope's data into out.
func (c *Client) send(ctx context.Context, method, path string, body []byte, bearer string, out any) error {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= 300 || !env.Success {
		return &APIError{Status: resp.StatusCode, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}

func marshalBody(in any) ([]byte, error) {
	if in == nil {
		return nil, nil
	}
	return json.Marshal(in)
}

func (c *Client) public(ctx context.Context, method, path string, in, out any) error {
	body, err := marshalBody(in)
	if err != nil {
		return err
	}
	return c.send(ctx, method, path, body, "", out)
}

// authed sends a request as the context's session. A token-related 401 is
// answered by one refresh and one retry.
func (c *Client) authed(ctx context.Context, method, path string, in, out any) error {
	s, ok := SessionFromContext(ctx)
	if !ok {
		return ErrNoSession
	}
	body, err := marshalBody(in)
	if err != nil {
		return err
	}

	tokens, err := s.Tokens()
	if err != nil {
		return err
	}
	if tokens.Empty() {
		return ErrUnauthorized
	}

	err = c.send(ctx, method, path, body, tokens.AccessToken, out)

	var apiErr *APIError
	if !errors.As(err, &apiErr) || !apiErr.tokenProblem() {
		return err
	}

	access, rerr := c.refresh(ctx, s, tokens.AccessToken)
	if rerr != nil {
		return rerr
	}
	return c.send(ctx, method, path, body, access, out)
}

type refreshResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// refresh trades the session's refresh token for a new access token. If
// another caller already replaced stale, that token is reused. A rejected
// refresh token ends the session, unless a newer login already replaced it.
func (c *Client) refresh(ctx context.Context, s *Session, stale string) (string, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	tokens, err := s.Tokens()
	if err != nil {
		return "", err
	}
	if tokens.AccessToken != stale && tokens.AccessToken != "" {
		return tokens.AccessToken, nil
	}
	if tokens.RefreshToken == "" {
		return "", ErrUnauthorized
	}

	var res refreshResponse
	err = c.public(ctx, http.MethodPost, "/auth/refresh", map[string]string{"refreshToken": tokens.RefreshToken}, &res)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status < 500 {
			_ = s.endIfCurrent(tokens.RefreshToken)
			return "", fmt.Errorf("%w: session ended: %s", ErrUnauthorized, apiErr.Message)
		}
		return "", err
	}

	if err := s.setAccessToken(tokens.RefreshToken, res.AccessToken); err != nil {
		return "", err
	}
	return res.AccessToken, nil
}

type authResponse struct {
	User         models.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

func (c *Client) startSession(ctx context.Context, path string, in any) (*models.User, error) {
	s, ok := SessionFromContext(ctx)
	if !ok {
		return nil, ErrNoSession
	}

	var res authResponse
	if err := c.public(ctx, http.MethodPost, path, in, &res); err != nil {
		return nil, err
	}
	u := res.User
	if err := s.begin(&u, models.Tokens{AccessToken: res.AccessToken, RefreshToken: res.RefreshToken}); err != nil {
		return nil, err
	}
	return &u, nil
}

// Signup creates an account and starts a session for it.
func (c *Client) Signup(ctx context.Context, name, email, password string) (*models.User, error) {
	return c.startSession(ctx, "/auth/signup", map[string]string{"name": name, "email": email, "password": password})
}

// Login replaces any prior session of this user, here and on the server.
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	return c.startSession(ctx, "/auth/login", map[string]string{"email": email, "password": password})
}

// Logout revokes the session on the server and always clears it locally.
// The returned error reports only the server-side part.
func (c *Client) Logout(ctx context.Context) error {
	s, ok := SessionFromContext(ctx)
	if !ok {
		return ErrNoSession
	}

	var remote error
	if s.Authenticated() {
		remote = c.authed(ctx, http.MethodPost, "/auth/logout", nil, nil)
	}
	if err := s.End(); err != nil {
		return err
	}
	return remote
}

// Refresh forces an access token refresh.
func (c *Client) Refresh(ctx context.Context) error {
	s, ok := SessionFromContext(ctx)
	if !ok {
		return ErrNoSession
	}
	tokens, err := s.Tokens()
	if err != nil {
		return err
	}
	_, err = c.refresh(ctx, s, tokens.AccessToken)
	return err
}

// Me loads the profile and caches it on the session.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.authed(ctx, http.MethodGet, "/auth/me", nil, &u); err != nil {
		return nil, err
	}
	if s, ok := SessionFromContext(ctx); ok {
		s.setUser(&u)
	}
	return &u, nil
}

func (c *Client) DeleteAccount(ctx context.Context, password string) error {
	s, ok := SessionFromContext(ctx)
	if !ok {
		return ErrNoSession
	}
	if err := c.authed(ctx, http.MethodDelete, "/auth/me", map[string]string{"password": password}, nil); err != nil {
		return err
	}
	return s.End()
}

// Health returns nil when the server reports every dependency up.
func (c *Client) Health(ctx context.Context) error {
	return c.public(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *Client) Categories(ctx context.Context, kind string) ([]models.Category, error) {
	path := "/categories"
	if kind != "" {
		path += "?kind=" + url.QueryEscape(kind)
	}
	var out []models.Category
	if err := c.authed(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateCategory(ctx context.Context, name, kind string) (*models.Category, error) {
	var out models.Category
	if err := c.authed(ctx, http.MethodPost, "/categories", map[string]string{"name": name, "kind": kind}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListVault(ctx context.Context) ([]models.VaultEntry, error) {
	var out []models.VaultEntry
	if err := c.authed(ctx, http.MethodGet, "/vault", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetVaultEntry(ctx context.Context, id string) (*models.VaultEntry, error) {
	var out models.VaultEntry
	if err := c.authed(ctx, http.MethodGet, "/vault/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateVaultEntry(ctx context.Context, in models.VaultEntryInput) (*models.VaultEntry, error) {
	var out models.VaultEntry
	if err := c.authed(ctx, http.MethodPost, "/vault", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateVaultEntry(ctx context.Context, id string, in models.VaultEntryInput) (*models.VaultEntry, error) {
	var out models.VaultEntry
	if err := c.authed(ctx, http.MethodPut, "/vault/"+url.PathEscape(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteVaultEntry(ctx context.Context, id string) error {
	return c.authed(ctx, http.MethodDelete, "/vault/"+url.PathEscape(id), nil, nil)
}

// Reveal re-authenticates with the account password and returns the entry's
// secret. The result masks itself after the client's reveal timeout.
func (c *Client) Reveal(ctx context.Context, id, password string) (*RevealedSecret, error) {
	var out struct {
		Password string `json:"password"`
	}
	if err := c.authed(ctx, http.MethodPost, "/vault/"+url.PathEscape(id)+"/reveal", map[string]string{"password": password}, &out); err != nil {
		return nil, err
	}
	return newRevealedSecret(out.Password, c.revealTimeout, c.clock), nil
}

func (c *Client) ExportVault(ctx context.Context) (*models.ExportLink, error) {
	var out models.ExportLink
	if err := c.authed(ctx, http.MethodPost, "/vault/export", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
