// Package rest exposes the lifedesk services as a JSON API. Every response
// uses the envelope {success, message?, data?}; typed service errors are
// turned into status codes in one place (writeError).
package rest

import (
	"context"
	"time"

	"github.com/dmitrijs2005/lifedesk/internal/logging"
	"github.com/dmitrijs2005/lifedesk/internal/server/auth"
	"github.com/dmitrijs2005/lifedesk/internal/server/models"
	"github.com/dmitrijs2005/lifedesk/internal/server/services"
)

type AuthService interface {
	Signup(ctx context.Context, name, email, password string) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	Logout(ctx context.Context, userID string) error
	Refresh(ctx context.Context, refreshToken string) (string, time.Time, error)
	Authenticate(ctx context.Context, accessToken string) (auth.Principal, error)
	Me(ctx context.Context, userID string) (*models.User, error)
	DeleteAccount(ctx context.Context, userID, password string) error
}

type VaultService interface {
	Create(ctx context.Context, userID string, in services.VaultEntryInput) (*models.VaultEntry, error)
	List(ctx context.Context, userID string) ([]models.VaultEntry, error)
	Get(ctx context.Context, userID, id string) (*models.VaultEntry, error)
	Update(ctx context.Context, userID, id string, in services.VaultEntryUpdate) (*models.VaultEntry, error)
	Delete(ctx context.Context, userID, id string) error
	Reveal(ctx context.Context, userID, entryID, password string) (string, error)
	Export(ctx context.Context, userID string) (*services.ExportResult, error)
}

type CategoryService interface {
	List(ctx context.Context, userID string, kind models.CategoryKind) ([]models.Category, error)
	Create(ctx context.Context, userID, name string, kind models.CategoryKind) (*models.Category, error)
}

// Pinger reports database reachability for /health.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	auth           AuthService
	vault          VaultService
	categories     CategoryService
	db             Pinger
	log            logging.Logger
	allowedOrigins []string

	// debug exposes internal error detail in 500 responses.
	debug bool
}

type Option func(*Server)

func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) { s.allowedOrigins = origins }
}

func WithDebug(debug bool) Option {
	return func(s *Server) { s.debug = debug }
}

func NewServer(a AuthService, v VaultService, c CategoryService, db Pinger, log logging.Logger, opts ...Option) *Server {
	s := &Server{
		auth:       a,
		vault:      v,
		categories: c,
		db:         db,
		log:        log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
