// Package refreshtokens declares the session ledger store: one hashed refresh
// token per user.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/lifedesk/internal/server/models"
)

// Repository persists refresh-token sessions. Tokens are addressed by their
// SHA-256 hex digest; raw token strings never reach storage.
type Repository interface {
	// Create inserts a session. It fails with common.ErrorConflict when the
	// user already has one.
	Create(ctx context.Context, token *models.RefreshToken) error

	// Replace atomically swaps the user's session for token, creating it if
	// none exists.
	Replace(ctx context.Context, token *models.RefreshToken) error

	// FindByHash returns common.ErrorNotFound when the hash is unknown.
	FindByHash(ctx context.Context, hash string) (*models.RefreshToken, error)

	// DeleteByHash and DeleteByUser succeed even when nothing matched.
	DeleteByHash(ctx context.Context, hash string) error
	DeleteByUser(ctx context.Context, userID string) error

	// DeleteExpired removes sessions that expired before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
