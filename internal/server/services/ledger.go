package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/lifedesk/internal/common"
	"github.com/dmitrijs2005/lifedesk/internal/dbx"
	"github.com/dmitrijs2005/lifedesk/internal/server/auth"
	"github.com/dmitrijs2005/lifedesk/internal/server/models"
	"github.com/dmitrijs2005/lifedesk/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// SessionLedger keeps at most one live refresh token per user. Only the
// SHA-256 of a token is written; the token itself is never stored.
type SessionLedger struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	issuer      *auth.Issuer
	now         func() time.Time
}

func NewSessionLedger(db *sql.DB, m repomanager.RepositoryManager, issuer *auth.Issuer) *SessionLedger {
	return &SessionLedger{db: db, repomanager: m, issuer: issuer, now: utcNow}
}

// StartSession records the first session of a freshly created account.
func (l *SessionLedger) StartSession(ctx context.Context, db dbx.DBTX, userID, token string, expiresAt time.Time) error {
	return l.repomanager.RefreshTokens(db).Create(ctx, l.newRow(userID, token, expiresAt))
}

// RecordSession replaces whatever session the user had with token, so the
// previous refresh token stops working.
func (l *SessionLedger) RecordSession(ctx context.Context, db dbx.DBTX, userID, token string, expiresAt time.Time) error {
	return l.repomanager.RefreshTokens(db).Replace(ctx, l.newRow(userID, token, expiresAt))
}

// ConsumeForRefresh checks a presented refresh token against the ledger and
// its signature. It returns common.ErrorNotFound for unknown tokens and
// common.ErrRefreshTokenExpired (after deleting the row) for expired ones.
// The token stays valid afterwards; refresh does not rotate it.
func (l *SessionLedger) ConsumeForRefresh(ctx context.Context, token string) (auth.Identity, error) {
	repo := l.repomanager.RefreshTokens(l.db)
	hash := common.HashToken(token)

	row, err := repo.FindByHash(ctx, hash)
	if err != nil {
		return auth.Identity{}, err
	}

	if row.Expired(l.now()) {
		if err := repo.DeleteByHash(ctx, hash); err != nil {
			return auth.Identity{}, err
		}
		return auth.Identity{}, common.ErrRefreshTokenExpired
	}

	claims, err := l.issuer.VerifyRefreshToken(token)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return auth.Identity{}, common.ErrRefreshTokenExpired
		}
		return auth.Identity{}, err
	}
	if claims.UserID != row.UserID {
		return auth.Identity{}, common.ErrInvalidToken
	}

	return auth.Identity{UserID: claims.UserID, Email: claims.Email}, nil
}

// RevokeAll drops every session of the user.
func (l *SessionLedger) RevokeAll(ctx context.Context, db dbx.DBTX, userID string) error {
	return l.repomanager.RefreshTokens(db).DeleteByUser(ctx, userID)
}

// PurgeExpired deletes sessions whose expiry has passed.
func (l *SessionLedger) PurgeExpired(ctx context.Context) (int64, error) {
	return l.repomanager.RefreshTokens(l.db).DeleteExpired(ctx, l.now())
}

func (l *SessionLedger) newRow(userID, token string, expiresAt time.Time) *models.RefreshToken {
	return &models.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: common.HashToken(token),
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: l.now(),
	}
}
