// Package services contains the server-side business logic. AuthService
// orchestrates signup, login, refresh and logout on top of the credential
// store, the token issuer and the session ledger.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/lifedesk/internal/common"
	"github.com/dmitrijs2005/lifedesk/internal/cryptox"
	"github.com/dmitrijs2005/lifedesk/internal/dbx"
	"github.com/dmitrijs2005/lifedesk/internal/logging"
	"github.com/dmitrijs2005/lifedesk/internal/server/auth"
	"github.com/dmitrijs2005/lifedesk/internal/server/models"
	"github.com/dmitrijs2005/lifedesk/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// AuthResult is returned by Signup and Login.
type AuthResult struct {
	User   *models.User
	Tokens TokenPair
}

type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	issuer      *auth.Issuer
	hasher      *cryptox.PasswordHasher
	ledger      *SessionLedger
	log         logging.Logger
	now         func() time.Time

	// dummyHash is compared against on unknown emails so both login
	// failures cost one bcrypt comparison.
	dummyHash string
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, issuer *auth.Issuer,
	hasher *cryptox.PasswordHasher, ledger *SessionLedger, log logging.Logger) (*AuthService, error) {

	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, err
	}
	return &AuthService{
		db:          db,
		repomanager: m,
		issuer:      issuer,
		hasher:      hasher,
		ledger:      ledger,
		log:         log,
		now:         utcNow,
		dummyHash:   dummy,
	}, nil
}

// Signup creates the account, its default categories and its first session
// in one transaction. A registered email (including deleted accounts)
// yields common.ErrorConflict.
func (s *AuthService) Signup(ctx context.Context, name, email, password string) (*AuthResult, error) {
	exists, err := s.repomanager.Users(s.db).EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, common.ErrorConflict
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    now,
	}

	tokens, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).Create(ctx, user); err != nil {
			return err
		}
		if err := createDefaultCategories(ctx, s.repomanager.Categories(tx), user.ID, now); err != nil {
			return err
		}
		return s.ledger.StartSession(ctx, tx, user.ID, tokens.RefreshToken, tokens.RefreshExpiresAt)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user signed up", "user_id", user.ID)
	return &AuthResult{User: user, Tokens: *tokens}, nil
}

// Login checks credentials and replaces any previous session. Unknown email
// and wrong password are indistinguishable.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify(s.dummyHash, password)
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}
	if !s.hasher.Verify(user.PasswordHash, password) {
		return nil, common.ErrorUnauthorized
	}

	tokens, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.RecordSession(ctx, s.db, user.ID, tokens.RefreshToken, tokens.RefreshExpiresAt); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user logged in", "user_id", user.ID)
	return &AuthResult{User: user, Tokens: *tokens}, nil
}

// Logout revokes every server-side session of the user.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.ledger.RevokeAll(ctx, s.db, userID); err != nil {
		return err
	}
	s.log.Info(ctx, "user logged out", "user_id", userID)
	return nil
}

// Refresh exchanges a ledger-backed refresh token for a new access token.
// Unknown, forged and wrong-class tokens all map to common.ErrInvalidToken.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	id, err := s.ledger.ConsumeForRefresh(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", time.Time{}, common.ErrInvalidToken
		}
		return "", time.Time{}, err
	}

	// the account may have been deleted since the session was recorded
	user, err := s.repomanager.Users(s.db).GetByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", time.Time{}, common.ErrorUnauthorized
		}
		return "", time.Time{}, err
	}

	token, exp, err := s.issuer.IssueAccessToken(auth.Identity{UserID: user.ID, Email: user.Email})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("issue access token: %w", err)
	}
	return token, exp, nil
}

// Authenticate resolves a bearer access token to the live account it
// belongs to.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (auth.Principal, error) {
	claims, err := s.issuer.VerifyAccessToken(accessToken)
	if err != nil {
		return auth.Principal{}, err
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return auth.Principal{}, common.ErrorUnauthorized
		}
		return auth.Principal{}, err
	}
	return auth.Principal{UserID: user.ID, Email: user.Email}, nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}
	return user, nil
}

// DeleteAccount re-checks the password, then soft-deletes the user with
// their vault entries and categories and drops their sessions, all in one
// transaction.
func (s *AuthService) DeleteAccount(ctx context.Context, userID, password string) error {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(user.PasswordHash, password) {
		return common.ErrorUnauthorized
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Vault(tx).SoftDeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := s.repomanager.Categories(tx).SoftDeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := s.ledger.RevokeAll(ctx, tx, userID); err != nil {
			return err
		}
		return s.repomanager.Users(tx).SoftDelete(ctx, userID)
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "account deleted", "user_id", userID)
	return nil
}

func (s *AuthService) issuePair(user *models.User) (*TokenPair, error) {
	id := auth.Identity{UserID: user.ID, Email: user.Email}

	access, accessExp, err := s.issuer.IssueAccessToken(id)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, refreshExp, err := s.issuer.IssueRefreshToken(id)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	return &TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}
