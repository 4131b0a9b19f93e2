// Package auth issues and verifies the JWTs that carry a user's identity and
// defines the request principal derived from them.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/lifedesk/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType distinguishes the two token classes; a token of one class never
// verifies as the other.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

const issuer = "lifedesk"

// Claims are the JWT claims: the registered set plus the bound identity.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string    `json:"uid"`
	Email     string    `json:"email"`
	TokenType TokenType `json:"typ"`
}

// Identity is what a token is bound to.
type Identity struct {
	UserID string
	Email  string
}

// Issuer signs access and refresh tokens with separate HS256 secrets, so a
// leaked key of one class cannot mint tokens of the other.
type Issuer struct {
	accessSecret    []byte
	refreshSecret   []byte
	accessValidity  time.Duration
	refreshValidity time.Duration
	now             func() time.Time
}

// NewIssuer builds an Issuer. The secrets must be non-empty and distinct.
func NewIssuer(accessSecret, refreshSecret string, accessValidity, refreshValidity time.Duration) (*Issuer, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("token secrets must not be empty")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}
	return &Issuer{
		accessSecret:    []byte(accessSecret),
		refreshSecret:   []byte(refreshSecret),
		accessValidity:  accessValidity,
		refreshValidity: refreshValidity,
		now:             time.Now,
	}, nil
}

// IssueAccessToken returns a signed access token and its expiry.
func (i *Issuer) IssueAccessToken(id Identity) (string, time.Time, error) {
	return i.issue(id, TokenTypeAccess, i.accessSecret, i.accessValidity)
}

// IssueRefreshToken returns a signed refresh token and its expiry.
func (i *Issuer) IssueRefreshToken(id Identity) (string, time.Time, error) {
	return i.issue(id, TokenTypeRefresh, i.refreshSecret, i.refreshValidity)
}

// VerifyAccessToken returns the claims of a valid access token.
// Failures are common.ErrTokenExpired or common.ErrInvalidToken.
func (i *Issuer) VerifyAccessToken(token string) (*Claims, error) {
	return i.verify(token, TokenTypeAccess, i.accessSecret)
}

// VerifyRefreshToken returns the claims of a valid refresh token.
func (i *Issuer) VerifyRefreshToken(token string) (*Claims, error) {
	return i.verify(token, TokenTypeRefresh, i.refreshSecret)
}

func (i *Issuer) issue(id Identity, typ TokenType, secret []byte, validity time.Duration) (string, time.Time, error) {
	now := i.now()
	// NumericDate keeps whole seconds; the returned expiry must match the claim.
	exp := now.Add(validity).Truncate(time.Second)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		UserID:    id.UserID,
		Email:     id.Email,
		TokenType: typ,
	})

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", typ, err)
	}

	return signed, exp, nil
}

func (i *Issuer) verify(tokenString string, typ TokenType, secret []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.TokenType != typ || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
