// Package users declares the credential store: persistence of accounts and
// their password hashes.
package users

import (
	"context"

	"github.com/dmitrijs2005/lifedesk/internal/server/models"
)

// Repository stores accounts. Lookups only see accounts that are not
// soft-deleted and return common.ErrorNotFound otherwise.
type Repository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// EmailExists also counts soft-deleted accounts: their emails stay reserved.
	EmailExists(ctx context.Context, email string) (bool, error)

	SoftDelete(ctx context.Context, id string) error
}
