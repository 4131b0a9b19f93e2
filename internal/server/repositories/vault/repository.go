// Package vault declares the store for encrypted credential entries.
package vault

import (
	"context"

	"github.com/dmitrijs2005/lifedesk/internal/server/models"
)

// Repository persists vault entries. Every lookup is scoped to the owning
// user; another user's entry is indistinguishable from a missing one.
type Repository interface {
	Create(ctx context.Context, entry *models.VaultEntry) error
	Update(ctx context.Context, entry *models.VaultEntry) error
	GetByID(ctx context.Context, userID, id string) (*models.VaultEntry, error)
	ListByUser(ctx context.Context, userID string) ([]models.VaultEntry, error)
	SoftDelete(ctx context.Context, userID, id string) error
	SoftDeleteByUser(ctx context.Context, userID string) error
}
