// Package categories declares the store for per-user categories of
// transactions and vault entries.
package categories

import (
	"context"

	"github.com/dmitrijs2005/lifedesk/internal/server/models"
)

type Repository interface {
	// Create fails with common.ErrorConflict when the user already has a live
	// category of the same kind and name.
	Create(ctx context.Context, category *models.Category) error

	// ListByUser returns live categories ordered by kind then name. An empty
	// kind lists both kinds.
	ListByUser(ctx context.Context, userID string, kind models.CategoryKind) ([]models.Category, error)

	GetByID(ctx context.Context, userID, id string) (*models.Category, error)
	SoftDeleteByUser(ctx context.Context, userID string) error
}
