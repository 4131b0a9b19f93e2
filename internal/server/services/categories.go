package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/lifedesk/internal/server/models"
	"github.com/dmitrijs2005/lifedesk/internal/server/repositories/categories"
	"github.com/dmitrijs2005/lifedesk/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// CategoryService manages the per-user categories that group transactions
// and vault entries.
type CategoryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewCategoryService(db *sql.DB, m repomanager.RepositoryManager) *CategoryService {
	return &CategoryService{db: db, repomanager: m, now: utcNow}
}

// List returns the user's live categories; an empty kind lists both kinds.
func (s *CategoryService) List(ctx context.Context, userID string, kind models.CategoryKind) ([]models.Category, error) {
	return s.repomanager.Categories(s.db).ListByUser(ctx, userID, kind)
}

// Create adds a custom category. A duplicate name within the same kind
// yields common.ErrorConflict.
func (s *CategoryService) Create(ctx context.Context, userID, name string, kind models.CategoryKind) (*models.Category, error) {
	c := &models.Category{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Kind:      kind,
		CreatedAt: s.now(),
	}
	if err := s.repomanager.Categories(s.db).Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func createDefaultCategories(ctx context.Context, repo categories.Repository, userID string, now time.Time) error {
	for _, d := range models.DefaultCategories {
		c := &models.Category{
			ID:        uuid.NewString(),
			UserID:    userID,
			Name:      d.Name,
			Kind:      d.Kind,
			IsDefault: true,
			CreatedAt: now,
		}
		if err := repo.Create(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func utcNow() time.Time { return time.Now().UTC() }
