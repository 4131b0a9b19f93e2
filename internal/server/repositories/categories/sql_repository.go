package categories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/lifedesk/internal/common"
	"github.com/dmitrijs2005/lifedesk/internal/dbx"
	"github.com/dmitrijs2005/lifedesk/internal/server/models"
)

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, c *models.Category) error {
	query := `
		INSERT INTO categories (id, user_id, name, kind, is_default, created_at, is_deleted)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.UserID, c.Name, string(c.Kind), c.IsDefault, c.CreatedAt, false)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorConflict
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) ListByUser(ctx context.Context, userID string, kind models.CategoryKind) ([]models.Category, error) {
	query := `
		SELECT id, user_id, name, kind, is_default, created_at
		FROM categories
		WHERE user_id = $1 AND is_deleted = FALSE AND ($2 = '' OR kind = $2)
		ORDER BY kind, name
	`
	rows, err := r.db.QueryContext(ctx, query, userID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Category
	for rows.Next() {
		var (
			c    models.Category
			kind string
		)
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &kind, &c.IsDefault, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		c.Kind = models.CategoryKind(kind)
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, userID, id string) (*models.Category, error) {
	query := `
		SELECT id, user_id, name, kind, is_default, created_at
		FROM categories
		WHERE id = $1 AND user_id = $2 AND is_deleted = FALSE
	`
	var (
		c    models.Category
		kind string
	)
	err := r.db.QueryRowContext(ctx, query, id, userID).
		Scan(&c.ID, &c.UserID, &c.Name, &kind, &c.IsDefault, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	c.Kind = models.CategoryKind(kind)
	return &c, nil
}

func (r *SQLRepository) SoftDeleteByUser(ctx context.Context, userID string) error {
	query := `UPDATE categories SET is_deleted = TRUE WHERE user_id = $1 AND is_deleted = FALSE`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
