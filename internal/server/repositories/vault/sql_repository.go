package vault

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/lifedesk/internal/common"
	"github.com/dmitrijs2005/lifedesk/internal/dbx"
	"github.com/dmitrijs2005/lifedesk/internal/server/models"
)

const selectColumns = `id, user_id, category_id, website, username, encrypted_secret, notes, created_at, updated_at`

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, e *models.VaultEntry) error {
	query := `
		INSERT INTO vault_entries (id, user_id, category_id, website, username, encrypted_secret, notes, created_at, updated_at, is_deleted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.UserID, e.CategoryID, e.Website, e.Username, e.EncryptedSecret, e.Notes, e.CreatedAt, e.UpdatedAt, false)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) Update(ctx context.Context, e *models.VaultEntry) error {
	query := `
		UPDATE vault_entries
		SET category_id = $1, website = $2, username = $3, encrypted_secret = $4, notes = $5, updated_at = $6
		WHERE id = $7 AND user_id = $8 AND is_deleted = FALSE
	`
	res, err := r.db.ExecContext(ctx, query,
		e.CategoryID, e.Website, e.Username, e.EncryptedSecret, e.Notes, e.UpdatedAt, e.ID, e.UserID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectAffected(res)
}

func (r *SQLRepository) GetByID(ctx context.Context, userID, id string) (*models.VaultEntry, error) {
	query := `SELECT ` + selectColumns + `
		FROM vault_entries
		WHERE id = $1 AND user_id = $2 AND is_deleted = FALSE
	`
	var e models.VaultEntry
	if err := scanEntry(r.db.QueryRowContext(ctx, query, id, userID), &e); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &e, nil
}

func (r *SQLRepository) ListByUser(ctx context.Context, userID string) ([]models.VaultEntry, error) {
	query := `SELECT ` + selectColumns + `
		FROM vault_entries
		WHERE user_id = $1 AND is_deleted = FALSE
		ORDER BY website, created_at
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.VaultEntry
	for rows.Next() {
		var e models.VaultEntry
		if err := scanEntry(rows, &e); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *SQLRepository) SoftDelete(ctx context.Context, userID, id string) error {
	query := `UPDATE vault_entries SET is_deleted = TRUE WHERE id = $1 AND user_id = $2 AND is_deleted = FALSE`
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectAffected(res)
}

func (r *SQLRepository) SoftDeleteByUser(ctx context.Context, userID string) error {
	query := `UPDATE vault_entries SET is_deleted = TRUE WHERE user_id = $1 AND is_deleted = FALSE`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner, e *models.VaultEntry) error {
	return s.Scan(&e.ID, &e.UserID, &e.CategoryID, &e.Website, &e.Username,
		&e.EncryptedSecret, &e.Notes, &e.CreatedAt, &e.UpdatedAt)
}
