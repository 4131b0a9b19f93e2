// Package repomanager provides the SQL RepositoryManager for PostgreSQL (pgx)
// and SQLite (modernc), wiring repository constructors and goose migrations.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/lifedesk/internal/dbx"
	"github.com/dmitrijs2005/lifedesk/internal/server/config"
	"github.com/dmitrijs2005/lifedesk/internal/server/migrations"
	"github.com/dmitrijs2005/lifedesk/internal/server/repositories/categories"
	"github.com/dmitrijs2005/lifedesk/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/lifedesk/internal/server/repositories/users"
	"github.com/dmitrijs2005/lifedesk/internal/server/repositories/vault"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLRepositoryManager serves both drivers; they differ only in the
// migration set and goose dialect.
type SQLRepositoryManager struct {
	migrationsDir string
	dialect       string
}

func (m *SQLRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLRepository(db)
}

func (m *SQLRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewSQLRepository(db)
}

func (m *SQLRepositoryManager) Categories(db dbx.DBTX) categories.Repository {
	return categories.NewSQLRepository(db)
}

func (m *SQLRepositoryManager) Vault(db dbx.DBTX) vault.Repository {
	return vault.NewSQLRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations for the manager's driver.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(m.dialect); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, m.migrationsDir); err != nil {
		return err
	}
	return nil
}

// NewRepositoryManager returns the manager for a database/sql driver name
// (config.DriverPostgres or config.DriverSQLite).
func NewRepositoryManager(driver string) (RepositoryManager, error) {
	switch driver {
	case config.DriverPostgres:
		return &SQLRepositoryManager{migrationsDir: "postgres", dialect: "pgx"}, nil
	case config.DriverSQLite:
		return &SQLRepositoryManager{migrationsDir: "sqlite", dialect: "sqlite3"}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
