package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/lifedesk/internal/server/config"
	"github.com/dmitrijs2005/lifedesk/internal/server/repositories/categories"
	"github.com/dmitrijs2005/lifedesk/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/lifedesk/internal/server/repositories/users"
	"github.com/dmitrijs2005/lifedesk/internal/server/repositories/vault"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNewRepositoryManager_Drivers(t *testing.T) {
	m, err := NewRepositoryManager(config.DriverPostgres)
	require.NoError(t, err)
	assert.Equal(t, "postgres", m.(*SQLRepositoryManager).migrationsDir)

	m, err = NewRepositoryManager(config.DriverSQLite)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", m.(*SQLRepositoryManager).migrationsDir)

	_, err = NewRepositoryManager("mysql")
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db := newDB(t)
	m := &SQLRepositoryManager{}

	var _ users.Repository = m.Users(db)
	var _ refreshtokens.Repository = m.RefreshTokens(db)
	var _ categories.Repository = m.Categories(db)
	var _ vault.Repository = m.Vault(db)

	assert.NotNil(t, m.Users(db))
	assert.NotNil(t, m.RefreshTokens(db))
	assert.NotNil(t, m.Categories(db))
	assert.NotNil(t, m.Vault(db))
}

func TestRunMigrations_UsesDriverDirectory(t *testing.T) {
	db := newDB(t)

	var gotDir string
	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}
	defer func() { gooseUpContext = orig }()

	m, err := NewRepositoryManager(config.DriverSQLite)
	require.NoError(t, err)
	require.NoError(t, m.RunMigrations(context.Background(), db))
	assert.Equal(t, "sqlite", gotDir)

	m, err = NewRepositoryManager(config.DriverPostgres)
	require.NoError(t, err)
	require.NoError(t, m.RunMigrations(context.Background(), db))
	assert.Equal(t, "postgres", gotDir)
}

func TestRunMigrations_Error(t *testing.T) {
	db := newDB(t)

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	m := &SQLRepositoryManager{migrationsDir: "postgres", dialect: "pgx"}
	assert.EqualError(t, m.RunMigrations(context.Background(), db), "boom")
}

func TestRunMigrations_UnknownDialect(t *testing.T) {
	m := &SQLRepositoryManager{migrationsDir: "x", dialect: "nope"}
	assert.Error(t, m.RunMigrations(context.Background(), newDB(t)))
}
