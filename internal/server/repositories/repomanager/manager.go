package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/lifedesk/internal/dbx"
	"github.com/dmitrijs2005/lifedesk/internal/server/repositories/categories"
	"github.com/dmitrijs2005/lifedesk/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/lifedesk/internal/server/repositories/users"
	"github.com/dmitrijs2005/lifedesk/internal/server/repositories/vault"
)

// RepositoryManager vends repositories bound to a DBTX, so services can use
// the same code path inside and outside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Categories(db dbx.DBTX) categories.Repository
	Vault(db dbx.DBTX) vault.Repository
}
