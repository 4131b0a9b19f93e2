package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/lifedesk/internal/cryptox"
	"github.com/dmitrijs2005/lifedesk/internal/logging"
	"github.com/dmitrijs2005/lifedesk/internal/server/auth"
	"github.com/dmitrijs2005/lifedesk/internal/server/config"
	"github.com/dmitrijs2005/lifedesk/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

type testEnv struct {
	db         *sql.DB
	rm         repomanager.RepositoryManager
	issuer     *auth.Issuer
	hasher     *cryptox.PasswordHasher
	cipher     *cryptox.VaultCipher
	ledger     *SessionLedger
	auth       *AuthService
	vault      *VaultService
	categories *CategoryService
	store      *fakeExportStore
}

// newTestEnv wires every service against a migrated SQLite file.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := sql.Open(config.DriverSQLite, filepath.Join(t.TempDir(), "lifedesk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rm, err := repomanager.NewRepositoryManager(config.DriverSQLite)
	require.NoError(t, err)
	require.NoError(t, rm.RunMigrations(ctx, db))

	issuer, err := auth.NewIssuer("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	hasher := cryptox.NewPasswordHasher(bcrypt.MinCost)
	cipher, err := cryptox.NewVaultCipher("vault-key")
	require.NoError(t, err)

	ledger := NewSessionLedger(db, rm, issuer)
	authSvc, err := NewAuthService(db, rm, issuer, hasher, ledger, logging.Nop{})
	require.NoError(t, err)

	store := &fakeExportStore{objects: map[string][]byte{}}

	return &testEnv{
		db:         db,
		rm:         rm,
		issuer:     issuer,
		hasher:     hasher,
		cipher:     cipher,
		ledger:     ledger,
		auth:       authSvc,
		vault:      NewVaultService(db, rm, cipher, hasher, store, logging.Nop{}),
		categories: NewCategoryService(db, rm),
		store:      store,
	}
}

func (e *testEnv) signup(t *testing.T, name, email, password string) *AuthResult {
	t.Helper()
	res, err := e.auth.Signup(context.Background(), name, email, password)
	require.NoError(t, err)
	return res
}

func (e *testEnv) sessionCount(t *testing.T, userID string) int {
	t.Helper()
	var n int
	require.NoError(t, e.db.QueryRow(`SELECT COUNT(*) FROM refresh_tokens WHERE user_id = $1`, userID).Scan(&n))
	return n
}

type fakeExportStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func (f *fakeExportStore) Put(ctx context.Context, key string, body []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.objects[key] = body
	return nil
}

func (f *fakeExportStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "https://objects.test/" + key + "?ttl=" + ttl.String(), nil
}
