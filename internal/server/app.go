// Package server wires the lifedesk backend together: database and
// migrations, services, the REST API, the gRPC health service and the
// background session janitor. It also owns graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/lifedesk/internal/cryptox"
	"github.com/dmitrijs2005/lifedesk/internal/logging"
	"github.com/dmitrijs2005/lifedesk/internal/server/auth"
	"github.com/dmitrijs2005/lifedesk/internal/server/config"
	"github.com/dmitrijs2005/lifedesk/internal/server/objectstore"
	"github.com/dmitrijs2005/lifedesk/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/lifedesk/internal/server/rest"
	"github.com/dmitrijs2005/lifedesk/internal/server/services"

	gs "github.com/dmitrijs2005/lifedesk/internal/server/grpc"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	ledger *services.SessionLedger
	api    *rest.Server
}

// NewApp opens the database, applies migrations and builds the services.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.Debug)

	db, err := sql.Open(c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	app, err := newApp(ctx, c, logger, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB) (*App, error) {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm, err := repomanager.NewRepositoryManager(c.DatabaseDriver)
	if err != nil {
		return nil, err
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	issuer, err := auth.NewIssuer(c.AccessTokenSecret, c.RefreshTokenSecret,
		c.AccessTokenValidityDuration, c.RefreshTokenValidityDuration)
	if err != nil {
		return nil, err
	}
	hasher := cryptox.NewPasswordHasher(c.BcryptCost)
	cipher, err := cryptox.NewVaultCipher(c.VaultKey)
	if err != nil {
		return nil, err
	}

	var store services.ExportStore
	if c.ExportsEnabled() {
		s3, err := objectstore.NewS3Store(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("object store init error: %w", err)
		}
		store = s3
	}

	ledger := services.NewSessionLedger(db, rm, issuer)
	authService, err := services.NewAuthService(db, rm, issuer, hasher, ledger, logger.With("module", "auth"))
	if err != nil {
		return nil, err
	}
	vaultService := services.NewVaultService(db, rm, cipher, hasher, store, logger.With("module", "vault"))
	categoryService := services.NewCategoryService(db, rm)

	api := rest.NewServer(authService, vaultService, categoryService, db, logger.With("module", "rest"),
		rest.WithAllowedOrigins(c.AllowedOrigins),
		rest.WithDebug(c.Debug),
	)

	return &App{config: c, logger: logger, db: db, ledger: ledger, api: api}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Addr:              app.config.EndpointAddrHTTP,
		Handler:           app.api.NewRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "HTTP shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", app.config.EndpointAddrHTTP)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.db)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a signal arrives, then shuts every
// component down and closes the database.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "driver", app.config.DatabaseDriver)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.config.EndpointAddrGRPC != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	if app.config.JanitorInterval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.runJanitor(ctx, app.config.JanitorInterval)
		}()
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close error", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
