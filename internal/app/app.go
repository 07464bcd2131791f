// Package app wires configuration, storage, the ledger provider and the
// services together for the server and the sync CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"

	plaidadapter "github.com/SscSPs/budget_sync_app/internal/adapters/plaid"
	"github.com/SscSPs/budget_sync_app/internal/core/ports/providers"
	portsrepo "github.com/SscSPs/budget_sync_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/budget_sync_app/internal/core/ports/services"
	"github.com/SscSPs/budget_sync_app/internal/core/services"
	"github.com/SscSPs/budget_sync_app/internal/notify"
	"github.com/SscSPs/budget_sync_app/internal/platform/config"
	"github.com/SscSPs/budget_sync_app/internal/repositories/database/pgsql"
	"github.com/SscSPs/budget_sync_app/internal/repositories/memory"
	"github.com/SscSPs/budget_sync_app/internal/utils"
	"github.com/SscSPs/budget_sync_app/pkg/database"
)

// MigrationsSource is where the schema migrations live relative to the working directory.
const MigrationsSource = "file://migrations"

// App is a fully wired set of services. Close releases everything New opened.
type App struct {
	Config   *config.Config
	Services *portssvc.ServiceContainer
	closers  []func()
}

// New builds the application for cfg.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{Config: cfg}

	repos, err := a.openStorage(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	provider, err := plaidadapter.NewClient(plaidadapter.Config{
		ClientID: cfg.PlaidClientID,
		Secret:   cfg.PlaidSecret,
		Env:      cfg.PlaidEnv,
		PageSize: cfg.SyncPageSize,
	}, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create ledger provider: %w", err)
	}

	a.Services, err = build(cfg, repos, provider, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, a.Services.Sync.Close)
	return a, nil
}

// build creates the services over already opened storage and provider.
func build(cfg *config.Config, repos portsrepo.RepositoryProvider, provider providers.LedgerProvider, logger *slog.Logger) (*portssvc.ServiceContainer, error) {
	cipher, err := utils.NewTokenCipher(cfg.TokenEncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create token cipher: %w", err)
	}

	var notifier portssvc.ChangeNotifier = notify.LogNotifier{}
	if cfg.ChangeWebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.ChangeWebhookURL, nil)
		logger.Info("Ledger change notifications enabled", slog.String("url", cfg.ChangeWebhookURL))
	}

	return services.NewServiceContainer(cfg, repos, provider, cipher, notifier), nil
}

func (a *App) openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, error) {
	if cfg.StorageDriver == config.StorageMemory {
		logger.Warn("Using in-memory storage")
		return memory.NewRepositoryProvider(memory.NewStore()), nil
	}

	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return portsrepo.RepositoryProvider{}, fmt.Errorf("failed to initialize database pool: %w", err)
	}
	a.closers = append(a.closers, func() { database.ClosePgxPool(pool) })
	logger.Info("Database connection pool established.")

	logger.Info("Running database migrations...")
	applied, err := database.RunMigrations(cfg.DatabaseURL, MigrationsSource)
	if err != nil {
		return portsrepo.RepositoryProvider{}, err
	}
	if applied {
		logger.Info("Database migrations applied successfully.")
	} else {
		logger.Info("No new migrations to apply.")
	}
	return pgsql.NewRepositoryProvider(pool), nil
}

// Close stops in-flight syncs and closes storage, newest first.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
