// Package app is the composition root shared by the HTTP server and the CLI.
// It builds the item service from configuration and owns every resource it opened.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"datasync/internal/config"
	"datasync/internal/database"
	"datasync/internal/database/migration"
	"datasync/internal/logging"
	"datasync/internal/metrics"
	"datasync/internal/model"
	"datasync/internal/provider"
	"datasync/internal/registry"
	"datasync/internal/repository"
	"datasync/internal/repository/memory"
	"datasync/internal/repository/objectstore"
	"datasync/internal/repository/sqlstore"
	"datasync/internal/service"
	"datasync/internal/storage"
)

// Registry keys.
const (
	keyDB          = "db"
	keyStorageRepo = "repository.storage"
	keyObjectStore = "storage.objects"
	keyNetworkRepo = "repository.network"
	keyWriteBehind = "metrics.write_behind"
	keyProvider    = "provider.items"
	keyItems       = "service.items"
)

// NetworkDriverMemory selects an in-process object store instead of MinIO.
const NetworkDriverMemory = "memory"

type itemProvider = provider.DataProvider[model.Item, model.ItemEntity]

// App holds the wired item service.
type App struct {
	Config        *config.AppConfig
	Logger        *logging.Logger
	Metrics       *prometheus.Registry
	DefaultPolicy provider.Policy

	reg *registry.Registry
}

// New validates cfg and prepares lazy construction of the stack.
// Nothing is dialed until a component is first requested.
func New(cfg *config.AppConfig, logger *logging.Logger) (*App, error) {
	policy, err := provider.ParsePolicy(cfg.Sync.DefaultPolicy)
	if err != nil {
		return nil, fmt.Errorf("SYNC_DEFAULT_POLICY: %w", err)
	}
	if logger == nil {
		logger = logging.New(os.Stdout, cfg.Location())
	}
	return &App{
		Config:        cfg,
		Logger:        logger,
		Metrics:       prometheus.NewRegistry(),
		DefaultPolicy: policy,
		reg:           registry.New(),
	}, nil
}

// Close releases every resource opened through the registry.
func (a *App) Close() error {
	return a.reg.Close()
}

// DB returns the SQL handle backing the local store, or nil for the memory driver.
func (a *App) DB(ctx context.Context) (*sql.DB, error) {
	if a.Config.Database.Driver == database.DriverMemory {
		return nil, nil
	}
	return registry.Get(a.reg, keyDB, func() (*sql.DB, error) {
		db, err := database.Open(a.Config.Database)
		if err != nil {
			return nil, err
		}
		dialect := a.Config.Database.Driver
		if dialect == "" {
			dialect = database.DriverPostgres
		}
		if err := migration.EnsureMigrated(ctx, db, a.Logger, dialect); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil
	})
}

// StorageRepository is the fast local store.
func (a *App) StorageRepository(ctx context.Context) (repository.Repository[model.ItemEntity], error) {
	db, err := a.DB(ctx)
	if err != nil {
		return nil, err
	}
	return registry.Get(a.reg, keyStorageRepo, func() (repository.Repository[model.ItemEntity], error) {
		if db == nil {
			return memory.New(model.ItemIdentity), nil
		}
		return sqlstore.New(db, a.Config.Database.Collection, model.ItemIdentity), nil
	})
}

// NetworkRepository is the authoritative store.
func (a *App) NetworkRepository() (repository.Repository[model.ItemEntity], error) {
	objects, err := registry.Get(a.reg, keyObjectStore, func() (storage.Storage, error) {
		if a.Config.MinIO.Driver == NetworkDriverMemory {
			return storage.NewMemory(), nil
		}
		return storage.NewMinIO(a.Config.MinIO)
	})
	if err != nil {
		return nil, err
	}
	return registry.Get(a.reg, keyNetworkRepo, func() (repository.Repository[model.ItemEntity], error) {
		return objectstore.New(objects, a.Config.MinIO.Prefix, model.ItemIdentity,
			objectstore.WithSyncStamp(model.StampSynced)), nil
	})
}

// Provider returns the item DataProvider with write-behind metrics attached.
func (a *App) Provider(ctx context.Context) (*itemProvider, error) {
	local, err := a.StorageRepository(ctx)
	if err != nil {
		return nil, err
	}
	network, err := a.NetworkRepository()
	if err != nil {
		return nil, err
	}
	wb, err := registry.Get(a.reg, keyWriteBehind, func() (*metrics.WriteBehind, error) {
		return metrics.NewWriteBehind(a.Metrics, a.Logger)
	})
	if err != nil {
		return nil, err
	}
	return registry.Get(a.reg, keyProvider, func() (*itemProvider, error) {
		validate := model.ItemValidation{MaxAge: a.Config.Sync.CacheMaxAge(), Now: time.Now}
		return provider.New[model.Item, model.ItemEntity](network, local,
			model.ItemToEntity, model.EntityToItem, validate,
			provider.WithObserver(wb.Observer()),
		), nil
	})
}

// Items returns the item service.
func (a *App) Items(ctx context.Context) (service.ItemService, error) {
	p, err := a.Provider(ctx)
	if err != nil {
		return nil, err
	}
	return registry.Get(a.reg, keyItems, func() (service.ItemService, error) {
		return service.NewItemService(p, a.Config.Sync.Timeout()), nil
	})
}
