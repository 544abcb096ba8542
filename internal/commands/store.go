package commands

import (
	"context"
	"fmt"
	"log/slog"

	portsrepo "github.com/SscSPs/bookkeeping_engine/internal/core/ports/repositories"
	"github.com/SscSPs/bookkeeping_engine/internal/platform/config"
	"github.com/SscSPs/bookkeeping_engine/internal/repositories/database/pgsql"
	"github.com/SscSPs/bookkeeping_engine/internal/repositories/memory"
	"github.com/SscSPs/bookkeeping_engine/internal/repositories/sqlite"
	"github.com/SscSPs/bookkeeping_engine/pkg/database"
)

// openStore connects the configured storage driver, migrating it first when AutoMigrate is set.
// The returned func releases the connection.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.Store, func(), error) {
	if cfg.AutoMigrate && cfg.DBDriver != config.DriverMemory {
		if err := database.Migrate(cfg.DBDriver, cfg.StoreDSN(), database.Up, logger); err != nil {
			return nil, nil, err
		}
	}

	switch cfg.DBDriver {
	case config.DriverPostgres:
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, err
		}
		return pgsql.NewStore(pool), func() { database.ClosePgxPool(pool, logger) }, nil
	case config.DriverSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewStore(db), func() {
			if err := db.Close(); err != nil {
				logger.Error("Error closing SQLite database", slog.String("error", err.Error()))
			}
		}, nil
	case config.DriverMemory:
		logger.Warn("Using the in-memory store; all data is lost on exit")
		return memory.NewStore(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown DB_DRIVER '%s'", cfg.DBDriver)
}
