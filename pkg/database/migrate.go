package database

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/SscSPs/bookkeeping_engine/migrations"
	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Supported SQL drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Direction selects which way Migrate moves the schema.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Migrate applies the embedded migrations of driver to the database at dsn.
// For postgres dsn is the connection URL, for sqlite it is the file path.
// It opens and closes its own connection.
func Migrate(driver, dsn string, direction Direction, logger *slog.Logger) error {
	logger = logger.With(slog.String("driver", driver), slog.String("direction", string(direction)))
	logger.Info("Running database migrations...")

	m, db, err := newMigrate(driver, dsn)
	if err != nil {
		return err
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			logger.Error("Error closing migration resources", slog.Any("source_error", srcErr), slog.Any("db_error", dbErr))
		}
		// The postgres driver leaves a borrowed *sql.DB open.
		_ = db.Close()
	}()

	switch direction {
	case Up:
		err = m.Up()
	case Down:
		err = m.Steps(-1)
	default:
		return fmt.Errorf("unknown migration direction '%s'", direction)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read migration version: %w", verr)
	}
	if dirty {
		return fmt.Errorf("database is in a dirty migration state at version %d", version)
	}
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply.", slog.Uint64("version", uint64(version)))
	} else {
		logger.Info("Database migrations applied successfully.", slog.Uint64("version", uint64(version)))
	}
	return nil
}

func newMigrate(driver, dsn string) (*migrate.Migrate, *sql.DB, error) {
	var (
		sqlDriver string
		openDSN   string
		files     fs.FS
		dir       string
	)
	switch driver {
	case DriverPostgres:
		sqlDriver, openDSN, files, dir = "pgx", dsn, migrations.Postgres, "postgres"
	case DriverSQLite:
		sqlDriver, openDSN, files, dir = "sqlite3", SQLiteDSN(dsn), migrations.SQLite, "sqlite"
	default:
		return nil, nil, fmt.Errorf("migrations are not supported for driver '%s'", driver)
	}

	db, err := sql.Open(sqlDriver, openDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database connection for migrations: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to ping database for migrations: %w", err)
	}

	var instance database.Driver
	if driver == DriverPostgres {
		instance, err = postgres.WithInstance(db, &postgres.Config{})
	} else {
		instance, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	}
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("could not create %s driver instance for migrations: %w", driver, err)
	}

	src, err := iofs.New(files, dir)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("could not read embedded migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, driver, instance)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("could not create migrate instance: %w", err)
	}
	return m, db, nil
}
