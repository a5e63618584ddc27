package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// ApplyMigrations brings the schema up to date for the configured driver.
func (dm *DBManager) ApplyMigrations() error {
	if dm.DB == nil {
		return errors.New("database connection is not established, call Connect() first")
	}

	dm.Log.Info("Applying database migrations...")
	src, err := iofs.New(migrationsFS, "migrations/"+dm.opts.Driver)
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}
	defer src.Close()

	var driver migratedb.Driver
	switch dm.opts.Driver {
	case DriverSQLite:
		// Shares the pool so ":memory:" databases see the schema. The migrate
		// instance is therefore never closed, closing it would close the pool.
		driver, err = sqlite.WithInstance(dm.DB.DB, &sqlite.Config{})
	case DriverPostgres:
		var migrateDB *sql.DB
		migrateDB, err = sql.Open(DriverPostgres, dm.opts.URL)
		if err != nil {
			return fmt.Errorf("open migration database: %w", err)
		}
		driver, err = postgres.WithInstance(migrateDB, &postgres.Config{})
		if err != nil {
			migrateDB.Close()
		}
	default:
		err = fmt.Errorf("unsupported database driver %q", dm.opts.Driver)
	}
	if err != nil {
		return fmt.Errorf("create %s migration driver: %w", dm.opts.Driver, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, dm.opts.Driver, driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	if dm.opts.Driver == DriverPostgres {
		defer m.Close()
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read schema version: %w", err)
	}
	dm.Log.Info("Database migrations applied successfully (version %d, dirty=%t)", version, dirty)
	return nil
}
