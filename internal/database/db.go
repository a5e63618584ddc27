package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"service-crm/internal/logger"
	"service-crm/internal/tokenstore"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Options selects and tunes the relational store.
type Options struct {
	Driver   string
	Path     string // sqlite file, or ":memory:"
	URL      string // postgres DSN
	MaxConns int
}

type DBManager struct {
	DB   *sqlx.DB
	opts Options
	Log  logger.Logger
}

func NewDBManager(opts Options, log logger.Logger) *DBManager {
	if opts.Driver == "" {
		opts.Driver = DriverSQLite
	}
	if opts.MaxConns < 1 {
		opts.MaxConns = 10
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &DBManager{opts: opts, Log: log}
}

// Open connects and applies migrations in one step.
func Open(ctx context.Context, opts Options, log logger.Logger) (*DBManager, error) {
	dm := NewDBManager(opts, log)
	if err := dm.Connect(ctx); err != nil {
		return nil, err
	}
	if err := dm.ApplyMigrations(); err != nil {
		_ = dm.Close()
		return nil, err
	}
	return dm, nil
}

// Driver returns the configured driver name.
func (dm *DBManager) Driver() string {
	return dm.opts.Driver
}

func (dm *DBManager) Connect(ctx context.Context) error {
	var (
		db  *sqlx.DB
		err error
	)
	switch dm.opts.Driver {
	case DriverSQLite:
		if err := ensureDir(dm.opts.Path); err != nil {
			return err
		}
		if _, statErr := os.Stat(dm.opts.Path); statErr != nil && !isMemory(dm.opts.Path) {
			dm.Log.Info("No database found at %s. Creating database...", dm.opts.Path)
		}
		db, err = sqlx.Open(DriverSQLite, sqliteDSN(dm.opts.Path))
		if err != nil {
			return fmt.Errorf("failed to open database connection: %w", err)
		}
		// One connection: writes serialize anyway and ":memory:" is per connection.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	case DriverPostgres:
		db, err = sqlx.Open(DriverPostgres, dm.opts.URL)
		if err != nil {
			return fmt.Errorf("failed to open database connection: %w", err)
		}
		db.SetMaxOpenConns(dm.opts.MaxConns)
		db.SetMaxIdleConns(dm.opts.MaxConns)
		db.SetConnMaxLifetime(30 * time.Minute)
	default:
		return fmt.Errorf("unsupported database driver %q", dm.opts.Driver)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	dm.DB = db
	dm.Log.Info("Successfully connected to %s database", dm.opts.Driver)
	return nil
}

func (dm *DBManager) Close() error {
	if dm.DB != nil {
		dm.Log.Info("Closing database connection")
		return dm.DB.Close()
	}
	return nil
}

// InitTokenStore opens the buntdb token store at path.
func (dm *DBManager) InitTokenStore(path string) (*tokenstore.BuntDBTokenStore, error) {
	if path == "" {
		return nil, errors.New("token store path is required")
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	return tokenstore.NewBuntDBTokenStore(path)
}

func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
}

func isMemory(path string) bool {
	return path == ":memory:" || strings.HasPrefix(path, "file::memory:")
}

func ensureDir(path string) error {
	if isMemory(path) {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}
