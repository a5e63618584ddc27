package database

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpenInMemoryAppliesSchema(t *testing.T) {
	dm, err := Open(context.Background(), Options{Driver: DriverSQLite, Path: ":memory:"}, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer dm.Close()

	for _, table := range []string{"users", "contacts", "leads", "tasks", "communications"} {
		var n int
		if err := dm.DB.Get(&n, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table); err != nil {
			t.Fatalf("lookup %s: %v", table, err)
		}
		if n != 1 {
			t.Fatalf("expected table %s to exist", table)
		}
	}

	var fk int
	if err := dm.DB.Get(&fk, "PRAGMA foreign_keys"); err != nil {
		t.Fatalf("read pragma: %v", err)
	}
	if fk != 1 {
		t.Fatalf("expected foreign keys to be enabled, got %d", fk)
	}

	if err := dm.ApplyMigrations(); err != nil {
		t.Fatalf("re-applying migrations should be a no-op: %v", err)
	}
}

func TestOpenFileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "crm.db")
	dm, err := Open(context.Background(), Options{Driver: DriverSQLite, Path: path}, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer dm.Close()

	store, err := dm.InitTokenStore(filepath.Join(filepath.Dir(path), "tokens.db"))
	if err != nil {
		t.Fatalf("init token store: %v", err)
	}
	defer store.Close()
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	dm := NewDBManager(Options{Driver: "oracle"}, nil)
	if err := dm.Connect(context.Background()); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
}

func TestSQLiteDSN(t *testing.T) {
	if got := sqliteDSN("crm.db"); got != "crm.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite" {
		t.Fatalf("unexpected dsn %q", got)
	}
	if got := sqliteDSN("crm.db?mode=rwc"); got != "crm.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite" {
		t.Fatalf("unexpected dsn %q", got)
	}
}

func TestSQLiteUnicodeLower(t *testing.T) {
	dm, err := Open(context.Background(), Options{Driver: DriverSQLite, Path: ":memory:"}, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer dm.Close()

	tests := []struct {
		in   string
		want string
	}{
		{"Ángel", "ángel"},
		{"ÑANDÚ SAC", "ñandú sac"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		var got string
		if err := dm.DB.Get(&got, "SELECT "+LowerFunc(dm.DB.DriverName())+"(?)", tt.in); err != nil {
			t.Fatalf("lower %q: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("lower(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	var null *string
	if err := dm.DB.Get(&null, "SELECT "+SQLiteLowerFunc+"(NULL)"); err != nil {
		t.Fatalf("lower NULL: %v", err)
	}
	if null != nil {
		t.Errorf("lower(NULL) = %q, want NULL", *null)
	}
}

func TestLowerFunc(t *testing.T) {
	if got := LowerFunc(DriverSQLite); got != SQLiteLowerFunc {
		t.Errorf("sqlite lower = %q", got)
	}
	if got := LowerFunc(DriverPostgres); got != "LOWER" {
		t.Errorf("postgres lower = %q", got)
	}
}
