package database

import (
	"database/sql/driver"
	"strings"

	"modernc.org/sqlite"
)

// SQLiteLowerFunc is a Unicode-aware LOWER for SQLite connections. The
// built-in LOWER only folds ASCII letters.
const SQLiteLowerFunc = "unicode_lower"

func init() {
	if err := sqlite.RegisterDeterministicScalarFunction(SQLiteLowerFunc, 1, unicodeLower); err != nil {
		panic(err)
	}
}

func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// LowerFunc names the Unicode-aware lower-casing SQL function for a driver.
func LowerFunc(driverName string) string {
	if driverName == DriverSQLite {
		return SQLiteLowerFunc
	}
	return "LOWER"
}
