package iocache

import (
	"database/sql"
	"fmt"
	"regexp"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/contacts/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// validateTableName validates that the table name is a safe SQL identifier.
// It ensures the name consists only of alphanumeric characters and underscores,
// starting with a letter or underscore, to prevent SQL injection.
func validateTableName(name string) error {
	if name == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name: %s (must match pattern ^[a-zA-Z_][a-zA-Z0-9_]*$)", name)
	}
	return nil
}

// quoteTableName returns the properly quoted table name for the given backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("`%s`", name)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf("\"%s\"", name)
	}
}

// placeholder returns the n-th (1-based) parameter placeholder for the backend.
func placeholder(backend schema.DatabaseBackend, n int) string {
	if backend == schema.PostgreSQLBackend {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// driverFor maps a SQL backend to its database/sql driver name.
func driverFor(backend schema.DatabaseBackend) (string, error) {
	switch backend {
	case schema.SQLiteBackend:
		return "sqlite", nil
	case schema.MySQLBackend:
		return "mysql", nil
	case schema.PostgreSQLBackend:
		return "pgx", nil
	default:
		return "", fmt.Errorf("backend %s is not a SQL backend", backend)
	}
}

// sqliteFilePath returns the SQLite file a store uses: the configured
// connection string, or defaultPath when none is set.
func sqliteFilePath(connStr, defaultPath string) string {
	if connStr != "" {
		return connStr
	}
	return defaultPath
}

// openSQL opens and pings a SQL database. An empty SQLite connection string
// falls back to defaultPath.
func openSQL(backend schema.DatabaseBackend, connStr, defaultPath string) (*sql.DB, error) {
	driverName, err := driverFor(backend)
	if err != nil {
		return nil, err
	}

	dsn := connStr
	if backend == schema.SQLiteBackend {
		dsn = sqliteFilePath(connStr, defaultPath)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		switch backend {
		case schema.SQLiteBackend:
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dsn, err)
		case schema.MySQLBackend:
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection format: user:password@tcp(host:port)/dbname", err)
		default:
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}
	}
	if backend == schema.SQLiteBackend {
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database. Check that the server is running and connection parameters are valid: %w", backend, err)
	}
	return db, nil
}
