package db

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/looplj/tenanthub/internal/tenancy"
)

// DB wraps the sql connection with its resolved dialect so stores can render
// dialect-specific placeholders.
type DB struct {
	*sql.DB

	Dialect string
}

func Open(cfg Config) (*DB, error) {
	var (
		sqlDB   *sql.DB
		dialect string
		err     error
	)

	switch cfg.Dialect {
	case "postgres", "pgx", "postgresdb", "pg", "postgresql":
		sqlDB, err = sql.Open("pgx", cfg.DSN)
		dialect = tenancy.DialectPostgres
	case "sqlite3", "sqlite":
		sqlDB, err = sql.Open("sqlite", cfg.DSN)
		dialect = tenancy.DialectSQLite
	default:
		return nil, fmt.Errorf("invalid dialect: %s", cfg.Dialect)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if dialect == tenancy.DialectSQLite {
		// modernc sqlite serializes writers; a single connection avoids
		// SQLITE_BUSY under concurrent requests.
		sqlDB.SetMaxOpenConns(1)
	}

	return &DB{DB: sqlDB, Dialect: dialect}, nil
}

// Ph renders the n-th positional placeholder for the dialect.
func (d *DB) Ph(n int) string {
	if d.Dialect == tenancy.DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}

	return "?"
}
