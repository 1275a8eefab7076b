package db

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/looplj/tenanthub/internal/log"
	"github.com/looplj/tenanthub/internal/tenancy"
)

// The DDL differs per dialect (identity columns, types), so each dialect
// carries its own migration directory.
//
//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// Migrate applies all pending schema migrations for the connection's dialect.
func (d *DB) Migrate(ctx context.Context) error {
	source, err := iofs.New(migrationsFS, "migrations/"+d.Dialect)
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	var driver database.Driver

	switch d.Dialect {
	case tenancy.DialectPostgres:
		driver, err = migratepgx.WithInstance(d.DB, &migratepgx.Config{})
	case tenancy.DialectSQLite:
		driver, err = migratesqlite.WithInstance(d.DB, &migratesqlite.Config{})
	default:
		return fmt.Errorf("unsupported dialect: %s", d.Dialect)
	}

	if err != nil {
		return fmt.Errorf("failed to prepare migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, d.Dialect, driver)
	if err != nil {
		return fmt.Errorf("failed to prepare migrations: %w", err)
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	log.Info(ctx, "database schema up to date",
		log.String("dialect", d.Dialect),
		log.Int("version", int(version)),
		log.Bool("dirty", dirty),
	)

	return nil
}
