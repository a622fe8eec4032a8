package bunstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
)

// DatabaseConfig selects the driver and connection string.
type DatabaseConfig struct {
	Driver       string
	DSN          string
	MaxOpenConns int
}

// Open connects to the configured database and wraps it in a bun.DB with the
// matching dialect.
func Open(ctx context.Context, cfg DatabaseConfig) (*bun.DB, error) {
	var dialect schema.Dialect
	switch cfg.Driver {
	case DriverSQLite:
		dialect = sqlitedialect.New()
	case DriverPostgres, DriverPgx:
		dialect = pgdialect.New()
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	sqldb, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	switch {
	case cfg.MaxOpenConns > 0:
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	case cfg.Driver == DriverSQLite:
		// sqlite allows a single writer, and ":memory:" databases exist per connection
		sqldb.SetMaxOpenConns(1)
	}

	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}

	return bun.NewDB(sqldb, dialect), nil
}

// Table is a model plus the foreign key clauses to create it with.
type Table struct {
	Model       any
	ForeignKeys []string
}

// CreateTables creates each table if missing, in the given order.
func CreateTables(ctx context.Context, db bun.IDB, tables ...Table) error {
	for _, t := range tables {
		q := db.NewCreateTable().Model(t.Model).IfNotExists()
		for _, fk := range t.ForeignKeys {
			q = q.ForeignKey(fk)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", t.Model, err)
		}
	}
	return nil
}
