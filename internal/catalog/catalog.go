// Package catalog reads resources and their relations from the relational catalog.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	_ "modernc.org/sqlite"             // registers the "sqlite" database/sql driver (no CGO)
)

// Dialect selects the SQL flavour the catalog speaks.
type Dialect string

const (
	// DialectPostgres talks to PostgreSQL through pgx.
	DialectPostgres Dialect = "postgres"
	// DialectSQLite talks to an SQLite file or in-memory database.
	DialectSQLite Dialect = "sqlite"
)

const (
	defaultMaxOpenConns    = 4
	defaultConnMaxLifetime = 5 * time.Minute
)

// Config holds the catalog connection parameters.
type Config struct {
	Dialect       Dialect
	DSN           string
	ResourceTable string
	RelationTable string
	MaxOpenConns  int
}

// Catalog is a read-only view over the resource and relation tables.
type Catalog struct {
	db            *sql.DB
	dialect       Dialect
	resourceTable string
	relationTable string
}

// Open connects to the catalog and verifies the connection.
func Open(ctx context.Context, cfg Config) (*Catalog, error) {
	if cfg.DSN == "" {
		return nil, errors.New("catalog dsn is required")
	}

	var driver string
	switch cfg.Dialect {
	case DialectPostgres:
		driver = "pgx"
	case DialectSQLite:
		driver = "sqlite"
	default:
		return nil, fmt.Errorf("unsupported catalog dialect %q", cfg.Dialect)
	}

	sqlDB, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog connection: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = defaultMaxOpenConns
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetConnMaxLifetime(defaultConnMaxLifetime)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping catalog: %w", err)
	}

	return New(sqlDB, cfg.Dialect, cfg.ResourceTable, cfg.RelationTable)
}

// New wraps an existing connection pool.
func New(sqlDB *sql.DB, dialect Dialect, resourceTable, relationTable string) (*Catalog, error) {
	if !validTable(resourceTable) {
		return nil, fmt.Errorf("invalid resource table name %q", resourceTable)
	}
	if !validTable(relationTable) {
		return nil, fmt.Errorf("invalid relation table name %q", relationTable)
	}
	return &Catalog{
		db:            sqlDB,
		dialect:       dialect,
		resourceTable: resourceTable,
		relationTable: relationTable,
	}, nil
}

// Ping verifies the catalog is reachable.
func (c *Catalog) Ping(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping catalog: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Target describes where a DSN points without exposing credentials: host[:port]/database
// for Postgres, the file path for SQLite.
func Target(dialect Dialect, dsn string) string {
	if dialect == DialectSQLite {
		path, _, _ := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")
		return path
	}
	pc, err := pgx.ParseConfig(dsn)
	if err != nil {
		return "unparsable dsn"
	}
	return fmt.Sprintf("%s:%d/%s", pc.Host, pc.Port, pc.Database)
}

// validTable accepts identifiers and schema-qualified identifiers.
func validTable(name string) bool {
	if name == "" {
		return false
	}
	for part := range strings.SplitSeq(name, ".") {
		if part == "" {
			return false
		}
		for _, r := range part {
			isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
			isDigit := r >= '0' && r <= '9'
			if !isAlpha && !isDigit && r != '_' {
				return false
			}
		}
	}
	return true
}

func quoteTable(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = `"` + p + `"`
	}
	return strings.Join(parts, ".")
}
