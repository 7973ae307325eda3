package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the subset of pgx used to read the catalog.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Query(context.Context, string, ...any) (pgx.Rows, error)
}

// PostgresSource reads the catalog from a Postgres table with group_code and
// group_name columns. It never writes.
type PostgresSource struct {
	db    DBTX
	table string
}

// NewPostgresSource creates a source that reads from table through db.
func NewPostgresSource(db DBTX, table string) *PostgresSource {
	return &PostgresSource{db: db, table: table}
}

// Connect opens a small connection pool for catalog reads and verifies it.
// The pool should be closed once the catalog has been loaded.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse catalog database url: %w", err)
	}
	cfg.MaxConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect catalog database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping catalog database: %w", err)
	}
	return pool, nil
}

// Records selects every (group_code, group_name) pair. NULLs become empty
// strings so that they are filtered out later like any other malformed code.
func (s *PostgresSource) Records(ctx context.Context) ([]Record, error) {
	query := fmt.Sprintf(
		"SELECT COALESCE(group_code, ''), COALESCE(group_name, '') FROM %s",
		pgx.Identifier(strings.Split(s.table, ".")).Sanitize(),
	)

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query catalog table %s: %w", s.table, err)
	}

	records, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Record])
	if err != nil {
		return nil, fmt.Errorf("scan catalog table %s: %w", s.table, err)
	}

	for i := range records {
		records[i].GroupName = CleanCell(records[i].GroupName)
	}
	return records, nil
}
