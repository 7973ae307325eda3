// Package catalog loads the reference category catalog.
//
// The catalog is immutable reference data: a flat collection of category
// records (group code, group name and unrelated columns) read once per
// process. Sources may be a CSV export of the combined dataset or a Postgres
// table holding the same columns.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Column headers the catalog must provide. Other columns are ignored.
const (
	ColumnGroupCode = "Group Code"
	ColumnGroupName = "Group Name"
)

// ErrMissingColumn is returned when the catalog lacks a required column.
var ErrMissingColumn = errors.New("missing catalog column")

// Record is one raw catalog row. Records are not unique and may carry
// malformed codes; the table builder is responsible for cleaning them up.
type Record struct {
	GroupCode string `csv:"Group Code"`
	GroupName string `csv:"Group Name"`
}

// Source provides catalog records.
type Source interface {
	Records(ctx context.Context) ([]Record, error)
}

// Static is an in-memory Source, handy for tests and fixtures.
type Static []Record

// Records returns a copy of the static records.
func (s Static) Records(context.Context) ([]Record, error) {
	out := make([]Record, len(s))
	copy(out, s)
	return out, nil
}

// Load reads all records from src and logs how long it took.
func Load(ctx context.Context, src Source) ([]Record, error) {
	start := time.Now()

	records, err := src.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	slog.Info("catalog loaded",
		"records", len(records),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return records, nil
}
