package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JonMunkholm/exposure/internal/config"
)

// Open returns the source selected by cfg and a function that releases it.
// For Postgres the pool stays open until release is called, so the catalog
// can be reloaded after Invalidate.
func Open(ctx context.Context, cfg config.CatalogConfig) (src Source, release func(), err error) {
	switch strings.ToLower(cfg.Source) {
	case config.SourcePostgres:
		pool, err := Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("catalog source", "kind", config.SourcePostgres, "table", cfg.Table)
		return NewPostgresSource(pool, cfg.Table), pool.Close, nil

	case config.SourceCSV, "":
		slog.Info("catalog source", "kind", config.SourceCSV, "path", cfg.Path)
		return NewCSVSource(cfg.Path), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown catalog source %q", cfg.Source)
	}
}
