package category

import (
	"context"
	"fmt"
	"sync"

	"github.com/JonMunkholm/exposure/internal/catalog"
)

// Canonical memoizes the canonical table built from a catalog source.
//
// The catalog is immutable reference data, so the table stays valid for the
// lifetime of the loaded catalog. Invalidate drops it; the next call to
// Table reloads the catalog and rebuilds.
type Canonical struct {
	source catalog.Source

	mu    sync.Mutex
	table []Row
	built bool
}

// NewCanonical creates a cache over src. Nothing is loaded until first use.
func NewCanonical(src catalog.Source) *Canonical {
	return &Canonical{source: src}
}

// Table returns a fresh copy of the canonical table, building it on first use.
func (c *Canonical) Table(ctx context.Context) ([]Row, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.built {
		records, err := catalog.Load(ctx, c.source)
		if err != nil {
			return nil, err
		}
		table, err := BuildTable(records)
		if err != nil {
			return nil, fmt.Errorf("build category table: %w", err)
		}
		c.table = table
		c.built = true
	}

	return Clone(c.table), nil
}

// Invalidate discards the memoized table.
func (c *Canonical) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.table = nil
	c.built = false
}

// Len returns the number of rows in the memoized table, or 0 if it has not
// been built yet.
func (c *Canonical) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.table)
}
