package category

import (
	"slices"
	"strings"

	"github.com/JonMunkholm/exposure/internal/catalog"
)

// keyedRow pairs a row with its sort key while the table is being built.
type keyedRow struct {
	row Row
	key []uint64
}

// BuildTable builds the canonical category table from raw catalog records.
//
// Only (code, name) is kept, exact duplicates are removed, rows without a
// hierarchical code are dropped, and the result is sorted by the integer
// segments of the code. Every row starts with no use level and
// ConsumersOf=false. The output depends only on the set of records, so
// calling it twice on the same catalog yields the same table.
//
// A code may appear with several names in a messy catalog. Group codes must
// be unique in the table, so the lexically smallest name wins.
//
// A surviving code that cannot be parsed aborts the build with an error
// wrapping ErrIntegrity.
func BuildTable(records []catalog.Record) ([]Row, error) {
	names := make(map[string]string)
	for _, rec := range records {
		if !IsHierarchicalCode(rec.GroupCode) {
			continue
		}
		if name, ok := names[rec.GroupCode]; !ok || rec.GroupName < name {
			names[rec.GroupCode] = rec.GroupName
		}
	}

	keyed := make([]keyedRow, 0, len(names))
	for code, name := range names {
		key, err := ParseCode(code)
		if err != nil {
			return nil, err
		}
		keyed = append(keyed, keyedRow{
			row: Row{GroupCode: code, GroupName: name},
			key: key,
		})
	}

	// Codes such as "1.2" and "1.2." share a key; fall back to the raw code so
	// the order never depends on map iteration.
	slices.SortFunc(keyed, func(a, b keyedRow) int {
		if c := compareKeys(a.key, b.key); c != 0 {
			return c
		}
		return strings.Compare(a.row.GroupCode, b.row.GroupCode)
	})

	table := make([]Row, len(keyed))
	for i, k := range keyed {
		table[i] = k.row
	}
	return table, nil
}
