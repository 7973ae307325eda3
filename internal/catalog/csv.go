package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jszwec/csvutil"
)

// CSVSource reads the catalog from a CSV file on disk.
type CSVSource struct {
	Path string
}

// NewCSVSource creates a source for the CSV file at path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

// Records opens the file and decodes every row.
func (s *CSVSource) Records(ctx context.Context) ([]Record, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", s.Path, err)
	}
	defer f.Close()

	return DecodeCSV(ctx, f)
}

// DecodeCSV decodes catalog records from CSV data. The header row must name
// both the group code and group name columns; any other column is ignored.
// Group names are cleaned with CleanCell, group codes are not.
func DecodeCSV(ctx context.Context, r io.Reader) ([]Record, error) {
	reader := csv.NewReader(SkipBOM(r))
	reader.LazyQuotes = true

	dec, err := csvutil.NewDecoder(reader)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty catalog", ErrMissingColumn)
		}
		return nil, fmt.Errorf("invalid csv header: %w", err)
	}

	if err := checkHeader(dec.Header()); err != nil {
		return nil, err
	}

	var records []Record
	for line := 2; ; line++ {
		if line%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		var rec Record
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("invalid csv at line %d: %w", line, err)
		}

		// Codes are kept verbatim; the builder drops anything that does
		// not match the code pattern exactly.
		rec.GroupName = CleanCell(rec.GroupName)
		records = append(records, rec)
	}

	return records, nil
}

// checkHeader verifies that the required columns are present.
func checkHeader(header []string) error {
	seen := make(map[string]bool, len(header))
	for _, h := range header {
		seen[h] = true
	}

	var missing []string
	for _, col := range []string{ColumnGroupCode, ColumnGroupName} {
		if !seen[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}
