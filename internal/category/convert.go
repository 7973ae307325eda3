package category

// convert.go parses what people type into the editable cells.
//
// Use levels are typed by hand or pasted from spreadsheets, so the parser
// accepts surrounding whitespace, comma thousands separators in strict groups
// of three and a "mg/kg" suffix. A decimal comma is rejected rather than
// guessed at. A blank cell clears the use level.

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/exposure/internal/catalog"
)

// Editable column names accepted by EditCell.
const (
	FieldUseLevel    = "use_level"
	FieldConsumersOf = "consumers_of"
)

// groupedNumber matches numbers written with comma thousands separators.
var groupedNumber = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d+)?$`)

// ParseUseLevel parses a use-level cell. Blank input returns nil.
func ParseUseLevel(s string) (*float64, error) {
	s = catalog.CleanCell(s)
	s = strings.TrimSpace(strings.TrimSuffix(strings.ToLower(s), "mg/kg"))
	if s == "" {
		return nil, nil
	}

	if strings.Contains(s, ",") {
		if !groupedNumber.MatchString(s) {
			return nil, fmt.Errorf("%w: %q (use a dot as decimal separator)", ErrInvalidNumber, s)
		}
		s = strings.ReplaceAll(s, ",", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}

	f, _ := d.Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, fmt.Errorf("%w: %q out of range", ErrInvalidNumber, s)
	}
	return &f, nil
}

// ParseConsumersOf parses a consumers-of cell. Blank input means false.
func ParseConsumersOf(s string) (bool, error) {
	switch strings.ToLower(catalog.CleanCell(s)) {
	case "true", "t", "yes", "y", "1":
		return true, nil
	case "", "false", "f", "no", "n", "0":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q (use yes or no)", ErrInvalidFlag, s)
	}
}

// EditCell applies one cell edit to a copy of table and re-validates it.
// Only the use level and consumers-of columns are editable.
func EditCell(table []Row, groupCode, field, value string) ([]Row, error) {
	idx := -1
	for i, row := range table {
		if row.GroupCode == groupCode {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCode, groupCode)
	}

	out := Clone(table)
	switch field {
	case FieldUseLevel:
		level, err := ParseUseLevel(value)
		if err != nil {
			return nil, err
		}
		out[idx].UseLevel = level
	case FieldConsumersOf:
		flag, err := ParseConsumersOf(value)
		if err != nil {
			return nil, err
		}
		out[idx].ConsumersOf = flag
	default:
		return nil, fmt.Errorf("%w: %q", ErrNotEditable, field)
	}

	_, out = Validate(out)
	return out, nil
}
