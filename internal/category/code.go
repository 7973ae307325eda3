package category

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// codePattern matches hierarchical codes: digits, optional ".digits" groups
// and an optional trailing dot. Anything else (free text, legacy pseudo-codes)
// is not navigable and is left out of the table.
var codePattern = regexp.MustCompile(`^\d+(\.\d+)*\.?$`)

// IsHierarchicalCode reports whether code matches the hierarchical code pattern.
func IsHierarchicalCode(code string) bool {
	return codePattern.MatchString(code)
}

// ParseCode splits a hierarchical code into its integer segments.
// A trailing dot is ignored: "1.2." and "1.2" both yield [1 2].
func ParseCode(code string) ([]uint64, error) {
	parts := strings.Split(strings.TrimSuffix(code, "."), ".")

	key := make([]uint64, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: code %q segment %q: %v", ErrIntegrity, code, p, err)
		}
		key[i] = n
	}
	return key, nil
}

// compareKeys orders integer sequences lexicographically. A sequence that is
// a prefix of a longer one sorts first.
func compareKeys(a, b []uint64) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

// CompareCodes orders two hierarchical codes. It returns an error wrapping
// ErrIntegrity if either code cannot be parsed.
func CompareCodes(a, b string) (int, error) {
	ka, err := ParseCode(a)
	if err != nil {
		return 0, err
	}
	kb, err := ParseCode(b)
	if err != nil {
		return 0, err
	}
	return compareKeys(ka, kb), nil
}
