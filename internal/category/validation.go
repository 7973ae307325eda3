package category

// validation.go keeps the editable table consistent after every edit and
// every restoration.
//
// The rule: a row may only be flagged as "consumers of" when it has a use
// level greater than zero. A use level of exactly zero does not count.
// Validation never touches use levels, codes, names or row order.

// Validate returns a corrected copy of table and whether calculation may
// proceed. The input slice is left untouched.
func Validate(table []Row) (canCalculate bool, corrected []Row) {
	corrected = Clone(table)

	for i := range corrected {
		if corrected[i].Eligible() {
			canCalculate = true
			continue
		}
		corrected[i].ConsumersOf = false
	}

	return canCalculate, corrected
}

// CanCalculate reports whether at least one row has a use level above zero.
func CanCalculate(table []Row) bool {
	for _, row := range table {
		if row.Eligible() {
			return true
		}
	}
	return false
}

// Violations returns the group codes of rows that break the consumers-of
// rule. An empty result means the table is consistent.
func Violations(table []Row) []string {
	var codes []string
	for _, row := range table {
		if row.ConsumersOf && !row.Eligible() {
			codes = append(codes, row.GroupCode)
		}
	}
	return codes
}
