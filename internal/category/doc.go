// Package category provides the editable category table behind the exposure
// input form.
//
// The package has no UI dependencies. The web layer and the command line tool
// hand it plain rows and get plain rows back.
//
// # Canonical Table
//
// [BuildTable] turns raw catalog records into the canonical table: only rows
// whose group code is a hierarchical code ("1", "1.2", "1.2.3.") survive,
// exact duplicates are dropped, and rows are ordered by the integer segments
// of the code so that "1.2" < "1.10" < "2". Every row starts with an empty
// use level and the consumers-of flag switched off.
//
// [Canonical] memoizes that table for the lifetime of the loaded catalog.
//
// # Validation
//
// [Validate] enforces the one cross-field rule of the form: a row can only be
// flagged as "consumers of" when its use level is greater than zero. It also
// reports whether any row is eligible for calculation.
//
// # Session Codec
//
// [Compact] reduces the table to the entries that matter downstream, which is
// also the export/import file format. [Codec.Expand] and
// [Codec.ExpandPayload] rebuild a full table from such entries, always
// starting from a freshly built canonical table. Malformed payloads never
// fail: they degrade to the canonical table.
//
// # Error Codes
//
// Technical errors are mapped to user-facing messages with [MapError]:
//
//   - CAT001-CAT004: Catalog and table errors
//   - VAL001-VAL002: Cell input errors
//   - SES001-SES004: Editing session errors
//   - IMP001: Import errors
//   - RES001: Results errors
package category
