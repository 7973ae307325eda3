package category

import "errors"

var (
	// ErrIntegrity means a code passed the hierarchical-code filter but could
	// not be parsed into integer segments. The filter and the parser have
	// drifted apart; this is a bug, not bad input.
	ErrIntegrity = errors.New("catalog integrity fault")

	// ErrUnknownCode is returned when an edit references a group code that is
	// not part of the canonical table.
	ErrUnknownCode = errors.New("unknown group code")

	// ErrInvalidNumber is returned for use-level input that is not a number.
	ErrInvalidNumber = errors.New("invalid number format")

	// ErrInvalidFlag is returned for consumers-of input that is not yes/no.
	ErrInvalidFlag = errors.New("invalid consumers of value")

	// ErrNotEditable is returned for edits to columns other than use level
	// and consumers of.
	ErrNotEditable = errors.New("column is not editable")
)
