package category

import (
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error returns empty", nil, ""},
		{"catalog load", fmt.Errorf("failed to load catalog: %w", errors.New("open data.csv")), "CAT001"},
		{"integrity", fmt.Errorf("build: %w", ErrIntegrity), "CAT002"},
		{"missing column", errors.New("missing catalog column: Group Name"), "CAT003"},
		{"unknown code", ErrUnknownCode, "CAT004"},
		{"invalid number", ErrInvalidNumber, "VAL001"},
		{"not editable", fmt.Errorf("%w: %q", ErrNotEditable, "group_name"), "VAL003"},
		{"bad snapshot", errors.New("invalid table snapshot: unexpected EOF"), "VAL004"},
		{"session expired", errors.New(`session not found: "abc"`), "SES001"},
		{"nothing to calculate", errors.New("nothing to calculate"), "SES003"},
		{"state machine", errors.New("invalid state transition: edit from uninitialized"), "SES004"},
		{"import size", errors.New("file too large: http: request body too large"), "IMP001"},
		{"results pane", errors.New(`unknown pane: "x"`), "RES001"},
		{"case insensitive", errors.New("RATE LIMIT exceeded"), "RATE001"},
		{"unknown error returns default", errors.New("some random internal error"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapError(tt.err).Code; got != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(ErrInvalidNumber)
	want := "Use level must be a number (Code: VAL001). Enter a value in mg/kg, for example 12.5, or leave it blank"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
	if FormatUserError(nil) != "" {
		t.Error("FormatUserError(nil) should be empty")
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("nil should not be user facing")
	}
	if !IsUserFacing(ErrUnknownCode) {
		t.Error("ErrUnknownCode should be user facing")
	}
	if IsUserFacing(errors.New("segfault")) {
		t.Error("unmapped errors should not be user facing")
	}
}
