package session

import (
	"errors"
	"testing"
)

func TestNext(t *testing.T) {
	tests := []struct {
		from    State
		ev      Event
		want    State
		wantErr bool
	}{
		{Uninitialized, EventLoad, Canonical, false},
		{Uninitialized, EventReset, Canonical, false},
		{Uninitialized, EventEdit, Uninitialized, true},
		{Uninitialized, EventImport, Uninitialized, true},
		{Canonical, EventEdit, Edited, false},
		{Canonical, EventReset, Canonical, false},
		{Canonical, EventImport, Restored, false},
		{Canonical, EventLoad, Canonical, true},
		{Edited, EventEdit, Edited, false},
		{Edited, EventReset, Canonical, false},
		{Edited, EventImport, Restored, false},
		{Restored, EventEdit, Edited, false},
		{Restored, EventReset, Canonical, false},
		{Restored, EventImport, Restored, false},
		{Restored, EventLoad, Restored, true},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"/"+tt.ev.String(), func(t *testing.T) {
			got, err := Next(tt.from, tt.ev)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTransition) {
					t.Fatalf("Next() error = %v, want ErrInvalidTransition", err)
				}
			} else if err != nil {
				t.Fatalf("Next() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Next() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestStateString(t *testing.T) {
	if got := State(42).String(); got != "state(42)" {
		t.Errorf("String() = %q", got)
	}
	if got := Event(9).String(); got != "event(9)" {
		t.Errorf("String() = %q", got)
	}
}
