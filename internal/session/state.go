// Package session keeps one editable category table per browser session and
// drives it through its lifecycle.
//
// A table starts Uninitialized, becomes Canonical when first built from the
// catalog, Edited after any cell change and Restored after an import. Reset
// always returns it to Canonical. Export and calculate read the table without
// moving it between states.
package session

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when an event is not allowed in the
// table's current state.
var ErrInvalidTransition = errors.New("invalid state transition")

// State is the lifecycle state of an editable table.
type State int

const (
	Uninitialized State = iota
	Canonical
	Edited
	Restored
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Canonical:
		return "canonical"
	case Edited:
		return "edited"
	case Restored:
		return "restored"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Event is a user action that may move the table to another state.
type Event int

const (
	EventLoad Event = iota
	EventEdit
	EventReset
	EventImport
)

func (e Event) String() string {
	switch e {
	case EventLoad:
		return "load"
	case EventEdit:
		return "edit"
	case EventReset:
		return "reset"
	case EventImport:
		return "import"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

var transitions = map[State]map[Event]State{
	Uninitialized: {
		EventLoad:  Canonical,
		EventReset: Canonical,
	},
	Canonical: {
		EventEdit:   Edited,
		EventReset:  Canonical,
		EventImport: Restored,
	},
	Edited: {
		EventEdit:   Edited,
		EventReset:  Canonical,
		EventImport: Restored,
	},
	Restored: {
		EventEdit:   Edited,
		EventReset:  Canonical,
		EventImport: Restored,
	},
}

// Next returns the state reached from s on ev.
func Next(s State, ev Event) (State, error) {
	if next, ok := transitions[s][ev]; ok {
		return next, nil
	}
	return s, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, ev, s)
}
