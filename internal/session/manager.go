package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/exposure/internal/category"
	"github.com/JonMunkholm/exposure/internal/logging"
)

var (
	// ErrNothingToCalculate is returned by Calculate when no row has a use
	// level above zero. The view disables the button in that case, so this
	// means the caller skipped that check.
	ErrNothingToCalculate = errors.New("nothing to calculate")

	// ErrNoExposureInput is returned when results are requested before
	// anything was calculated.
	ErrNoExposureInput = errors.New("no exposure input")
)

// Snapshot is a copy of an editor's state, safe to hand to the view.
type Snapshot struct {
	ID               string
	State            State
	Table            []category.Row
	CanCalculate     bool
	HasExposureInput bool
	UpdatedAt        time.Time
}

// Manager applies user actions to the editor of a session.
type Manager struct {
	store *Store
	codec *category.Codec
}

// NewManager creates a manager over store that restores tables with codec.
func NewManager(store *Store, codec *category.Codec) *Manager {
	return &Manager{store: store, codec: codec}
}

// Open returns the editor for id, building the canonical table on first use.
func (m *Manager) Open(ctx context.Context, id string) (Snapshot, error) {
	e := m.store.getOrCreate(id)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == Uninitialized {
		table, err := m.codec.Reset(ctx)
		if err != nil {
			return Snapshot{}, err
		}
		if err := m.apply(ctx, e, EventLoad, table); err != nil {
			return Snapshot{}, err
		}
	}
	m.store.touch(e)
	return e.snapshot(), nil
}

// Get returns the editor for id without creating it.
func (m *Manager) Get(ctx context.Context, id string) (Snapshot, error) {
	e, err := m.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	m.store.touch(e)
	return e.snapshot(), nil
}

// EditTable replaces the table with a snapshot coming back from the view.
// The snapshot is merged onto the canonical table, so rows cannot be added,
// dropped or reordered through it.
func (m *Manager) EditTable(ctx context.Context, id string, rows []category.Row) (Snapshot, error) {
	return m.update(ctx, id, EventEdit, func(*Editor) ([]category.Row, error) {
		return m.codec.Merge(ctx, rows)
	})
}

// EditCell changes one editable cell and re-validates the table.
func (m *Manager) EditCell(ctx context.Context, id, groupCode, field, value string) (Snapshot, error) {
	return m.update(ctx, id, EventEdit, func(e *Editor) ([]category.Row, error) {
		return category.EditCell(e.table, groupCode, field, value)
	})
}

// Reset discards all edits and restores the canonical table.
func (m *Manager) Reset(ctx context.Context, id string) (Snapshot, error) {
	return m.update(ctx, id, EventReset, func(*Editor) ([]category.Row, error) {
		return m.codec.Reset(ctx)
	})
}

// Import restores the table from the contents of an import file. Contents
// that cannot be read as entries reset the table instead; applied reports
// which of the two happened.
func (m *Manager) Import(ctx context.Context, id string, contents []byte) (snap Snapshot, applied bool, err error) {
	payload := category.DecodeUpload(contents)

	snap, err = m.update(ctx, id, EventImport, func(*Editor) ([]category.Row, error) {
		table, ok, err := m.codec.ExpandPayload(ctx, payload)
		applied = ok
		return table, err
	})
	return snap, applied, err
}

// Export returns the compacted table as the export file body.
func (m *Manager) Export(ctx context.Context, id string) ([]byte, error) {
	e, err := m.lookup(id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	entries := category.Compact(e.table)
	m.store.touch(e)
	e.mu.Unlock()

	return category.EncodeExport(entries)
}

// Calculate stores the compacted table as the session's exposure input,
// which unlocks the results stage.
func (m *Manager) Calculate(ctx context.Context, id string) ([]category.Entry, error) {
	e, err := m.lookup(id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !category.CanCalculate(e.table) {
		return nil, ErrNothingToCalculate
	}

	e.exposureInput = category.Compact(e.table)
	e.calculated = true
	m.store.touch(e)

	logging.FromContext(ctx).Info("exposure input stored", "entries", len(e.exposureInput))
	return cloneEntries(e.exposureInput), nil
}

// ExposureInput returns the entries stored by the last Calculate.
func (m *Manager) ExposureInput(ctx context.Context, id string) ([]category.Entry, error) {
	e, err := m.lookup(id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.calculated {
		return nil, ErrNoExposureInput
	}
	m.store.touch(e)
	return cloneEntries(e.exposureInput), nil
}

func (m *Manager) lookup(id string) (*Editor, error) {
	e := m.store.get(id)
	if e == nil {
		return nil, fmt.Errorf("%w: %q", ErrSessionNotFound, id)
	}
	return e, nil
}

// update runs fn against the editor for id and stores its result if ev is
// allowed in the editor's current state.
func (m *Manager) update(ctx context.Context, id string, ev Event, fn func(*Editor) ([]category.Row, error)) (Snapshot, error) {
	e, err := m.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := Next(e.state, ev); err != nil {
		return Snapshot{}, err
	}

	table, err := fn(e)
	if err != nil {
		return Snapshot{}, err
	}
	if err := m.apply(ctx, e, ev, table); err != nil {
		return Snapshot{}, err
	}
	m.store.touch(e)
	return e.snapshot(), nil
}

// apply moves e to the state reached by ev and stores table. The caller
// holds e.mu.
func (m *Manager) apply(ctx context.Context, e *Editor, ev Event, table []category.Row) error {
	next, err := Next(e.state, ev)
	if err != nil {
		return err
	}

	logging.FromContext(ctx).Debug("table state changed",
		"event", ev.String(),
		"from", e.state.String(),
		"to", next.String(),
		"rows", len(table),
	)
	e.state = next
	e.table = table
	return nil
}

// snapshot copies the editor's state. The caller holds e.mu.
func (e *Editor) snapshot() Snapshot {
	return Snapshot{
		ID:               e.id,
		State:            e.state,
		Table:            category.Clone(e.table),
		CanCalculate:     category.CanCalculate(e.table),
		HasExposureInput: e.calculated,
		UpdatedAt:        e.touched,
	}
}

func cloneEntries(entries []category.Entry) []category.Entry {
	out := make([]category.Entry, len(entries))
	copy(out, entries)
	return out
}
