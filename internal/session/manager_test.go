package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/exposure/internal/catalog"
	"github.com/JonMunkholm/exposure/internal/category"
)

var testCatalog = catalog.Static{
	{GroupCode: "2", GroupName: "Meat"},
	{GroupCode: "1.2", GroupName: "Cheese"},
	{GroupCode: "1.10", GroupName: "Butter"},
	{GroupCode: "1", GroupName: "Dairy"},
	{GroupCode: "1.2.3", GroupName: "Hard cheese"},
	{GroupCode: "n/a", GroupName: "Free text"},
}

type failingSource struct{}

func (failingSource) Records(context.Context) ([]catalog.Record, error) {
	return nil, errors.New("disk on fire")
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	codec := category.NewCodec(category.NewCanonical(testCatalog))
	return NewManager(NewStore(time.Hour), codec)
}

func codes(table []category.Row) []string {
	out := make([]string, len(table))
	for i, r := range table {
		out[i] = r.GroupCode
	}
	return out
}

func TestManager_Open(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	snap, err := m.Open(ctx, "s1")
	require.NoError(t, err)

	assert.Equal(t, "s1", snap.ID)
	assert.Equal(t, Canonical, snap.State)
	assert.Equal(t, []string{"1", "1.2", "1.2.3", "1.10", "2"}, codes(snap.Table))
	assert.False(t, snap.CanCalculate)
	assert.False(t, snap.HasExposureInput)
	for _, r := range snap.Table {
		assert.Nil(t, r.UseLevel)
		assert.False(t, r.ConsumersOf)
	}
}

func TestManager_OpenKeepsExistingTable(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	_, err := m.Open(ctx, "s1")
	require.NoError(t, err)
	_, err = m.EditCell(ctx, "s1", "1.2", category.FieldUseLevel, "4")
	require.NoError(t, err)

	snap, err := m.Open(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, Edited, snap.State)
	assert.Equal(t, category.Float(4), snap.Table[1].UseLevel)
}

func TestManager_OpenCatalogFailure(t *testing.T) {
	codec := category.NewCodec(category.NewCanonical(failingSource{}))
	m := NewManager(NewStore(time.Hour), codec)

	_, err := m.Open(context.Background(), "s1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load catalog")

	snap, err := m.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, Uninitialized, snap.State)
}

func TestManager_UnknownSession(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	_, err := m.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = m.EditCell(ctx, "missing", "1", category.FieldUseLevel, "1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = m.Export(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = m.Calculate(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_EditBeforeLoadIsRejected(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	m.store.getOrCreate("s1")

	_, err := m.EditCell(ctx, "s1", "1", category.FieldUseLevel, "1")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, _, err = m.Import(ctx, "s1", []byte(`[]`))
	assert.ErrorIs(t, err, ErrInvalidTransition)

	snap, err := m.Reset(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, Canonical, snap.State)
}

func TestManager_EditCellValidates(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	_, err := m.Open(ctx, "s1")
	require.NoError(t, err)

	snap, err := m.EditCell(ctx, "s1", "1", category.FieldConsumersOf, "Yes")
	require.NoError(t, err)
	assert.Equal(t, Edited, snap.State)
	assert.False(t, snap.Table[0].ConsumersOf, "consumers of needs a use level")

	_, err = m.EditCell(ctx, "s1", "1", category.FieldUseLevel, "12.5")
	require.NoError(t, err)
	snap, err = m.EditCell(ctx, "s1", "1", category.FieldConsumersOf, "Yes")
	require.NoError(t, err)
	assert.True(t, snap.Table[0].ConsumersOf)
	assert.True(t, snap.CanCalculate)

	snap, err = m.EditCell(ctx, "s1", "1", category.FieldUseLevel, "")
	require.NoError(t, err)
	assert.Nil(t, snap.Table[0].UseLevel)
	assert.False(t, snap.Table[0].ConsumersOf)
	assert.False(t, snap.CanCalculate)
}

func TestManager_EditCellErrorsKeepState(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	_, err := m.Open(ctx, "s1")
	require.NoError(t, err)

	_, err = m.EditCell(ctx, "s1", "9.9", category.FieldUseLevel, "1")
	assert.ErrorIs(t, err, category.ErrUnknownCode)

	_, err = m.EditCell(ctx, "s1", "1", category.FieldUseLevel, "lots")
	assert.ErrorIs(t, err, category.ErrInvalidNumber)

	snap, err := m.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, Canonical, snap.State)
}

func TestManager_EditTableMergesOntoCanonical(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	_, err := m.Open(ctx, "s1")
	require.NoError(t, err)

	stale := []category.Row{
		{GroupCode: "2", UseLevel: category.Float(3), ConsumersOf: true},
		{GroupCode: "7.7", UseLevel: category.Float(1)},
		{GroupCode: "1.2", UseLevel: category.Float(-1), ConsumersOf: true},
	}

	snap, err := m.EditTable(ctx, "s1", stale)
	require.NoError(t, err)
	assert.Equal(t, Edited, snap.State)
	assert.Equal(t, []string{"1", "1.2", "1.2.3", "1.10", "2"}, codes(snap.Table))
	assert.Equal(t, category.Float(3), snap.Table[4].UseLevel)
	assert.True(t, snap.Table[4].ConsumersOf)
	assert.False(t, snap.Table[1].ConsumersOf)
}

func TestManager_Reset(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	_, err := m.Open(ctx, "s1")
	require.NoError(t, err)
	_, err = m.EditCell(ctx, "s1", "2", category.FieldUseLevel, "8")
	require.NoError(t, err)

	snap, err := m.Reset(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, Canonical, snap.State)
	assert.Nil(t, snap.Table[4].UseLevel)
}

func TestManager_ImportRestores(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	_, err := m.Open(ctx, "s1")
	require.NoError(t, err)

	payload := `[{"group_code":"1.2.3","use_level":2.5,"consumers_of":true},{"group_code":"gone","use_level":1,"consumers_of":false}]`

	snap, applied, err := m.Import(ctx, "s1", []byte(payload))
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, Restored, snap.State)
	assert.Equal(t, category.Float(2.5), snap.Table[2].UseLevel)
	assert.True(t, snap.Table[2].ConsumersOf)
	assert.Len(t, snap.Table, 5)
}

func TestManager_ImportDataURL(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	_, err := m.Open(ctx, "s1")
	require.NoError(t, err)

	body := `[{"group_code":"2","use_level":1,"consumers_of":false}]`
	upload := "data:application/json;base64," + base64.StdEncoding.EncodeToString([]byte(body))

	snap, applied, err := m.Import(ctx, "s1", []byte(upload))
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, category.Float(1), snap.Table[4].UseLevel)
}

func TestManager_ImportMalformedResets(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	_, err := m.Open(ctx, "s1")
	require.NoError(t, err)
	_, err = m.EditCell(ctx, "s1", "2", category.FieldUseLevel, "8")
	require.NoError(t, err)

	snap, applied, err := m.Import(ctx, "s1", []byte(`{"not":"a list"}`))
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, Restored, snap.State)
	assert.Nil(t, snap.Table[4].UseLevel)
}

func TestManager_ExportRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	_, err := m.Open(ctx, "s1")
	require.NoError(t, err)
	_, err = m.EditCell(ctx, "s1", "1.10", category.FieldUseLevel, "7")
	require.NoError(t, err)
	_, err = m.EditCell(ctx, "s1", "1.10", category.FieldConsumersOf, "yes")
	require.NoError(t, err)

	data, err := m.Export(ctx, "s1")
	require.NoError(t, err)

	var entries []category.Entry
	require.NoError(t, json.Unmarshal(data, &entries))
	assert.Equal(t, []category.Entry{{GroupCode: "1.10", UseLevel: 7, ConsumersOf: true}}, entries)

	snap, err := m.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, Edited, snap.State, "export does not change state")

	_, err = m.Open(ctx, "s2")
	require.NoError(t, err)
	restored, applied, err := m.Import(ctx, "s2", data)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, snap.Table, restored.Table)
}

func TestManager_Calculate(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	_, err := m.Open(ctx, "s1")
	require.NoError(t, err)

	_, err = m.Calculate(ctx, "s1")
	assert.ErrorIs(t, err, ErrNothingToCalculate)

	_, err = m.ExposureInput(ctx, "s1")
	assert.ErrorIs(t, err, ErrNoExposureInput)

	_, err = m.EditCell(ctx, "s1", "1", category.FieldUseLevel, "3")
	require.NoError(t, err)

	entries, err := m.Calculate(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []category.Entry{{GroupCode: "1", UseLevel: 3}}, entries)

	stored, err := m.ExposureInput(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, entries, stored)

	snap, err := m.Get(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, snap.HasExposureInput)
	assert.Equal(t, Edited, snap.State, "calculate does not change state")
}

func TestManager_SnapshotIsCopy(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	snap, err := m.Open(ctx, "s1")
	require.NoError(t, err)
	snap.Table[0].UseLevel = category.Float(99)

	again, err := m.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, again.Table[0].UseLevel)
}

func TestManager_SessionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	_, err := m.Open(ctx, "a")
	require.NoError(t, err)
	_, err = m.Open(ctx, "b")
	require.NoError(t, err)

	_, err = m.EditCell(ctx, "a", "2", category.FieldUseLevel, "5")
	require.NoError(t, err)

	b, err := m.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, Canonical, b.State)
	assert.Nil(t, b.Table[4].UseLevel)
}
