package category

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/exposure/internal/catalog"
)

// mockSource is a catalog.Source that records how often it is read.
type mockSource struct {
	mock.Mock
}

func (m *mockSource) Records(ctx context.Context) ([]catalog.Record, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Record), args.Error(1)
}

var testCatalog = catalog.Static{
	{GroupCode: "2", GroupName: "Meat"},
	{GroupCode: "1.2", GroupName: "Cheese"},
	{GroupCode: "1.10", GroupName: "Butter"},
	{GroupCode: "1", GroupName: "Dairy"},
	{GroupCode: "1.2.3", GroupName: "Hard cheese"},
	{GroupCode: "abc", GroupName: "Free text"},
	{GroupCode: "1.2.3.x", GroupName: "Broken"},
}

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	return NewCodec(NewCanonical(testCatalog))
}

func TestCompact(t *testing.T) {
	table := []Row{
		{GroupCode: "1", UseLevel: Float(5), ConsumersOf: true},
		{GroupCode: "1.2", UseLevel: nil, ConsumersOf: true},
		{GroupCode: "1.10", UseLevel: Float(0)},
		{GroupCode: "2", UseLevel: Float(-1)},
		{GroupCode: "1.2.3", UseLevel: Float(0.5)},
	}

	assert.Equal(t, []Entry{
		{GroupCode: "1", UseLevel: 5, ConsumersOf: true},
		{GroupCode: "1.2.3", UseLevel: 0.5, ConsumersOf: false},
	}, Compact(table))
}

func TestCompact_EmptyEncodesAsArray(t *testing.T) {
	data, err := EncodeExport(Compact(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestEncodeExport_PrettyPrinted(t *testing.T) {
	data, err := EncodeExport([]Entry{{GroupCode: "1", UseLevel: 5, ConsumersOf: true}})
	require.NoError(t, err)

	want := "[\n  {\n    \"group_code\": \"1\",\n    \"use_level\": 5,\n    \"consumers_of\": true\n  }\n]\n"
	assert.Equal(t, want, string(data))
}

func TestExpand_NilIsCanonical(t *testing.T) {
	codec := newTestCodec(t)
	ctx := context.Background()

	first, err := codec.Expand(ctx, nil)
	require.NoError(t, err)
	second, err := codec.Expand(ctx, []Entry{})
	require.NoError(t, err)
	reset, err := codec.Reset(ctx)
	require.NoError(t, err)

	built, err := BuildTable(testCatalog)
	require.NoError(t, err)

	assert.Equal(t, built, first)
	assert.Equal(t, first, second)
	assert.Equal(t, first, reset)
}

func TestExpand_OverlaysAndIgnoresUnknownCodes(t *testing.T) {
	codec := newTestCodec(t)

	table, err := codec.Expand(context.Background(), []Entry{
		{GroupCode: "1.10", UseLevel: 7, ConsumersOf: true},
		{GroupCode: "9.9.9", UseLevel: 1, ConsumersOf: true},
		{GroupCode: "2", UseLevel: -4, ConsumersOf: true},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "1.2", "1.2.3", "1.10", "2"}, codes(table))
	assert.Equal(t, Float(7), table[3].UseLevel)
	assert.True(t, table[3].ConsumersOf)

	// Negative levels survive but lose the consumers flag.
	assert.Equal(t, Float(-4), table[4].UseLevel)
	assert.False(t, table[4].ConsumersOf)
	assert.Empty(t, Violations(table))
}

func TestExpand_RoundTrip(t *testing.T) {
	codec := newTestCodec(t)
	ctx := context.Background()

	original := []Row{
		{GroupCode: "1", GroupName: "Dairy", UseLevel: Float(5), ConsumersOf: true},
		{GroupCode: "1.2", GroupName: "Cheese", UseLevel: nil, ConsumersOf: false},
		{GroupCode: "1.2.3", GroupName: "Hard cheese", UseLevel: Float(0), ConsumersOf: false},
		{GroupCode: "1.10", GroupName: "Butter", UseLevel: Float(2.25), ConsumersOf: false},
		{GroupCode: "2", GroupName: "Meat", UseLevel: Float(-1), ConsumersOf: false},
	}

	restored, err := codec.Expand(ctx, Compact(original))
	require.NoError(t, err)
	require.Len(t, restored, len(original))

	for i, row := range original {
		if row.Eligible() {
			assert.Equal(t, row, restored[i])
			continue
		}
		assert.Nil(t, restored[i].UseLevel, "row %s", row.GroupCode)
		assert.False(t, restored[i].ConsumersOf, "row %s", row.GroupCode)
	}
}

func TestMerge_StaleSnapshot(t *testing.T) {
	codec := newTestCodec(t)

	// Reordered, partial, with an unknown code and a violating row.
	snapshot := []Row{
		{GroupCode: "2", UseLevel: Float(3), ConsumersOf: true},
		{GroupCode: "zzz", UseLevel: Float(1)},
		{GroupCode: "1", UseLevel: nil, ConsumersOf: true},
	}

	table, err := codec.Merge(context.Background(), snapshot)
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "1.2", "1.2.3", "1.10", "2"}, codes(table))
	assert.False(t, table[0].ConsumersOf)
	assert.Equal(t, Float(3), table[4].UseLevel)
	assert.True(t, table[4].ConsumersOf)
	assert.Equal(t, "Meat", table[4].GroupName)
}

func TestExpandPayload_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", "this is not json"},
		{"object instead of list", `{"group_code": "1", "use_level": 5, "consumers_of": true}`},
		{"list of numbers", `[1, 2, 3]`},
		{"missing group_code", `[{"use_level": 5, "consumers_of": true}]`},
		{"missing use_level", `[{"group_code": "1", "consumers_of": true}]`},
		{"missing consumers_of", `[{"group_code": "1", "use_level": 5}]`},
		{"string use_level", `[{"group_code": "1", "use_level": "5", "consumers_of": true}]`},
		{"numeric group_code", `[{"group_code": 1, "use_level": 5, "consumers_of": true}]`},
		{"null entry", `[null]`},
		{"one bad entry among good", `[{"group_code": "1", "use_level": 5, "consumers_of": true}, {"use_level": 1}]`},
		{"truncated", `[{"group_code": "1", "use_le`},
	}

	codec := newTestCodec(t)
	canonical, err := codec.Reset(context.Background())
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, applied, err := codec.ExpandPayload(context.Background(), []byte(tt.payload))
			require.NoError(t, err)
			assert.False(t, applied)
			assert.Equal(t, canonical, table)
			assert.Empty(t, Violations(table))
		})
	}
}

func TestExpandPayload_EmptyIsAppliedAsNoData(t *testing.T) {
	codec := newTestCodec(t)
	canonical, err := codec.Reset(context.Background())
	require.NoError(t, err)

	for _, payload := range []string{"", "   ", "null", "[]"} {
		table, applied, err := codec.ExpandPayload(context.Background(), []byte(payload))
		require.NoError(t, err)
		assert.True(t, applied, "payload %q", payload)
		assert.Equal(t, canonical, table, "payload %q", payload)
	}
}

func TestExpandPayload_Valid(t *testing.T) {
	codec := newTestCodec(t)
	payload := `[
		{"group_code": "1", "use_level": 5, "consumers_of": true},
		{"group_code": "1.2", "use_level": null, "consumers_of": true},
		{"group_code": "unknown", "use_level": 3, "consumers_of": true, "extra": "ignored"}
	]`

	table, applied, err := codec.ExpandPayload(context.Background(), []byte(payload))
	require.NoError(t, err)
	assert.True(t, applied)

	assert.Equal(t, Float(5), table[0].UseLevel)
	assert.True(t, table[0].ConsumersOf)
	assert.Nil(t, table[1].UseLevel)
	assert.False(t, table[1].ConsumersOf)
}

func TestExpandPayload_ExportRoundTrip(t *testing.T) {
	codec := newTestCodec(t)
	ctx := context.Background()

	edited, err := codec.Expand(ctx, []Entry{{GroupCode: "1.2.3", UseLevel: 42, ConsumersOf: true}})
	require.NoError(t, err)

	data, err := EncodeExport(Compact(edited))
	require.NoError(t, err)

	restored, applied, err := codec.ExpandPayload(ctx, data)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, edited, restored)
}

func TestExpand_CatalogFailurePropagates(t *testing.T) {
	src := new(mockSource)
	src.On("Records", mock.Anything).Return(nil, errors.New("disk on fire"))

	codec := NewCodec(NewCanonical(src))

	_, err := codec.Expand(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, "CAT001", MapError(err).Code)

	_, _, err = codec.ExpandPayload(context.Background(), []byte("garbage"))
	require.Error(t, err)
}

func TestCanonical_LoadsOnceUntilInvalidated(t *testing.T) {
	src := new(mockSource)
	src.On("Records", mock.Anything).Return([]catalog.Record(testCatalog), nil)

	cache := NewCanonical(src)
	ctx := context.Background()
	assert.Equal(t, 0, cache.Len())

	first, err := cache.Table(ctx)
	require.NoError(t, err)
	_, err = cache.Table(ctx)
	require.NoError(t, err)
	src.AssertNumberOfCalls(t, "Records", 1)
	assert.Equal(t, 5, cache.Len())

	// Mutating a returned copy does not leak into the cache.
	first[0].UseLevel = Float(1)
	again, err := cache.Table(ctx)
	require.NoError(t, err)
	assert.Nil(t, again[0].UseLevel)

	cache.Invalidate()
	_, err = cache.Table(ctx)
	require.NoError(t, err)
	src.AssertNumberOfCalls(t, "Records", 2)
}

func TestDecodeUpload(t *testing.T) {
	payload := `[{"group_code":"1","use_level":5,"consumers_of":true}]`
	encoded := "data:application/json;base64," + base64.StdEncoding.EncodeToString([]byte(payload))

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain json", payload, payload},
		{"base64 data url", encoded, payload},
		{"plain data url", "data:application/json," + payload, payload},
		{"percent-encoded data url", "data:application/json,%5B%5D", "[]"},
		{"percent-encoded entry", "data:application/json,%5B%7B%22group_code%22%3A%221%22%7D%5D", `[{"group_code":"1"}]`},
		{"bad percent encoding", "data:application/json,%zz", "data:application/json,%zz"},
		{"bad base64", "data:application/json;base64,@@@", "data:application/json;base64,@@@"},
		{"data url without comma", "data:application/json;base64", "data:application/json;base64"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(DecodeUpload([]byte(tt.in))))
		})
	}
}

func TestExpandPayload_UndecodableUploadNotApplied(t *testing.T) {
	codec := newTestCodec(t)
	canonical, err := codec.Reset(context.Background())
	require.NoError(t, err)

	for _, upload := range []string{
		"data:application/json;base64,@@@",
		"data:application/json;base64",
		"data:application/json,%zz",
	} {
		table, applied, err := codec.ExpandPayload(context.Background(), DecodeUpload([]byte(upload)))
		require.NoError(t, err)
		assert.False(t, applied, "upload %q", upload)
		assert.Equal(t, canonical, table, "upload %q", upload)
	}
}

func TestEntry_JSONFieldNames(t *testing.T) {
	data, err := json.Marshal(Row{GroupCode: "1", GroupName: "Dairy"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"group_code":"1","group_name":"Dairy","use_level":null,"consumers_of":false}`, string(data))
}
