package category

// codec.go converts between the full editable table and the compact entry
// list used for the session hand-off and for export/import files.
//
// Restoration always starts from a freshly built canonical table and overlays
// persisted values onto it. A stale or partial payload can therefore never
// add, drop or reorder rows; at worst its values are ignored.

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/JonMunkholm/exposure/internal/logging"
)

// errMalformedPayload is only used internally to trigger the reset fallback.
var errMalformedPayload = errors.New("malformed session payload")

// Compact keeps the rows with a use level above zero and maps them to entries.
func Compact(table []Row) []Entry {
	entries := make([]Entry, 0)
	for _, row := range table {
		if !row.Eligible() {
			continue
		}
		entries = append(entries, Entry{
			GroupCode:   row.GroupCode,
			UseLevel:    *row.UseLevel,
			ConsumersOf: row.ConsumersOf,
		})
	}
	return entries
}

// EncodeExport renders entries as the pretty-printed export file.
func EncodeExport(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return append(data, '\n'), nil
}

// cell is the pair of editable values overlaid onto a canonical row.
type cell struct {
	useLevel    *float64
	consumersOf bool
}

// Codec restores editable tables from persisted data.
type Codec struct {
	canonical *Canonical
}

// NewCodec creates a codec that rebuilds tables from canonical.
func NewCodec(canonical *Canonical) *Codec {
	return &Codec{canonical: canonical}
}

// Reset returns the canonical table with default values only.
func (c *Codec) Reset(ctx context.Context) ([]Row, error) {
	table, err := c.canonical.Table(ctx)
	if err != nil {
		return nil, err
	}
	_, table = Validate(table)
	return table, nil
}

// Expand rebuilds the canonical table and overlays entries by group code.
// Entries for codes that are not in the table are ignored. The result has
// already been through Validate.
func (c *Codec) Expand(ctx context.Context, entries []Entry) ([]Row, error) {
	cells := make(map[string]cell, len(entries))
	for _, e := range entries {
		cells[e.GroupCode] = cell{useLevel: Float(e.UseLevel), consumersOf: e.ConsumersOf}
	}
	return c.overlay(ctx, cells)
}

// Merge rebuilds the canonical table and overlays the editable values of
// rows by group code. It is used for table snapshots coming back from the
// view, which may be stale or partial.
func (c *Codec) Merge(ctx context.Context, rows []Row) ([]Row, error) {
	cells := make(map[string]cell, len(rows))
	for _, r := range rows {
		cells[r.GroupCode] = cell{useLevel: r.UseLevel, consumersOf: r.ConsumersOf}
	}
	return c.overlay(ctx, cells)
}

// ExpandPayload restores a table from an untrusted JSON payload. Anything that
// is not a list of well-formed entries is treated as no data, and the
// canonical table is returned. The boolean reports whether the payload was
// read as entries; a well-formed empty list counts as applied. Only catalog
// failures are returned as errors.
func (c *Codec) ExpandPayload(ctx context.Context, payload []byte) ([]Row, bool, error) {
	cells, err := decodeCells(payload)
	if err != nil {
		logging.FromContext(ctx).Warn("session payload ignored, restoring defaults",
			"error", err,
			"bytes", len(payload),
		)
		table, resetErr := c.Reset(ctx)
		return table, false, resetErr
	}

	table, err := c.overlay(ctx, cells)
	return table, true, err
}

func (c *Codec) overlay(ctx context.Context, cells map[string]cell) ([]Row, error) {
	table, err := c.canonical.Table(ctx)
	if err != nil {
		return nil, err
	}

	for i := range table {
		if v, ok := cells[table[i].GroupCode]; ok {
			table[i].UseLevel = v.useLevel
			table[i].ConsumersOf = v.consumersOf
		}
	}

	_, table = Validate(table)
	return table, nil
}

// wireEntry mirrors Entry but keeps track of which fields were present.
type wireEntry struct {
	GroupCode   *string         `json:"group_code"`
	UseLevel    json.RawMessage `json:"use_level"`
	ConsumersOf *bool           `json:"consumers_of"`
}

// decodeCells parses a payload into per-code cells. An empty or whitespace
// payload and JSON null both mean "no data". Every entry must carry a string
// group_code, a numeric or null use_level and a boolean consumers_of; one bad
// entry rejects the whole payload.
func decodeCells(payload []byte) (map[string]cell, error) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return nil, nil
	}

	var raw []wireEntry
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedPayload, err)
	}

	cells := make(map[string]cell, len(raw))
	for i, w := range raw {
		if w.GroupCode == nil {
			return nil, fmt.Errorf("%w: entry %d has no group_code", errMalformedPayload, i)
		}
		if w.ConsumersOf == nil {
			return nil, fmt.Errorf("%w: entry %d has no consumers_of", errMalformedPayload, i)
		}
		if w.UseLevel == nil {
			return nil, fmt.Errorf("%w: entry %d has no use_level", errMalformedPayload, i)
		}

		var level *float64
		if err := json.Unmarshal(w.UseLevel, &level); err != nil {
			return nil, fmt.Errorf("%w: entry %d use_level: %v", errMalformedPayload, i, err)
		}

		cells[*w.GroupCode] = cell{useLevel: level, consumersOf: *w.ConsumersOf}
	}
	return cells, nil
}

// DecodeUpload extracts the JSON bytes of an uploaded import file. Browser
// upload widgets deliver "data:<type>[;base64],<payload>" strings, with the
// payload either base64 or percent encoded; anything else is returned as-is.
// A data URL that cannot be decoded is also returned as-is, so it is later
// rejected as a malformed payload.
func DecodeUpload(contents []byte) []byte {
	s := strings.TrimSpace(string(contents))
	if !strings.HasPrefix(s, "data:") {
		return contents
	}

	header, body, ok := strings.Cut(s, ",")
	if !ok {
		return contents
	}
	if !strings.HasSuffix(header, ";base64") {
		decoded, err := url.PathUnescape(body)
		if err != nil {
			return contents
		}
		return []byte(decoded)
	}

	decoded, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return contents
	}
	return decoded
}
