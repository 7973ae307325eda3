package category

// ExportFileName is the file name offered when exporting session entries.
const ExportFileName = "exposure_input.json"

// Row is one row of the editable table. The JSON field names are the
// contract with the view layer.
type Row struct {
	GroupCode   string   `json:"group_code"`
	GroupName   string   `json:"group_name"`
	UseLevel    *float64 `json:"use_level"`
	ConsumersOf bool     `json:"consumers_of"`
}

// Eligible reports whether the row carries a use level that downstream
// calculation can work with.
func (r Row) Eligible() bool {
	return r.UseLevel != nil && *r.UseLevel > 0
}

// Entry is the compact, persisted form of an eligible row. It is the shape of
// the session hand-off and of the export file.
type Entry struct {
	GroupCode   string  `json:"group_code"`
	UseLevel    float64 `json:"use_level"`
	ConsumersOf bool    `json:"consumers_of"`
}

// Float returns a pointer to v, for building rows with a use level.
func Float(v float64) *float64 {
	return &v
}

// Clone returns a deep copy of table so callers never share use-level pointers.
func Clone(table []Row) []Row {
	out := make([]Row, len(table))
	for i, row := range table {
		out[i] = row
		if row.UseLevel != nil {
			out[i].UseLevel = Float(*row.UseLevel)
		}
	}
	return out
}
