// Package results describes the panes of the results stage and summarises
// the exposure input they are rendered from.
package results

import (
	"errors"
	"fmt"
	"sort"

	"github.com/JonMunkholm/exposure/internal/category"
)

// ErrUnknownPane is returned by Lookup for a slug that is not a results pane.
var ErrUnknownPane = errors.New("unknown pane")

// Pane is one tab of the results stage.
type Pane struct {
	Slug    string
	Title   string
	Heading string
}

// DefaultPane is shown when the results stage is opened without a pane.
const DefaultPane = "exposure-summary"

var panes = []Pane{
	{Slug: "exposure-summary", Title: "Exposure summary", Heading: "Exposure Summary"},
	{Slug: "exposure-results", Title: "Exposure results", Heading: "Exposure Results"},
	{Slug: "graph-average-exposure", Title: "Graph average exposure", Heading: "Average Exposure Graph"},
	{Slug: "graph-p975-exposure", Title: "Graph 97.5th percentile exposure", Heading: "97.5th Percentile Exposure Graph"},
}

// Panes returns the results panes in display order.
func Panes() []Pane {
	out := make([]Pane, len(panes))
	copy(out, panes)
	return out
}

// Lookup returns the pane with the given slug.
func Lookup(slug string) (Pane, error) {
	for _, p := range panes {
		if p.Slug == slug {
			return p, nil
		}
	}
	return Pane{}, fmt.Errorf("%w: %q", ErrUnknownPane, slug)
}

// Summary describes the exposure input handed to the results stage.
type Summary struct {
	Entries      int
	ConsumersOf  int
	MaxUseLevel  float64
	MaxGroupCode string
	TopLevels    []TopLevel
}

// TopLevel counts the entries under one first-level group code.
type TopLevel struct {
	Code    string
	Entries int
}

// Summarize builds a Summary from entries. Entries are expected in table
// order, as produced by category.Compact.
func Summarize(entries []category.Entry) Summary {
	s := Summary{Entries: len(entries)}
	counts := make(map[string]int)

	for _, e := range entries {
		if e.ConsumersOf {
			s.ConsumersOf++
		}
		if e.UseLevel > s.MaxUseLevel {
			s.MaxUseLevel = e.UseLevel
			s.MaxGroupCode = e.GroupCode
		}
		counts[topLevel(e.GroupCode)]++
	}

	for code, n := range counts {
		s.TopLevels = append(s.TopLevels, TopLevel{Code: code, Entries: n})
	}
	sort.Slice(s.TopLevels, func(i, j int) bool {
		c, err := category.CompareCodes(s.TopLevels[i].Code, s.TopLevels[j].Code)
		if err != nil {
			return s.TopLevels[i].Code < s.TopLevels[j].Code
		}
		return c < 0
	})
	return s
}

func topLevel(code string) string {
	for i := 0; i < len(code); i++ {
		if code[i] == '.' {
			return code[:i]
		}
	}
	return code
}
