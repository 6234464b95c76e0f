package models

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/inferloop/tabcert/pkg/constants"
)

// ColumnKind classifies a column as numeric or categorical. The kind is
// computed once at frame ingestion and carried with the column, so the
// real and synthetic frames can disagree on a column's kind explicitly.
type ColumnKind string

const (
	KindNumeric     ColumnKind = "numeric"
	KindCategorical ColumnKind = "categorical"
)

// missingTokens are the textual cells treated as missing values at ingestion.
var missingTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"NaN":  true,
	"nan":  true,
	"null": true,
}

// Column is one named column of a tabular frame. Raw keeps the original
// textual cells (canonical row keys are built from these), Values holds the
// parsed numeric view (NaN where missing or non-numeric), and Missing marks
// cells that carried no value.
type Column struct {
	Name    string     `json:"name"`
	Kind    ColumnKind `json:"kind"`
	Raw     []string   `json:"-"`
	Values  []float64  `json:"-"`
	Missing []bool     `json:"-"`
}

// Frame is an immutable ordered set of named columns with a fixed row count.
type Frame struct {
	columns []Column
	index   map[string]int
	rows    int
}

// NewFrame builds a frame from pre-classified columns. All columns must have
// the same length and unique names.
func NewFrame(columns []Column) (*Frame, error) {
	f := &Frame{
		columns: columns,
		index:   make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		if _, exists := f.index[col.Name]; exists {
			return nil, fmt.Errorf("duplicate column name %q", col.Name)
		}
		if i == 0 {
			f.rows = len(col.Raw)
		} else if len(col.Raw) != f.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", col.Name, len(col.Raw), f.rows)
		}
		if len(col.Values) != len(col.Raw) || len(col.Missing) != len(col.Raw) {
			return nil, fmt.Errorf("column %q has inconsistent cell slices", col.Name)
		}
		f.index[col.Name] = i
	}
	return f, nil
}

// FromRecords ingests a header row plus textual records and classifies each
// column exactly once: numeric when every non-missing cell parses as a float
// and at least one non-missing cell exists, categorical otherwise.
func FromRecords(header []string, records [][]string) (*Frame, error) {
	for i, rec := range records {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("record %d has %d cells, expected %d", i, len(rec), len(header))
		}
	}

	columns := make([]Column, len(header))
	for j, name := range header {
		raw := make([]string, len(records))
		values := make([]float64, len(records))
		missing := make([]bool, len(records))

		numeric := true
		seen := 0
		for i, rec := range records {
			cell := strings.TrimSpace(rec[j])
			raw[i] = cell
			if missingTokens[cell] {
				missing[i] = true
				values[i] = math.NaN()
				continue
			}
			seen++
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				numeric = false
				values[i] = math.NaN()
				continue
			}
			values[i] = v
		}

		kind := KindCategorical
		if numeric && seen > 0 {
			kind = KindNumeric
		}
		if kind == KindCategorical {
			for i := range values {
				values[i] = math.NaN()
			}
		}

		columns[j] = Column{Name: name, Kind: kind, Raw: raw, Values: values, Missing: missing}
	}

	return NewFrame(columns)
}

// NumericColumn builds a numeric column from float values; NaN cells are
// recorded as missing.
func NumericColumn(name string, values []float64) Column {
	raw := make([]string, len(values))
	vals := make([]float64, len(values))
	missing := make([]bool, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			missing[i] = true
			vals[i] = math.NaN()
			continue
		}
		raw[i] = strconv.FormatFloat(v, 'g', -1, 64)
		vals[i] = v
	}
	return Column{Name: name, Kind: KindNumeric, Raw: raw, Values: vals, Missing: missing}
}

// CategoricalColumn builds a categorical column from textual values.
func CategoricalColumn(name string, values []string) Column {
	raw := make([]string, len(values))
	vals := make([]float64, len(values))
	missing := make([]bool, len(values))
	for i, v := range values {
		raw[i] = v
		vals[i] = math.NaN()
		if missingTokens[v] {
			missing[i] = true
		}
	}
	return Column{Name: name, Kind: KindCategorical, Raw: raw, Values: vals, Missing: missing}
}

// Rows returns the row count.
func (f *Frame) Rows() int { return f.rows }

// Cols returns the column count.
func (f *Frame) Cols() int { return len(f.columns) }

// Names returns the column names in frame order.
func (f *Frame) Names() []string {
	names := make([]string, len(f.columns))
	for i, col := range f.columns {
		names[i] = col.Name
	}
	return names
}

// Has reports whether the frame contains the named column.
func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Column returns the named column.
func (f *Frame) Column(name string) (*Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return &f.columns[i], true
}

// ColumnAt returns the column at position i.
func (f *Frame) ColumnAt(i int) *Column { return &f.columns[i] }

// CommonColumns returns the columns present in both frames, in this frame's
// column order.
func (f *Frame) CommonColumns(other *Frame) []string {
	var common []string
	for _, col := range f.columns {
		if other.Has(col.Name) {
			common = append(common, col.Name)
		}
	}
	return common
}

// SelectRows returns a new frame holding only the given row indices, in order.
func (f *Frame) SelectRows(indices []int) *Frame {
	columns := make([]Column, len(f.columns))
	for j, col := range f.columns {
		raw := make([]string, len(indices))
		vals := make([]float64, len(indices))
		missing := make([]bool, len(indices))
		for i, idx := range indices {
			raw[i] = col.Raw[idx]
			vals[i] = col.Values[idx]
			missing[i] = col.Missing[idx]
		}
		columns[j] = Column{Name: col.Name, Kind: col.Kind, Raw: raw, Values: vals, Missing: missing}
	}
	out, _ := NewFrame(columns)
	return out
}

// DropColumns returns a new frame without the named columns.
func (f *Frame) DropColumns(names ...string) *Frame {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	var columns []Column
	for _, col := range f.columns {
		if !drop[col.Name] {
			columns = append(columns, col)
		}
	}
	out, _ := NewFrame(columns)
	return out
}

// RowKey builds the canonical string encoding of row i over the given
// columns, joining textual cells with a fixed separator.
func (f *Frame) RowKey(i int, cols []string) string {
	parts := make([]string, len(cols))
	for j, name := range cols {
		col, ok := f.Column(name)
		if !ok {
			continue
		}
		parts[j] = col.Raw[i]
	}
	return strings.Join(parts, constants.RowKeySeparator)
}

// Records returns the frame as a header row plus textual records, suitable
// for CSV export.
func (f *Frame) Records() ([]string, [][]string) {
	header := f.Names()
	records := make([][]string, f.rows)
	for i := 0; i < f.rows; i++ {
		rec := make([]string, len(f.columns))
		for j, col := range f.columns {
			rec[j] = col.Raw[i]
		}
		records[i] = rec
	}
	return header, records
}

// NonMissing returns the column's numeric values with missing cells dropped.
func (c *Column) NonMissing() []float64 {
	out := make([]float64, 0, len(c.Values))
	for i, v := range c.Values {
		if !c.Missing[i] && !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Median returns the median of the column's non-missing numeric values, or
// NaN when none exist.
func (c *Column) Median() float64 {
	vals := c.NonMissing()
	if len(vals) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// Mode returns the most frequent non-missing textual cell; ties resolve to
// the lexicographically smallest value so the result is deterministic.
func (c *Column) Mode() string {
	counts := make(map[string]int)
	for i, raw := range c.Raw {
		if c.Missing[i] {
			continue
		}
		counts[raw]++
	}
	best, bestCount := "", -1
	for v, n := range counts {
		if n > bestCount || (n == bestCount && v < best) {
			best, bestCount = v, n
		}
	}
	return best
}

// Categories returns the sorted distinct non-missing textual cells.
func (c *Column) Categories() []string {
	seen := make(map[string]bool)
	for i, raw := range c.Raw {
		if !c.Missing[i] {
			seen[raw] = true
		}
	}
	cats := make([]string, 0, len(seen))
	for v := range seen {
		cats = append(cats, v)
	}
	sort.Strings(cats)
	return cats
}

// Frequencies returns the normalized frequency distribution over the
// column's non-missing textual cells. Missing cells carry zero weight.
func (c *Column) Frequencies() map[string]float64 {
	counts := make(map[string]int)
	total := 0
	for i, raw := range c.Raw {
		if c.Missing[i] {
			continue
		}
		counts[raw]++
		total++
	}
	freqs := make(map[string]float64, len(counts))
	if total == 0 {
		return freqs
	}
	for v, n := range counts {
		freqs[v] = float64(n) / float64(total)
	}
	return freqs
}
