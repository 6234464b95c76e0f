package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRecordsClassifiesColumns(t *testing.T) {
	header := []string{"age", "income", "city"}
	records := [][]string{
		{"34", "52000.5", "Lyon"},
		{"28", "NA", "Paris"},
		{"45", "61000", "Lyon"},
	}

	frame, err := FromRecords(header, records)
	require.NoError(t, err)
	assert.Equal(t, 3, frame.Rows())
	assert.Equal(t, 3, frame.Cols())

	age, ok := frame.Column("age")
	require.True(t, ok)
	assert.Equal(t, KindNumeric, age.Kind)
	assert.Equal(t, []float64{34, 28, 45}, age.Values)

	income, ok := frame.Column("income")
	require.True(t, ok)
	assert.Equal(t, KindNumeric, income.Kind)
	assert.True(t, income.Missing[1])
	assert.True(t, math.IsNaN(income.Values[1]))

	city, ok := frame.Column("city")
	require.True(t, ok)
	assert.Equal(t, KindCategorical, city.Kind)
	assert.True(t, math.IsNaN(city.Values[0]))
}

func TestFromRecordsMixedCellsAreCategorical(t *testing.T) {
	frame, err := FromRecords([]string{"code"}, [][]string{{"12"}, {"x9"}, {"7"}})
	require.NoError(t, err)

	col, _ := frame.Column("code")
	assert.Equal(t, KindCategorical, col.Kind)
}

func TestFromRecordsAllMissingColumnIsCategorical(t *testing.T) {
	frame, err := FromRecords([]string{"v"}, [][]string{{""}, {"NA"}, {"null"}})
	require.NoError(t, err)

	col, _ := frame.Column("v")
	assert.Equal(t, KindCategorical, col.Kind)
	assert.Empty(t, col.NonMissing())
}

func TestFromRecordsRejectsRaggedRecords(t *testing.T) {
	_, err := FromRecords([]string{"a", "b"}, [][]string{{"1", "2"}, {"3"}})
	assert.Error(t, err)
}

func TestNewFrameRejectsDuplicateNames(t *testing.T) {
	_, err := NewFrame([]Column{
		NumericColumn("x", []float64{1}),
		NumericColumn("x", []float64{2}),
	})
	assert.Error(t, err)
}

func TestCommonColumnsPreservesReceiverOrder(t *testing.T) {
	a, err := NewFrame([]Column{
		NumericColumn("x", []float64{1}),
		NumericColumn("y", []float64{2}),
		NumericColumn("z", []float64{3}),
	})
	require.NoError(t, err)
	b, err := NewFrame([]Column{
		NumericColumn("z", []float64{1}),
		NumericColumn("x", []float64{2}),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "z"}, a.CommonColumns(b))
	assert.Equal(t, []string{"z", "x"}, b.CommonColumns(a))
}

func TestSelectRowsAndDropColumns(t *testing.T) {
	frame, err := FromRecords([]string{"a", "b"}, [][]string{
		{"1", "u"}, {"2", "v"}, {"3", "w"},
	})
	require.NoError(t, err)

	sub := frame.SelectRows([]int{2, 0})
	assert.Equal(t, 2, sub.Rows())
	col, _ := sub.Column("a")
	assert.Equal(t, []float64{3, 1}, col.Values)

	dropped := frame.DropColumns("b")
	assert.Equal(t, 1, dropped.Cols())
	assert.False(t, dropped.Has("b"))
	assert.Equal(t, 3, dropped.Rows())
}

func TestRowKeyJoinsRawCells(t *testing.T) {
	frame, err := FromRecords([]string{"a", "b"}, [][]string{{"1", "u"}})
	require.NoError(t, err)

	assert.Equal(t, "1||u", frame.RowKey(0, []string{"a", "b"}))
	assert.Equal(t, "u||1", frame.RowKey(0, []string{"b", "a"}))
}

func TestRecordsRoundTrip(t *testing.T) {
	header := []string{"n", "c"}
	records := [][]string{{"1.5", "red"}, {"", "blue"}}

	frame, err := FromRecords(header, records)
	require.NoError(t, err)

	outHeader, outRecords := frame.Records()
	assert.Equal(t, header, outHeader)
	assert.Equal(t, records, outRecords)
}

func TestColumnMedian(t *testing.T) {
	col := NumericColumn("x", []float64{5, 1, 3})
	assert.Equal(t, 3.0, col.Median())

	even := NumericColumn("x", []float64{1, 2, 3, 4})
	assert.Equal(t, 2.5, even.Median())

	withMissing := NumericColumn("x", []float64{math.NaN(), 10, 20})
	assert.Equal(t, 15.0, withMissing.Median())

	empty := NumericColumn("x", []float64{math.NaN()})
	assert.True(t, math.IsNaN(empty.Median()))
}

func TestColumnModeBreaksTiesLexicographically(t *testing.T) {
	col := CategoricalColumn("c", []string{"b", "a", "b", "a", "c"})
	assert.Equal(t, "a", col.Mode())
}

func TestColumnCategoriesAndFrequencies(t *testing.T) {
	col := CategoricalColumn("c", []string{"x", "y", "x", "", "x"})

	assert.Equal(t, []string{"x", "y"}, col.Categories())

	freqs := col.Frequencies()
	assert.InDelta(t, 0.75, freqs["x"], 1e-12)
	assert.InDelta(t, 0.25, freqs["y"], 1e-12)
}

func TestDefinedPtr(t *testing.T) {
	require.NotNil(t, DefinedPtr(1.5))
	assert.Equal(t, 1.5, *DefinedPtr(1.5))
	assert.Nil(t, DefinedPtr(math.NaN()))
}
